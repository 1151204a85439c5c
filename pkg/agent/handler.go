// Copyright 2025 The a2a-book-agent Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package agent implements the A2A protocol handler and the task state
// machine behind it.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/seyiFortress/a2a-book-agent/pkg/a2a"
	"github.com/seyiFortress/a2a-book-agent/pkg/deadline"
	"github.com/seyiFortress/a2a-book-agent/pkg/extract"
	"github.com/seyiFortress/a2a-book-agent/pkg/format"
	"github.com/seyiFortress/a2a-book-agent/pkg/observability"
	"github.com/seyiFortress/a2a-book-agent/pkg/task"
)

// DefaultTimeout is the hard ceiling on one extraction request. It is
// layered over the catalog client's own per-call timeouts, not
// coordinated with them.
const DefaultTimeout = 30 * time.Second

// Handler validates inbound JSON-RPC requests, drives task creation and
// the extraction pipeline, and renders responses. Task state transitions
// are serialized by a handler-level mutex; the store itself only guards
// its map.
type Handler struct {
	store   *task.Store
	service *extract.Service
	timeout time.Duration
	mu      sync.Mutex
}

// Option configures a Handler.
type Option func(*Handler)

// WithTimeout overrides the overall per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		h.timeout = d
	}
}

// NewHandler creates a protocol handler over the injected store and
// extraction service.
func NewHandler(store *task.Store, service *extract.Service, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		service: service,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ============================================================================
// REQUEST PARAMS / RESULTS
// ============================================================================

type sendParams struct {
	Message   *a2a.Message `json:"message"`
	SessionID string       `json:"sessionId"`
}

type taskParams struct {
	ID string `json:"id"`
}

type pushParams struct {
	ID     string                      `json:"id"`
	Config *a2a.PushNotificationConfig `json:"pushNotificationConfig"`
}

type sendResult struct {
	Task             *a2a.Task    `json:"task"`
	Message          *a2a.Message `json:"message"`
	ProcessingTimeMs int64        `json:"processingTimeMs"`
}

type getResult struct {
	Task        *a2a.Task `json:"task"`
	RetrievedAt time.Time `json:"retrievedAt"`
	AgeMs       int64     `json:"ageMs"`
}

type cancelResult struct {
	Task *a2a.Task `json:"task"`
}

type pushResult struct {
	ID     string                      `json:"id"`
	Config *a2a.PushNotificationConfig `json:"pushNotificationConfig"`
}

type resubscribeResult struct {
	ID             string         `json:"id"`
	Status         a2a.TaskStatus `json:"status"`
	ResubscribedAt time.Time      `json:"resubscribedAt"`
}

// ============================================================================
// DISPATCH
// ============================================================================

// RouteRequest validates the JSON-RPC envelope and dispatches by method
// name. Unknown methods return a "method not found" error listing the
// supported methods; panics during dispatch become generic internal
// errors instead of propagating.
func (h *Handler) RouteRequest(ctx context.Context, req *a2a.Request) (resp *a2a.Response) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic during dispatch", "method", req.Method, "panic", r)
			resp = a2a.NewErrorResponse(req.ID, a2a.CodeInternalError, "internal error", nil)
		}
	}()

	if req.Method == "" {
		return a2a.NewErrorResponse(req.ID, a2a.CodeInvalidRequest, "method is required", nil)
	}
	if !methodRe.MatchString(req.Method) {
		return a2a.NewErrorResponse(req.ID, a2a.CodeInvalidRequest, "malformed method name", nil)
	}

	switch req.Method {
	case a2a.MethodMessageSend:
		return h.MessageSend(ctx, req.ID, req.Params)
	case a2a.MethodMessageStream:
		// The transport layer routes message/stream to the SSE path
		// before dispatch ever gets here.
		return a2a.NewErrorResponse(req.ID, a2a.CodeInvalidRequest,
			"message/stream requires a streaming response", nil)
	case a2a.MethodTasksGet:
		return h.TasksGet(req.ID, req.Params)
	case a2a.MethodTasksCancel:
		return h.TasksCancel(req.ID, req.Params)
	case a2a.MethodTasksSetPushConf:
		return h.TasksSetPushConfig(req.ID, req.Params)
	case a2a.MethodTasksGetPushConf:
		return h.TasksGetPushConfig(req.ID, req.Params)
	case a2a.MethodTasksResubscribe:
		return h.TasksResubscribe(req.ID, req.Params)
	default:
		return a2a.NewErrorResponse(req.ID, a2a.CodeMethodNotFound,
			"method not found: "+req.Method,
			map[string]any{"supported": a2a.Methods()})
	}
}

// ============================================================================
// MESSAGE/SEND
// ============================================================================

// MessageSend runs the full extraction pipeline synchronously and
// returns the completed task, its final message, and the elapsed
// processing time derived from the task id's embedded timestamp.
func (h *Handler) MessageSend(ctx context.Context, id any, params json.RawMessage) *a2a.Response {
	query, sessionID, errResp := h.parseSendRequest(id, params)
	if errResp != nil {
		return errResp
	}

	t := h.newTask(sessionID)

	outcome, err := h.runPipeline(ctx, query)
	if err != nil {
		return pipelineErrorResponse(id, err)
	}
	if f, ok := outcome.(extract.Failure); ok {
		return a2a.NewErrorResponse(id, a2a.CodeInternalError, f.Message,
			map[string]any{"code": f.Code})
	}

	msg := a2a.NewAgentTextMessage(format.Format(outcome))
	h.completeTask(t, msg, artifactFor(outcome))

	return a2a.NewResponse(id, sendResult{
		Task:             redactTask(t),
		Message:          msg,
		ProcessingTimeMs: task.Age(t.ID).Milliseconds(),
	})
}

// parseSendRequest performs every validation step that must happen
// before a task is created. Validation failures never touch the store.
func (h *Handler) parseSendRequest(id any, params json.RawMessage) (string, string, *a2a.Response) {
	var p sendParams
	if err := json.Unmarshal(params, &p); err != nil {
		return "", "", a2a.NewErrorResponse(id, a2a.CodeInvalidParams, "invalid params", nil)
	}

	text, err := firstText(p.Message)
	if err != nil {
		return "", "", a2a.NewErrorResponse(id, a2a.CodeInvalidParams, err.Error(), nil)
	}

	query := extractQuery(text)
	if err := validateQuery(query); err != nil {
		return "", "", a2a.NewErrorResponse(id, a2a.CodeInvalidParams, err.Error(), nil)
	}
	return query, p.SessionID, nil
}

func (h *Handler) runPipeline(ctx context.Context, query string) (extract.Outcome, error) {
	return deadline.Run(ctx, h.timeout, func(ctx context.Context) (extract.Outcome, error) {
		return h.service.Run(ctx, query), nil
	})
}

func pipelineErrorResponse(id any, err error) *a2a.Response {
	if errors.Is(err, deadline.ErrTimeout) {
		return a2a.NewErrorResponse(id, a2a.CodeInternalError, "request timed out",
			map[string]any{"code": extract.CodeTimeout})
	}
	return a2a.NewErrorResponse(id, a2a.CodeInternalError, "internal error", nil)
}

// artifactFor returns the artifact to attach on completion: one book
// excerpt artifact for a successful extraction, nothing otherwise.
func artifactFor(outcome extract.Outcome) *a2a.Artifact {
	s, ok := outcome.(extract.Success)
	if !ok {
		return nil
	}
	return &a2a.Artifact{
		Type: "book_excerpt",
		Data: map[string]any{
			"title":         s.Book.Title,
			"authors":       s.Book.Authors,
			"excerpt":       s.Book.Excerpt,
			"source":        s.Book.Source,
			"downloadCount": s.Book.DownloadCount,
			"languages":     s.Book.Languages,
			"subjects":      s.Book.Subjects,
		},
	}
}

// ============================================================================
// TASKS/*
// ============================================================================

// TasksGet returns the task plus a retrieval timestamp and its computed
// age. It is a pure read: no history record is appended.
func (h *Handler) TasksGet(id any, params json.RawMessage) *a2a.Response {
	t, errResp := h.lookupTask(id, params)
	if errResp != nil {
		return errResp
	}

	return a2a.NewResponse(id, getResult{
		Task:        redactTask(t),
		RetrievedAt: time.Now(),
		AgeMs:       task.Age(t.ID).Milliseconds(),
	})
}

// TasksCancel transitions a non-terminal task to canceled. Canceling a
// completed or already-canceled task is rejected, not corrected.
func (h *Handler) TasksCancel(id any, params json.RawMessage) *a2a.Response {
	t, errResp := h.lookupTask(id, params)
	if errResp != nil {
		return errResp
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if t.Status.State.Terminal() {
		return a2a.NewErrorResponse(id, a2a.CodeTaskNotCancelable,
			"task is not cancelable",
			map[string]any{"state": t.Status.State})
	}

	h.transition(t, a2a.TaskStateCanceled,
		a2a.NewAgentTextMessage("Task canceled by request."),
		a2a.EventTaskCanceled, nil)
	observability.TasksCanceledTotal.Inc()

	return a2a.NewResponse(id, cancelResult{Task: redactTask(t)})
}

// TasksSetPushConfig stores a webhook configuration on the task. The
// config is persisted verbatim but echoed back with secrets redacted.
func (h *Handler) TasksSetPushConfig(id any, params json.RawMessage) *a2a.Response {
	var p pushParams
	if err := json.Unmarshal(params, &p); err != nil {
		return a2a.NewErrorResponse(id, a2a.CodeInvalidParams, "invalid params", nil)
	}
	if err := validateTaskID(p.ID); err != nil {
		return a2a.NewErrorResponse(id, a2a.CodeInvalidParams, err.Error(), nil)
	}
	if p.Config == nil {
		return a2a.NewErrorResponse(id, a2a.CodeInvalidParams,
			"pushNotificationConfig is required", nil)
	}
	if p.Config.URL != "" {
		if err := validatePushURL(p.Config.URL); err != nil {
			return a2a.NewErrorResponse(id, a2a.CodeInvalidParams, err.Error(), nil)
		}
	}

	t, ok := h.store.Get(p.ID)
	if !ok {
		return a2a.NewErrorResponse(id, a2a.CodeTaskNotFound, "task not found", nil)
	}

	h.mu.Lock()
	t.PushConfig = p.Config
	appendHistory(t, a2a.EventPushConfigSet, map[string]any{
		"hasUrl":  p.Config.URL != "",
		"hasAuth": p.Config.Auth != nil,
	})
	h.store.Update(t.ID, t)
	h.mu.Unlock()

	return a2a.NewResponse(id, pushResult{ID: t.ID, Config: p.Config.Redacted()})
}

// TasksGetPushConfig returns the stored config with secrets redacted, or
// a nil config when none was ever set. The task may be in any state.
func (h *Handler) TasksGetPushConfig(id any, params json.RawMessage) *a2a.Response {
	t, errResp := h.lookupTask(id, params)
	if errResp != nil {
		return errResp
	}

	return a2a.NewResponse(id, pushResult{ID: t.ID, Config: t.PushConfig.Redacted()})
}

// TasksResubscribe refreshes a caller's view of a task's final state.
// There is no live push channel to re-attach to; this appends an audit
// record and returns the current status, nothing more.
func (h *Handler) TasksResubscribe(id any, params json.RawMessage) *a2a.Response {
	t, errResp := h.lookupTask(id, params)
	if errResp != nil {
		return errResp
	}

	h.mu.Lock()
	appendHistory(t, a2a.EventTaskResubscribe, nil)
	h.store.Update(t.ID, t)
	status := t.Status
	h.mu.Unlock()

	return a2a.NewResponse(id, resubscribeResult{
		ID:             t.ID,
		Status:         status,
		ResubscribedAt: time.Now(),
	})
}

// lookupTask parses {id}, validates its syntax, and resolves it in the
// store. Malformed ids are invalid params, not "not found".
func (h *Handler) lookupTask(id any, params json.RawMessage) (*a2a.Task, *a2a.Response) {
	var p taskParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, a2a.NewErrorResponse(id, a2a.CodeInvalidParams, "invalid params", nil)
	}
	if err := validateTaskID(p.ID); err != nil {
		return nil, a2a.NewErrorResponse(id, a2a.CodeInvalidParams, err.Error(), nil)
	}
	t, ok := h.store.Get(p.ID)
	if !ok {
		return nil, a2a.NewErrorResponse(id, a2a.CodeTaskNotFound, "task not found", nil)
	}
	return t, nil
}

// ============================================================================
// STATE TRANSITIONS
// ============================================================================

// newTask creates a task in the working state, records the creation in
// its history, and stores it.
func (h *Handler) newTask(sessionID string) *a2a.Task {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	t := &a2a.Task{
		ID:        task.NewID(),
		SessionID: sessionID,
		Status: a2a.TaskStatus{
			State:     a2a.TaskStateWorking,
			Timestamp: time.Now(),
		},
	}
	appendHistory(t, a2a.EventTaskCreated, nil)
	h.store.Create(t)
	observability.TasksCreatedTotal.Inc()

	slog.Info("Task created", "taskId", t.ID, "sessionId", sessionID)
	return t
}

func (h *Handler) completeTask(t *a2a.Task, msg *a2a.Message, artifact *a2a.Artifact) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if artifact != nil {
		t.Artifacts = append(t.Artifacts, *artifact)
	}
	h.transition(t, a2a.TaskStateCompleted, msg, a2a.EventTaskCompleted, nil)
	observability.TasksCompletedTotal.Inc()
}

// transition sets the status and appends exactly one history record.
// Callers hold h.mu.
func (h *Handler) transition(t *a2a.Task, state a2a.TaskState, msg *a2a.Message, event string, data map[string]any) {
	t.Status = a2a.TaskStatus{
		State:     state,
		Timestamp: time.Now(),
		Message:   msg,
	}
	appendHistory(t, event, data)
	h.store.Update(t.ID, t)

	slog.Info("Task transitioned", "taskId", t.ID, "state", state)
}

func appendHistory(t *a2a.Task, event string, data map[string]any) {
	t.History = append(t.History, a2a.HistoryRecord{
		Timestamp: time.Now(),
		Event:     event,
		Data:      data,
	})
}

// redactTask returns a shallow copy safe to serialize: stored push
// credentials never appear in any response.
func redactTask(t *a2a.Task) *a2a.Task {
	if t.PushConfig == nil {
		return t
	}
	copied := *t
	copied.PushConfig = t.PushConfig.Redacted()
	return &copied
}
