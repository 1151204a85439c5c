package agent

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyiFortress/a2a-book-agent/pkg/a2a"
	"github.com/seyiFortress/a2a-book-agent/pkg/extract"
	"github.com/seyiFortress/a2a-book-agent/pkg/gutendex"
	"github.com/seyiFortress/a2a-book-agent/pkg/task"
)

type mockCatalog struct {
	searchResult *gutendex.SearchResult
	searchErr    error
	text         string
	fetchErr     error
	gotQuery     string
}

func (m *mockCatalog) Search(ctx context.Context, query string) (*gutendex.SearchResult, error) {
	m.gotQuery = query
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResult, nil
}

func (m *mockCatalog) FetchText(ctx context.Context, url string) (string, error) {
	if m.fetchErr != nil {
		return "", m.fetchErr
	}
	return m.text, nil
}

func happyCatalog() *mockCatalog {
	return &mockCatalog{
		searchResult: &gutendex.SearchResult{
			Count: 1,
			Results: []gutendex.Book{{
				ID:      2701,
				Title:   "Moby Dick; Or, The Whale",
				Authors: []gutendex.Author{{Name: "Melville, Herman"}},
				Formats: map[string]string{
					"text/plain; charset=us-ascii": "https://example.org/2701.txt",
				},
				DownloadCount: 105000,
			}},
		},
		text: "*** START OF THE PROJECT GUTENBERG EBOOK MOBY DICK ***\n\n" +
			"Call me Ishmael. Some years ago, never mind how long precisely, having little or no money in my purse.\n" +
			"I thought I would sail about a little and see the watery part of the world, as is my custom.\n\n" +
			"*** END OF THE PROJECT GUTENBERG EBOOK MOBY DICK ***\n",
	}
}

func newTestHandler(catalog extract.Catalog) (*Handler, *task.Store) {
	store := task.NewStore()
	h := NewHandler(store, extract.NewService(catalog), WithTimeout(5*time.Second))
	return h, store
}

func sendParamsJSON(t *testing.T, text, sessionID string) json.RawMessage {
	t.Helper()
	p := sendParams{
		Message: &a2a.Message{
			Role:  a2a.RoleUser,
			Parts: []a2a.Part{{Kind: a2a.PartKindText, Text: text}},
		},
		SessionID: sessionID,
	}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	return raw
}

func taskParamsJSON(t *testing.T, id string) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(taskParams{ID: id})
	require.NoError(t, err)
	return raw
}

// ============================================================================
// MESSAGE/SEND
// ============================================================================

func TestMessageSend_HappyPath(t *testing.T) {
	catalog := happyCatalog()
	h, store := newTestHandler(catalog)

	resp := h.MessageSend(context.Background(),
		1, sendParamsJSON(t, "Find a book with: query: moby dick", "session-1"))

	require.Nil(t, resp.Error)
	assert.Equal(t, "moby dick", catalog.gotQuery, "instruction prefix must be stripped")

	result, ok := resp.Result.(sendResult)
	require.True(t, ok, "unexpected result type %T", resp.Result)

	assert.Equal(t, a2a.TaskStateCompleted, result.Task.Status.State)
	assert.Equal(t, "session-1", result.Task.SessionID)
	assert.GreaterOrEqual(t, result.ProcessingTimeMs, int64(0))

	require.Len(t, result.Task.Artifacts, 1)
	assert.Equal(t, "book_excerpt", result.Task.Artifacts[0].Type)
	assert.Equal(t, "Moby Dick; Or, The Whale", result.Task.Artifacts[0].Data["title"])

	require.NotNil(t, result.Message)
	assert.Equal(t, a2a.RoleAgent, result.Message.Role)
	assert.Contains(t, result.Message.Parts[0].Text, "Ishmael")

	events := historyEvents(result.Task)
	assert.Equal(t, []string{a2a.EventTaskCreated, a2a.EventTaskCompleted}, events)

	assert.Equal(t, 1, store.Len())
}

func TestMessageSend_GeneratesSessionID(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())

	resp := h.MessageSend(context.Background(), 1, sendParamsJSON(t, "moby dick", ""))

	require.Nil(t, resp.Error)
	result := resp.Result.(sendResult)
	assert.NotEmpty(t, result.Task.SessionID)
}

func TestMessageSend_ValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		params json.RawMessage
	}{
		{"malformed params", json.RawMessage(`{"message": 42}`)},
		{"no parts", json.RawMessage(`{"message": {"role": "user", "parts": []}}`)},
		{"blank text", json.RawMessage(`{"message": {"role": "user", "parts": [{"kind": "text", "text": "   "}]}}`)},
		{"empty query after prefix", nil},
		{"query too long", nil},
		{"script tag", nil},
		{"javascript uri", nil},
		{"event handler", nil},
	}
	tests[3].params = sendParamsJSON(t, "Find a book with: query:   ", "")
	tests[4].params = sendParamsJSON(t, strings.Repeat("a", 201), "")
	tests[5].params = sendParamsJSON(t, "<script>alert(1)</script>", "")
	tests[6].params = sendParamsJSON(t, "javascript:alert(1)", "")
	tests[7].params = sendParamsJSON(t, `x onclick="steal()"`, "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, store := newTestHandler(happyCatalog())

			resp := h.MessageSend(context.Background(), 1, tt.params)

			require.NotNil(t, resp.Error)
			assert.Equal(t, a2a.CodeInvalidParams, resp.Error.Code)
			assert.Equal(t, 0, store.Len(), "validation failures must not create tasks")
		})
	}
}

func TestMessageSend_PipelineFailure(t *testing.T) {
	catalog := &mockCatalog{
		searchErr: &gutendex.APIError{
			Service: gutendex.ServiceName,
			Kind:    gutendex.KindUpstream,
			Message: "catalog search failed",
		},
	}
	h, store := newTestHandler(catalog)

	resp := h.MessageSend(context.Background(), 1, sendParamsJSON(t, "moby dick", ""))

	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeInternalError, resp.Error.Code)
	data, ok := resp.Error.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, extract.CodeExternalAPI, data["code"])

	// The task was created before the pipeline ran and is left behind.
	assert.Equal(t, 1, store.Len())
}

func TestMessageSend_NotFoundCompletes(t *testing.T) {
	catalog := &mockCatalog{searchResult: &gutendex.SearchResult{}}
	h, _ := newTestHandler(catalog)

	resp := h.MessageSend(context.Background(), 1, sendParamsJSON(t, "zxqv nonsense", ""))

	require.Nil(t, resp.Error, "an empty catalog result is a condition, not an error")
	result := resp.Result.(sendResult)
	assert.Equal(t, a2a.TaskStateCompleted, result.Task.Status.State)
	assert.Empty(t, result.Task.Artifacts)
	assert.Contains(t, result.Message.Parts[0].Text, "No books found")
}

// ============================================================================
// DISPATCH
// ============================================================================

func TestRouteRequest_UnknownMethod(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())

	resp := h.RouteRequest(context.Background(),
		&a2a.Request{JSONRPC: "2.0", ID: 7, Method: "tasks/destroy"})

	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeMethodNotFound, resp.Error.Code)
	data, ok := resp.Error.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, a2a.Methods(), data["supported"])
}

func TestRouteRequest_BadMethodNames(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())

	for _, method := range []string{"", "tasks get", "tasks.get!", "<script>"} {
		resp := h.RouteRequest(context.Background(),
			&a2a.Request{JSONRPC: "2.0", ID: 1, Method: method})
		require.NotNil(t, resp.Error, "method %q", method)
		assert.Equal(t, a2a.CodeInvalidRequest, resp.Error.Code, "method %q", method)
	}
}

func TestRouteRequest_StreamRequiresSSE(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())

	resp := h.RouteRequest(context.Background(),
		&a2a.Request{JSONRPC: "2.0", ID: 1, Method: a2a.MethodMessageStream})

	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeInvalidRequest, resp.Error.Code)
}

// ============================================================================
// TASKS/*
// ============================================================================

func completedTask(t *testing.T, h *Handler) *a2a.Task {
	t.Helper()
	resp := h.MessageSend(context.Background(), 1, sendParamsJSON(t, "moby dick", ""))
	require.Nil(t, resp.Error)
	return resp.Result.(sendResult).Task
}

func TestTasksGet_ReturnsTaskWithoutMutating(t *testing.T) {
	h, store := newTestHandler(happyCatalog())
	created := completedTask(t, h)

	var before, after int
	{
		stored, _ := store.Get(created.ID)
		before = len(stored.History)
	}

	resp := h.TasksGet(2, taskParamsJSON(t, created.ID))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(getResult)
	require.True(t, ok)
	assert.Equal(t, created.ID, result.Task.ID)
	assert.GreaterOrEqual(t, result.AgeMs, int64(0))
	assert.False(t, result.RetrievedAt.IsZero())

	{
		stored, _ := store.Get(created.ID)
		after = len(stored.History)
	}
	assert.Equal(t, before, after, "tasks/get must not append history")
}

func TestTasksGet_Errors(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())

	resp := h.TasksGet(1, taskParamsJSON(t, "task-123-abc"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeTaskNotFound, resp.Error.Code)

	resp = h.TasksGet(1, taskParamsJSON(t, "../etc/passwd"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeInvalidParams, resp.Error.Code,
		"a malformed id is invalid params, not a missing task")

	resp = h.TasksGet(1, taskParamsJSON(t, ""))
	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeInvalidParams, resp.Error.Code)
}

func TestTasksCancel_WorkingTask(t *testing.T) {
	h, store := newTestHandler(happyCatalog())
	working := &a2a.Task{
		ID:     task.NewID(),
		Status: a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: time.Now()},
	}
	store.Create(working)

	resp := h.TasksCancel(1, taskParamsJSON(t, working.ID))
	require.Nil(t, resp.Error)

	result := resp.Result.(cancelResult)
	assert.Equal(t, a2a.TaskStateCanceled, result.Task.Status.State)
	require.NotNil(t, result.Task.Status.Message)
	assert.Equal(t, "Task canceled by request.", result.Task.Status.Message.Parts[0].Text)

	events := historyEvents(result.Task)
	assert.Equal(t, a2a.EventTaskCanceled, events[len(events)-1])
}

func TestTasksCancel_TerminalStatesRejected(t *testing.T) {
	h, store := newTestHandler(happyCatalog())
	completed := completedTask(t, h)

	resp := h.TasksCancel(1, taskParamsJSON(t, completed.ID))
	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeTaskNotCancelable, resp.Error.Code)
	data := resp.Error.Data.(map[string]any)
	assert.Equal(t, a2a.TaskStateCompleted, data["state"])

	// Cancel twice: the first succeeds, the second is rejected and the
	// history gains no extra record.
	working := &a2a.Task{
		ID:     task.NewID(),
		Status: a2a.TaskStatus{State: a2a.TaskStateWorking, Timestamp: time.Now()},
	}
	store.Create(working)

	first := h.TasksCancel(1, taskParamsJSON(t, working.ID))
	require.Nil(t, first.Error)
	historyAfterFirst := len(first.Result.(cancelResult).Task.History)

	second := h.TasksCancel(2, taskParamsJSON(t, working.ID))
	require.NotNil(t, second.Error)
	assert.Equal(t, a2a.CodeTaskNotCancelable, second.Error.Code)

	stored, _ := store.Get(working.ID)
	assert.Equal(t, historyAfterFirst, len(stored.History))
	assert.Equal(t, a2a.TaskStateCanceled, stored.Status.State)
}

// ============================================================================
// PUSH NOTIFICATION CONFIG
// ============================================================================

func pushParamsJSON(t *testing.T, id string, cfg *a2a.PushNotificationConfig) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(pushParams{ID: id, Config: cfg})
	require.NoError(t, err)
	return raw
}

func TestPushConfig_SetAndGetRedacted(t *testing.T) {
	h, store := newTestHandler(happyCatalog())
	created := completedTask(t, h)

	cfg := &a2a.PushNotificationConfig{
		URL: "https://hooks.example.org/notify",
		Auth: &a2a.PushAuth{
			Scheme: "bearer",
			Token:  "super-secret-token",
		},
	}

	setResp := h.TasksSetPushConfig(1, pushParamsJSON(t, created.ID, cfg))
	require.Nil(t, setResp.Error)

	setResult := setResp.Result.(pushResult)
	assert.Equal(t, "https://hooks.example.org/notify", setResult.Config.URL)
	assert.Equal(t, a2a.RedactedSecret, setResult.Config.Auth.Token)

	// The store keeps the real credential for later delivery.
	stored, _ := store.Get(created.ID)
	assert.Equal(t, "super-secret-token", stored.PushConfig.Auth.Token)
	assert.Equal(t, a2a.EventPushConfigSet, stored.History[len(stored.History)-1].Event)
	assert.Equal(t, map[string]any{"hasUrl": true, "hasAuth": true},
		stored.History[len(stored.History)-1].Data)

	getResp := h.TasksGetPushConfig(2, taskParamsJSON(t, created.ID))
	require.Nil(t, getResp.Error)
	getResult := getResp.Result.(pushResult)
	assert.Equal(t, a2a.RedactedSecret, getResult.Config.Auth.Token)

	// Nothing serialized out of the handler may carry the raw token.
	raw, err := json.Marshal(getResp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "super-secret-token")
}

func TestPushConfig_GetWithoutSet(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())
	created := completedTask(t, h)

	resp := h.TasksGetPushConfig(1, taskParamsJSON(t, created.ID))
	require.Nil(t, resp.Error)
	assert.Nil(t, resp.Result.(pushResult).Config)
}

func TestPushConfig_SetValidation(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())
	created := completedTask(t, h)

	tests := []struct {
		name     string
		params   json.RawMessage
		wantCode int
	}{
		{"missing config", taskParamsJSON(t, created.ID), a2a.CodeInvalidParams},
		{"bad scheme", pushParamsJSON(t, created.ID,
			&a2a.PushNotificationConfig{URL: "ftp://example.org/hook"}), a2a.CodeInvalidParams},
		{"relative url", pushParamsJSON(t, created.ID,
			&a2a.PushNotificationConfig{URL: "/just/a/path"}), a2a.CodeInvalidParams},
		{"unknown task", pushParamsJSON(t, "task-404-cafef00d",
			&a2a.PushNotificationConfig{URL: "https://example.org/hook"}), a2a.CodeTaskNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := h.TasksSetPushConfig(1, tt.params)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestPushConfig_TaskResponsesRedacted(t *testing.T) {
	h, _ := newTestHandler(happyCatalog())
	created := completedTask(t, h)

	setResp := h.TasksSetPushConfig(1, pushParamsJSON(t, created.ID, &a2a.PushNotificationConfig{
		URL:  "https://hooks.example.org/notify",
		Auth: &a2a.PushAuth{Scheme: "basic", Username: "svc", Password: "hunter2"},
	}))
	require.Nil(t, setResp.Error)

	getResp := h.TasksGet(2, taskParamsJSON(t, created.ID))
	require.Nil(t, getResp.Error)

	raw, err := json.Marshal(getResp)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "hunter2")
	assert.Contains(t, string(raw), a2a.RedactedSecret)
}

// ============================================================================
// RESUBSCRIBE
// ============================================================================

func TestTasksResubscribe(t *testing.T) {
	h, store := newTestHandler(happyCatalog())
	created := completedTask(t, h)

	resp := h.TasksResubscribe(1, taskParamsJSON(t, created.ID))
	require.Nil(t, resp.Error)

	result := resp.Result.(resubscribeResult)
	assert.Equal(t, created.ID, result.ID)
	assert.Equal(t, a2a.TaskStateCompleted, result.Status.State)
	assert.False(t, result.ResubscribedAt.IsZero())

	stored, _ := store.Get(created.ID)
	assert.Equal(t, a2a.EventTaskResubscribe, stored.History[len(stored.History)-1].Event)

	resp = h.TasksResubscribe(2, taskParamsJSON(t, "task-404-deadbeef"))
	require.NotNil(t, resp.Error)
	assert.Equal(t, a2a.CodeTaskNotFound, resp.Error.Code)
}

func historyEvents(t *a2a.Task) []string {
	events := make([]string, len(t.History))
	for i, rec := range t.History {
		events[i] = rec.Event
	}
	return events
}
