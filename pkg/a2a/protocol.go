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

// Package a2a declares the wire types of the agent-to-agent protocol
// surface: tasks, messages, agent cards, and the JSON-RPC envelope.
package a2a

import (
	"time"
)

// ============================================================================
// TASK - Unit of Work
// ============================================================================

// Task is the unit of work tracked by the agent. A task is created in
// TaskStateWorking and transitions exactly once into a terminal state.
type Task struct {
	ID         string                  `json:"id"`
	SessionID  string                  `json:"sessionId,omitempty"`
	Status     TaskStatus              `json:"status"`
	Artifacts  []Artifact              `json:"artifacts,omitempty"`
	History    []HistoryRecord         `json:"history,omitempty"`
	PushConfig *PushNotificationConfig `json:"pushNotificationConfig,omitempty"`
}

// TaskStatus holds the current lifecycle state together with the time it
// was last set and an optional message attached to that state.
type TaskStatus struct {
	State     TaskState `json:"state"`
	Timestamp time.Time `json:"timestamp"`
	Message   *Message  `json:"message,omitempty"`
}

// TaskState represents the lifecycle state of a task.
type TaskState string

const (
	TaskStateWorking   TaskState = "working"
	TaskStateCompleted TaskState = "completed"
	TaskStateCanceled  TaskState = "canceled"
)

// Terminal reports whether no further business-logic transition is
// accepted from this state.
func (s TaskState) Terminal() bool {
	return s == TaskStateCompleted || s == TaskStateCanceled
}

// HistoryRecord is one entry of a task's append-only audit trail. Every
// lifecycle transition appends exactly one record.
type HistoryRecord struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Data      map[string]any `json:"data,omitempty"`
}

// History event names.
const (
	EventTaskCreated     = "task_created"
	EventTaskCompleted   = "task_completed"
	EventTaskCanceled    = "task_canceled"
	EventPushConfigSet   = "push_config_set"
	EventTaskResubscribe = "task_resubscribed"
)

// Artifact is a typed result object attached to a completed task.
type Artifact struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// ============================================================================
// PUSH NOTIFICATION CONFIG
// ============================================================================

// PushNotificationConfig is a caller-supplied webhook descriptor. It is
// stored and returned (with credentials redacted) but never invoked; no
// outbound webhook delivery exists.
type PushNotificationConfig struct {
	URL  string    `json:"url,omitempty"`
	Auth *PushAuth `json:"authentication,omitempty"`
}

// PushAuth describes how the webhook endpoint authenticates the agent.
type PushAuth struct {
	Scheme   string `json:"scheme,omitempty"` // "bearer" or "basic"
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Redacted returns a copy safe to echo back to callers: secrets are
// masked, the URL and scheme survive.
func (c *PushNotificationConfig) Redacted() *PushNotificationConfig {
	if c == nil {
		return nil
	}
	out := &PushNotificationConfig{URL: c.URL}
	if c.Auth != nil {
		out.Auth = &PushAuth{Scheme: c.Auth.Scheme, Username: c.Auth.Username}
		if c.Auth.Token != "" {
			out.Auth.Token = RedactedSecret
		}
		if c.Auth.Password != "" {
			out.Auth.Password = RedactedSecret
		}
	}
	return out
}

// RedactedSecret replaces stored credentials in any response payload.
const RedactedSecret = "[REDACTED]"

// ============================================================================
// MESSAGE - Chat-style messages
// ============================================================================

// Message is a chat-style message exchanged with the agent.
type Message struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part is one content part of a message. Only "text" parts carry
// meaning for this agent; other kinds are passed through untouched.
type Part struct {
	Kind string         `json:"kind"`
	Text string         `json:"text,omitempty"`
	Data map[string]any `json:"data,omitempty"`
}

const (
	PartKindText = "text"
	PartKindData = "data"

	RoleUser  = "user"
	RoleAgent = "agent"
)

// NewAgentTextMessage builds a single-part agent message.
func NewAgentTextMessage(text string) *Message {
	return &Message{
		Role:  RoleAgent,
		Parts: []Part{{Kind: PartKindText, Text: text}},
	}
}

// ============================================================================
// AGENT CARD - Discovery
// ============================================================================

// AgentCard is the static capability descriptor served at
// /.well-known/agent.json.
type AgentCard struct {
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	URL          string            `json:"url,omitempty"`
	Version      string            `json:"version"`
	Capabilities AgentCapabilities `json:"capabilities"`
	Methods      []string          `json:"methods"`
	Skills       []AgentSkill      `json:"skills,omitempty"`
}

// AgentCapabilities advertises protocol-level features.
type AgentCapabilities struct {
	Streaming         bool `json:"streaming"`
	PushNotifications bool `json:"pushNotifications"`
}

// AgentSkill describes one skill the agent offers.
type AgentSkill struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}
