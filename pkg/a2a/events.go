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

package a2a

// TaskEvent is the closed set of frame payloads emitted on a streaming
// response. Each variant carries its own kind discriminator.
type TaskEvent interface {
	isTaskEvent()
}

// TaskCreatedEvent announces the freshly created task.
type TaskCreatedEvent struct {
	Kind string `json:"kind"`
	Task *Task  `json:"task"`
}

func (TaskCreatedEvent) isTaskEvent() {}

// TaskProgressEvent reports a pipeline stage while the task is working.
type TaskProgressEvent struct {
	Kind   string `json:"kind"`
	TaskID string `json:"taskId"`
	Stage  string `json:"stage"`
}

func (TaskProgressEvent) isTaskEvent() {}

// TaskCompletedEvent carries the task in its final completed state.
type TaskCompletedEvent struct {
	Kind string `json:"kind"`
	Task *Task  `json:"task"`
}

func (TaskCompletedEvent) isTaskEvent() {}

// TaskMessageEvent carries the final chat message of the stream.
type TaskMessageEvent struct {
	Kind    string   `json:"kind"`
	TaskID  string   `json:"taskId"`
	Message *Message `json:"message"`
}

func (TaskMessageEvent) isTaskEvent() {}

// StreamCompleteEvent is the stream-terminating sentinel.
type StreamCompleteEvent struct {
	Status string `json:"status"`
}

func (StreamCompleteEvent) isTaskEvent() {}

// Progress stage names.
const (
	StageSearching  = "searching"
	StageProcessing = "processing"
)

func NewTaskCreatedEvent(t *Task) TaskCreatedEvent {
	return TaskCreatedEvent{Kind: "task_created", Task: t}
}

func NewTaskProgressEvent(taskID, stage string) TaskProgressEvent {
	return TaskProgressEvent{Kind: "progress", TaskID: taskID, Stage: stage}
}

func NewTaskCompletedEvent(t *Task) TaskCompletedEvent {
	return TaskCompletedEvent{Kind: "task_completed", Task: t}
}

func NewTaskMessageEvent(taskID string, m *Message) TaskMessageEvent {
	return TaskMessageEvent{Kind: "message", TaskID: taskID, Message: m}
}

func NewStreamCompleteEvent() StreamCompleteEvent {
	return StreamCompleteEvent{Status: "stream_complete"}
}
