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

package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/seyiFortress/a2a-book-agent/pkg/a2a"
	"github.com/seyiFortress/a2a-book-agent/pkg/extract"
	"github.com/seyiFortress/a2a-book-agent/pkg/format"
	"github.com/seyiFortress/a2a-book-agent/pkg/observability"
)

// MessageStream runs the same validation and extraction pipeline as
// MessageSend but emits a sequence of SSE frames: task created,
// searching, processing, task completed, the final message, and a
// stream-complete sentinel. On failure it emits a single error frame
// and, if a task was already created, transitions it to canceled before
// ending the stream.
func (h *Handler) MessageStream(w http.ResponseWriter, r *http.Request, req *a2a.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	stream := &sseStream{w: w, flusher: flusher}

	query, sessionID, errResp := h.parseSendRequest(req.ID, req.Params)
	if errResp != nil {
		stream.send(errResp)
		return
	}

	t := h.newTask(sessionID)
	stream.send(a2a.NewResponse(req.ID, a2a.NewTaskCreatedEvent(redactTask(t))))
	stream.send(a2a.NewResponse(req.ID, a2a.NewTaskProgressEvent(t.ID, a2a.StageSearching)))

	outcome, err := h.runPipeline(r.Context(), query)
	if err != nil {
		h.abortStream(stream, req.ID, t, pipelineErrorResponse(req.ID, err))
		return
	}

	stream.send(a2a.NewResponse(req.ID, a2a.NewTaskProgressEvent(t.ID, a2a.StageProcessing)))

	if f, ok := outcome.(extract.Failure); ok {
		h.abortStream(stream, req.ID, t, a2a.NewErrorResponse(req.ID,
			a2a.CodeInternalError, f.Message, map[string]any{"code": f.Code}))
		return
	}

	msg := a2a.NewAgentTextMessage(format.Format(outcome))
	h.completeTask(t, msg, artifactFor(outcome))

	stream.send(a2a.NewResponse(req.ID, a2a.NewTaskCompletedEvent(redactTask(t))))
	stream.send(a2a.NewResponse(req.ID, a2a.NewTaskMessageEvent(t.ID, msg)))
	stream.send(a2a.NewResponse(req.ID, a2a.NewStreamCompleteEvent()))
}

// abortStream emits one error frame and cancels the already-created
// task with an explanatory message.
func (h *Handler) abortStream(stream *sseStream, id any, t *a2a.Task, errResp *a2a.Response) {
	stream.send(errResp)

	h.mu.Lock()
	defer h.mu.Unlock()
	if t.Status.State.Terminal() {
		return
	}
	h.transition(t, a2a.TaskStateCanceled,
		a2a.NewAgentTextMessage("Task canceled: "+errResp.Error.Message),
		a2a.EventTaskCanceled, map[string]any{"reason": errResp.Error.Message})
	observability.TasksCanceledTotal.Inc()
}

// sseStream writes "data: <json>\n\n" frames and flushes after each.
type sseStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func (s *sseStream) send(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal stream frame", "error", err)
		return
	}
	fmt.Fprintf(s.w, "data: %s\n\n", data)
	s.flusher.Flush()
}
