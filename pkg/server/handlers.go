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

package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seyiFortress/a2a-book-agent/pkg/a2a"
	"github.com/seyiFortress/a2a-book-agent/pkg/extract"
)

// maxBodyBytes bounds inbound request bodies.
const maxBodyBytes = 1 << 20

// ============================================================================
// HEALTH + DISCOVERY
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"agent":   s.cfg.Agent.Name,
		"version": s.cfg.Agent.Version,
		"uptime":  time.Since(s.started).String(),
	})
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.AgentCard())
}

// ============================================================================
// REST FACADE
// ============================================================================

type extractRequest struct {
	SearchQuery string `json:"searchQuery"`
}

type restError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions,omitempty"`
	Details     any      `json:"details,omitempty"`
}

// handleExtractBook is the plain REST façade over the extraction
// pipeline; no task bookkeeping is involved.
func (s *Server) handleExtractBook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeRESTError(w, http.StatusBadRequest, restError{
			Code: "VALIDATION_ERROR", Message: "failed to read request body"})
		return
	}

	var req extractRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeRESTError(w, http.StatusBadRequest, restError{
			Code: "VALIDATION_ERROR", Message: "invalid JSON body"})
		return
	}
	if req.SearchQuery == "" {
		writeRESTError(w, http.StatusBadRequest, restError{
			Code: "VALIDATION_ERROR", Message: "searchQuery must not be empty"})
		return
	}
	if len(req.SearchQuery) > 200 {
		writeRESTError(w, http.StatusBadRequest, restError{
			Code: "VALIDATION_ERROR", Message: "searchQuery must not exceed 200 characters"})
		return
	}

	outcome := s.service.Run(r.Context(), req.SearchQuery)

	switch o := outcome.(type) {
	case extract.Success:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"data":      o.Book,
			"timestamp": time.Now().Format(time.RFC3339),
		})
	case extract.NotFound:
		writeRESTError(w, http.StatusOK, restError{
			Code:        "NO_RESULTS",
			Message:     "no books found for query",
			Suggestions: o.Suggestions,
		})
	case extract.NoPlainText:
		writeRESTError(w, http.StatusOK, restError{
			Code:    "NO_PLAIN_TEXT",
			Message: "no plain-text version available",
			Details: map[string]any{"title": o.Title, "availableFormats": o.Formats},
		})
	case extract.Failure:
		status := http.StatusBadGateway
		if o.Code == extract.CodeInternal {
			status = http.StatusInternalServerError
		}
		writeRESTError(w, status, restError{Code: o.Code, Message: o.Message})
	default:
		writeRESTError(w, http.StatusInternalServerError, restError{
			Code: extract.CodeInternal, Message: "unrecognized extraction result"})
	}
}

// ============================================================================
// A2A FACADE
// ============================================================================

// handleA2A parses the JSON-RPC envelope and dispatches it; the
// streaming method branches to the SSE path before dispatch.
func (s *Server) handleA2A(w http.ResponseWriter, r *http.Request) {
	if chi.URLParam(r, "agentID") != s.cfg.Agent.ID {
		writeJSON(w, http.StatusNotFound, a2a.NewErrorResponse(nil,
			a2a.CodeInvalidRequest, "unknown agent", nil))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusOK, a2a.NewErrorResponse(nil,
			a2a.CodeParseError, "failed to read request body", nil))
		return
	}

	var req a2a.Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusOK, a2a.NewErrorResponse(nil,
			a2a.CodeParseError, "invalid JSON", nil))
		return
	}
	if req.JSONRPC != "2.0" {
		writeJSON(w, http.StatusOK, a2a.NewErrorResponse(req.ID,
			a2a.CodeInvalidRequest, "jsonrpc must be \"2.0\"", nil))
		return
	}

	if req.Method == a2a.MethodMessageStream {
		s.handler.MessageStream(w, r, &req)
		return
	}

	writeJSON(w, http.StatusOK, s.handler.RouteRequest(r.Context(), &req))
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRESTError(w http.ResponseWriter, status int, e restError) {
	writeJSON(w, status, map[string]any{
		"success":   false,
		"error":     e,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
