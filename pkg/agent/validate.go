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
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/seyiFortress/a2a-book-agent/pkg/a2a"
)

const (
	// queryPrefix is the instruction prefix the chat platform prepends;
	// it is stripped before the query reaches the catalog.
	queryPrefix = "Find a book with: query:"

	maxQueryLength = 200
)

var (
	taskIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	methodRe = regexp.MustCompile(`^[a-zA-Z0-9_/-]+$`)

	scriptTagRe    = regexp.MustCompile(`(?i)<\s*script`)
	jsURIRe        = regexp.MustCompile(`(?i)javascript\s*:`)
	eventHandlerRe = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// ValidationError is a bad-caller-input failure. It never reaches the
// task store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// firstText returns the first non-empty text part of the message. The
// message must contain at least one part and at least one text part
// with content.
func firstText(m *a2a.Message) (string, error) {
	if m == nil || len(m.Parts) == 0 {
		return "", &ValidationError{Field: "message", Message: "must contain at least one part"}
	}
	for _, part := range m.Parts {
		if part.Kind == a2a.PartKindText && strings.TrimSpace(part.Text) != "" {
			return part.Text, nil
		}
	}
	return "", &ValidationError{Field: "message", Message: "must contain a non-empty text part"}
}

// extractQuery pulls the search query out of the message text. A known
// instruction prefix is stripped when present; otherwise the whole
// trimmed text is the query.
func extractQuery(text string) string {
	trimmed := strings.TrimSpace(text)
	if idx := strings.Index(trimmed, queryPrefix); idx >= 0 {
		return strings.TrimSpace(trimmed[idx+len(queryPrefix):])
	}
	return trimmed
}

// validateQuery enforces length bounds and rejects embedded script
// content before any network call is made.
func validateQuery(query string) error {
	if query == "" {
		return &ValidationError{Field: "query", Message: "must not be empty"}
	}
	if len(query) > maxQueryLength {
		return &ValidationError{
			Field:   "query",
			Message: fmt.Sprintf("must not exceed %d characters", maxQueryLength),
		}
	}
	if scriptTagRe.MatchString(query) || jsURIRe.MatchString(query) || eventHandlerRe.MatchString(query) {
		return &ValidationError{Field: "query", Message: "contains disallowed content"}
	}
	return nil
}

// validateTaskID checks the id's syntax only; existence is a separate
// concern with a separate error code.
func validateTaskID(id string) error {
	if id == "" {
		return &ValidationError{Field: "id", Message: "must not be empty"}
	}
	if !taskIDRe.MatchString(id) {
		return &ValidationError{Field: "id", Message: "contains invalid characters"}
	}
	return nil
}

// validatePushURL requires a well-formed absolute http(s) URL.
func validatePushURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: "url", Message: "must be a well-formed URL"}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ValidationError{Field: "url", Message: "must be an absolute http(s) URL"}
	}
	return nil
}
