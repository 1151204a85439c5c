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

package extract

// Outcome is the closed result type of a book extraction. Exactly one of
// Success, NotFound, NoPlainText, or Failure is produced per query.
type Outcome interface {
	isOutcome()
}

// Success carries a clean excerpt and the book's metadata.
type Success struct {
	Book BookResult
}

func (Success) isOutcome() {}

// NotFound reports an empty catalog result, with generic refinement
// suggestions. It is a condition, not an error.
type NotFound struct {
	Query       string
	Suggestions []string
}

func (NotFound) isOutcome() {}

// NoPlainText reports that the matched book offers no plain-text
// download, listing the formats that do exist.
type NoPlainText struct {
	Title   string
	Formats []string
}

func (NoPlainText) isOutcome() {}

// Failure reports an upstream or internal error with a machine-readable
// code.
type Failure struct {
	Code    string
	Message string
}

func (Failure) isOutcome() {}

// Failure codes.
const (
	CodeExternalAPI = "EXTERNAL_API_ERROR"
	CodeTimeout     = "TIMEOUT_ERROR"
	CodeInternal    = "INTERNAL_ERROR"
)

// BookResult is the successful extraction payload.
type BookResult struct {
	Title         string   `json:"title"`
	Authors       string   `json:"authors"`
	Excerpt       string   `json:"excerpt"`
	Source        string   `json:"source"`
	DownloadCount int      `json:"downloadCount,omitempty"`
	Languages     []string `json:"languages,omitempty"`
	Subjects      []string `json:"subjects,omitempty"`
}
