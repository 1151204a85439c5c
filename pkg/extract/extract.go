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

// Package extract runs the book extraction pipeline: catalog search,
// plain-text fetch, excerpt cleaning.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/seyiFortress/a2a-book-agent/pkg/excerpt"
	"github.com/seyiFortress/a2a-book-agent/pkg/gutendex"
	"github.com/seyiFortress/a2a-book-agent/pkg/observability"
)

// Catalog is the outbound book catalog dependency.
type Catalog interface {
	Search(ctx context.Context, query string) (*gutendex.SearchResult, error)
	FetchText(ctx context.Context, url string) (string, error)
}

// Service drives one extraction per call. It holds no per-query state.
type Service struct {
	catalog Catalog
}

// NewService creates an extraction service over the given catalog.
func NewService(catalog Catalog) *Service {
	return &Service{catalog: catalog}
}

// Run searches the catalog for query, fetches the best plain-text body
// of the first hit, and extracts an excerpt. The query must already be
// validated and sanitized by the caller.
func (s *Service) Run(ctx context.Context, query string) Outcome {
	result, err := s.catalog.Search(ctx, query)
	if err != nil {
		observability.CatalogRequestsTotal.WithLabelValues("search", "error").Inc()
		return failureFrom(err)
	}
	observability.CatalogRequestsTotal.WithLabelValues("search", "ok").Inc()

	if len(result.Results) == 0 {
		slog.Info("No books found", "query", query)
		return NotFound{Query: query, Suggestions: gutendex.SearchSuggestions}
	}

	// No ranking: the first catalog hit wins.
	book := result.Results[0]

	textURL, ok := book.TextURL()
	if !ok {
		slog.Info("No plain-text format", "title", book.Title)
		return NoPlainText{Title: book.Title, Formats: book.FormatList()}
	}

	fullText, err := s.catalog.FetchText(ctx, textURL)
	if err != nil {
		observability.CatalogRequestsTotal.WithLabelValues("fetch_text", "error").Inc()
		return failureFrom(err)
	}
	observability.CatalogRequestsTotal.WithLabelValues("fetch_text", "ok").Inc()

	return Success{Book: BookResult{
		Title:         book.Title,
		Authors:       book.AuthorNames(),
		Excerpt:       excerpt.Extract(fullText),
		Source:        gutendex.ServiceName,
		DownloadCount: book.DownloadCount,
		Languages:     book.Languages,
		Subjects:      book.Subjects,
	}}
}

func failureFrom(err error) Failure {
	var apiErr *gutendex.APIError
	if errors.As(err, &apiErr) {
		code := CodeExternalAPI
		if apiErr.Kind == gutendex.KindTimeout {
			code = CodeTimeout
		}
		return Failure{Code: code, Message: apiErr.Error()}
	}
	return Failure{Code: CodeInternal, Message: fmt.Sprintf("extraction failed: %v", err)}
}
