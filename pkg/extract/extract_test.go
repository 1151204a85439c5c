package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyiFortress/a2a-book-agent/pkg/gutendex"
)

type fakeCatalog struct {
	searchResult *gutendex.SearchResult
	searchErr    error
	text         string
	fetchErr     error
	fetchedURL   string
}

func (f *fakeCatalog) Search(ctx context.Context, query string) (*gutendex.SearchResult, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchResult, nil
}

func (f *fakeCatalog) FetchText(ctx context.Context, url string) (string, error) {
	f.fetchedURL = url
	if f.fetchErr != nil {
		return "", f.fetchErr
	}
	return f.text, nil
}

func sampleBook() gutendex.Book {
	return gutendex.Book{
		ID:      84,
		Title:   "Frankenstein; Or, The Modern Prometheus",
		Authors: []gutendex.Author{{Name: "Shelley, Mary Wollstonecraft"}},
		Formats: map[string]string{
			"text/plain; charset=us-ascii": "https://example.org/84.txt",
			"application/epub+zip":         "https://example.org/84.epub",
		},
		DownloadCount: 99000,
		Languages:     []string{"en"},
		Subjects:      []string{"Gothic fiction", "Science fiction"},
	}
}

func sampleText() string {
	return "*** START OF THE PROJECT GUTENBERG EBOOK FRANKENSTEIN ***\n\n" +
		"You will rejoice to hear that no disaster has accompanied the commencement of an enterprise.\n" +
		"I arrived here yesterday, and my first task is to assure my dear sister of my welfare.\n\n" +
		"*** END OF THE PROJECT GUTENBERG EBOOK FRANKENSTEIN ***\n"
}

func TestRun_Success(t *testing.T) {
	catalog := &fakeCatalog{
		searchResult: &gutendex.SearchResult{Count: 1, Results: []gutendex.Book{sampleBook()}},
		text:         sampleText(),
	}

	outcome := NewService(catalog).Run(context.Background(), "frankenstein")

	success, ok := outcome.(Success)
	require.True(t, ok, "expected Success, got %T", outcome)
	assert.Equal(t, "Frankenstein; Or, The Modern Prometheus", success.Book.Title)
	assert.Equal(t, "Shelley, Mary Wollstonecraft", success.Book.Authors)
	assert.Equal(t, gutendex.ServiceName, success.Book.Source)
	assert.Equal(t, 99000, success.Book.DownloadCount)
	assert.Contains(t, success.Book.Excerpt, "rejoice")
	assert.Equal(t, "https://example.org/84.txt", catalog.fetchedURL)
}

func TestRun_FirstResultWins(t *testing.T) {
	second := sampleBook()
	second.Title = "Some Other Book"
	catalog := &fakeCatalog{
		searchResult: &gutendex.SearchResult{Count: 2, Results: []gutendex.Book{sampleBook(), second}},
		text:         sampleText(),
	}

	outcome := NewService(catalog).Run(context.Background(), "frankenstein")

	success, ok := outcome.(Success)
	require.True(t, ok)
	assert.Equal(t, "Frankenstein; Or, The Modern Prometheus", success.Book.Title)
}

func TestRun_NotFound(t *testing.T) {
	catalog := &fakeCatalog{searchResult: &gutendex.SearchResult{}}

	outcome := NewService(catalog).Run(context.Background(), "zxqv nonsense")

	notFound, ok := outcome.(NotFound)
	require.True(t, ok, "expected NotFound, got %T", outcome)
	assert.Equal(t, "zxqv nonsense", notFound.Query)
	assert.Equal(t, gutendex.SearchSuggestions, notFound.Suggestions)
}

func TestRun_NoPlainText(t *testing.T) {
	book := sampleBook()
	book.Formats = map[string]string{
		"application/epub+zip": "https://example.org/84.epub",
		"text/html":            "https://example.org/84.html",
	}
	catalog := &fakeCatalog{
		searchResult: &gutendex.SearchResult{Count: 1, Results: []gutendex.Book{book}},
	}

	outcome := NewService(catalog).Run(context.Background(), "frankenstein")

	noText, ok := outcome.(NoPlainText)
	require.True(t, ok, "expected NoPlainText, got %T", outcome)
	assert.Equal(t, book.Title, noText.Title)
	assert.Equal(t, []string{"application/epub+zip", "text/html"}, noText.Formats)
	assert.Empty(t, catalog.fetchedURL, "fetch must not run without a plain-text URL")
}

func TestRun_SearchFailureCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "upstream error",
			err:      &gutendex.APIError{Service: gutendex.ServiceName, Kind: gutendex.KindUpstream, Message: "catalog search failed"},
			wantCode: CodeExternalAPI,
		},
		{
			name:     "timeout",
			err:      &gutendex.APIError{Service: gutendex.ServiceName, Kind: gutendex.KindTimeout, Message: "timed out"},
			wantCode: CodeTimeout,
		},
		{
			name:     "unexpected error",
			err:      errors.New("boom"),
			wantCode: CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &fakeCatalog{searchErr: tt.err}

			outcome := NewService(catalog).Run(context.Background(), "anything")

			failure, ok := outcome.(Failure)
			require.True(t, ok, "expected Failure, got %T", outcome)
			assert.Equal(t, tt.wantCode, failure.Code)
			assert.NotEmpty(t, failure.Message)
		})
	}
}

func TestRun_FetchFailure(t *testing.T) {
	catalog := &fakeCatalog{
		searchResult: &gutendex.SearchResult{Count: 1, Results: []gutendex.Book{sampleBook()}},
		fetchErr:     &gutendex.APIError{Service: gutendex.ServiceName, Kind: gutendex.KindNotFound, Message: "book text not found"},
	}

	outcome := NewService(catalog).Run(context.Background(), "frankenstein")

	failure, ok := outcome.(Failure)
	require.True(t, ok, "expected Failure, got %T", outcome)
	assert.Equal(t, CodeExternalAPI, failure.Code)
	assert.True(t, strings.Contains(failure.Message, "not found"))
}
