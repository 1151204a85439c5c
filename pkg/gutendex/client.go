package gutendex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/seyiFortress/a2a-book-agent/pkg/httpclient"
)

const (
	// ServiceName tags upstream failures in error payloads.
	ServiceName = "Project Gutenberg"

	DefaultBaseURL = "https://gutendex.com"

	searchTimeout = 10 * time.Second
	fetchTimeout  = 15 * time.Second

	// maxTextBytes caps a fetched text body at 10 MB.
	maxTextBytes = 10 << 20
)

// SearchSuggestions are the generic refinement hints attached to a
// "no books found" result.
var SearchSuggestions = []string{
	"Try a shorter or more general title",
	"Check the spelling of the title or author name",
	"Search by author name only",
}

// Client queries the Gutendex catalog. It is stateless between calls;
// all state is per-request.
type Client struct {
	baseURL    string
	maxRetries int
	baseDelay  time.Duration
	search     *httpclient.Client
	fetch      *httpclient.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the catalog endpoint, primarily for tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithMaxRetries bounds the search retry loop.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		c.maxRetries = max
	}
}

// WithRetryBaseDelay shortens the backoff unit, primarily for tests.
func WithRetryBaseDelay(d time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = d
	}
}

// New creates a catalog client with a 10s search timeout, three search
// attempts with exponential backoff, and a 15s text-fetch timeout.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		maxRetries: 3,
		baseDelay:  time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.search = httpclient.New(
		httpclient.WithTimeout(searchTimeout),
		httpclient.WithMaxRetries(c.maxRetries),
		httpclient.WithBaseDelay(c.baseDelay),
	)
	c.fetch = httpclient.New(
		httpclient.WithTimeout(fetchTimeout),
		httpclient.WithMaxRetries(1),
	)
	return c
}

// Search looks up books matching the free-text query. The query must
// already be validated; this method only URL-encodes it. The last failed
// attempt's error propagates when every retry is exhausted.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	endpoint := fmt.Sprintf("%s/books/?search=%s", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	slog.Debug("Searching catalog", "query", query)

	resp, err := c.search.Do(req)
	if err != nil {
		return nil, &APIError{
			Service: ServiceName,
			Kind:    classify(err),
			Message: fmt.Sprintf("catalog search failed: %v", err),
			Err:     err,
		}
	}
	defer resp.Body.Close()

	var result SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &APIError{
			Service: ServiceName,
			Kind:    KindUpstream,
			Message: fmt.Sprintf("invalid catalog response: %v", err),
			Err:     err,
		}
	}

	slog.Debug("Catalog search returned", "query", query, "count", result.Count)
	return &result, nil
}

// FetchText downloads the plain-text body at rawURL, capped at 10 MB.
// Timeouts and 404s are mapped to tagged failure kinds; any other
// transport failure propagates unchanged inside the error chain.
func (c *Client) FetchText(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build fetch request: %w", err)
	}

	resp, err := c.fetch.Do(req)
	if err != nil {
		if httpclient.IsTimeout(err) {
			return "", &APIError{
				Service: ServiceName,
				Kind:    KindTimeout,
				Message: "timed out fetching book text",
				Err:     err,
			}
		}
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return "", &APIError{
				Service: ServiceName,
				Kind:    KindNotFound,
				Message: "book text not found",
				Err:     err,
			}
		}
		return "", fmt.Errorf("failed to fetch book text: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read book text: %w", err)
	}

	return string(body), nil
}

func classify(err error) ErrorKind {
	if httpclient.IsTimeout(err) {
		return KindTimeout
	}
	return KindUpstream
}
