// Package httpclient wraps net/http with a bounded exponential-backoff
// retry loop for outbound catalog calls.
package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"time"
)

type Client struct {
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
}

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithMaxRetries(max int) Option {
	return func(c *Client) {
		c.maxRetries = max
	}
}

func WithBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = delay
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

func New(opts ...Option) *Client {
	client := &Client{
		client:     &http.Client{Timeout: 10 * time.Second},
		maxRetries: 3,
		baseDelay:  time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do issues the request with up to maxRetries attempts. Attempt n waits
// baseDelay * 2^n before retrying; the final attempt's error propagates
// unchanged to the caller.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, &RetryableError{
					Message:  "failed to recreate request body for retry",
					Attempts: attempt,
					Err:      err,
				}
			}
			req.Body = body
		}

		resp, retryable, err := c.attempt(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !retryable || attempt == c.maxRetries-1 {
			break
		}

		delay := time.Duration(math.Pow(2, float64(attempt))) * c.baseDelay
		slog.Warn("Retrying request",
			"url", req.URL.String(),
			"attempt", attempt+1,
			"max", c.maxRetries,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}

	return nil, lastErr
}

func (c *Client) attempt(req *http.Request) (*http.Response, bool, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		// Transport failures (timeouts, refused connections) are
		// retryable unless the caller's context is gone.
		if req.Context().Err() != nil {
			return nil, false, err
		}
		return nil, true, err
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, false, nil
	}

	retryable := resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests
	resp.Body.Close()
	return nil, retryable, &StatusError{StatusCode: resp.StatusCode, URL: req.URL.String()}
}

// Timeout returns the per-request timeout of the underlying client.
func (c *Client) Timeout() time.Duration {
	return c.client.Timeout
}

// IsTimeout reports whether err looks like a deadline or timeout failure.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
