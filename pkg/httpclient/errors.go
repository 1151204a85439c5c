package httpclient

import "fmt"

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// RetryableError wraps a failure of the retry machinery itself.
type RetryableError struct {
	Message  string
	Attempts int
	Err      error
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("%s (after %d attempts)", e.Message, e.Attempts)
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
