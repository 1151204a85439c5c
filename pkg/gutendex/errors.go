package gutendex

import "fmt"

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	KindTimeout  ErrorKind = "timeout"
	KindNotFound ErrorKind = "not_found"
	KindUpstream ErrorKind = "upstream"
)

// APIError is an upstream catalog or text-fetch failure, tagged with the
// name of the originating service.
type APIError struct {
	Service string
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Service, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
