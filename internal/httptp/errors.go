package httptp

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed indicates the transport was closed.
	ErrClosed = errors.New("httptp: closed")
	// ErrBodyTooLarge indicates the response exceeded MaxBodyBytes.
	ErrBodyTooLarge = errors.New("httptp: response body too large")
)

// StatusError reports a response with a non-2xx status code.
type StatusError struct {
	StatusCode int
	// Body is the response body truncated to 500 bytes.
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httptp: status %d: %s", e.StatusCode, e.Body)
}
