package events

import (
	"net/http"
	"time"
)

// HTTPClientStart is emitted before an outgoing GraphQL HTTP request.
type HTTPClientStart struct {
	Method string
	URL    string
}

// HTTPClientFinish is emitted after an outgoing request completes. Status is
// zero when no response was received.
type HTTPClientFinish struct {
	Method   string
	URL      string
	Status   int
	Bytes    int
	Err      error
	Duration time.Duration
}

// HTTPStart is emitted when the mock server receives a request.
// Context carries the request context.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is emitted after the mock server handler completes.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	Duration time.Duration
}
