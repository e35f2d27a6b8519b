package executor

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"

	"github.com/tidwall/gjson"
)

// MockHandler answers one recorded request.
type MockHandler func(ctx context.Context, req MockRequest) ([]byte, error)

// MockRequest is a snapshot of a request passed to MockTransport.Send.
type MockRequest struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
	// Query is the document, taken from the JSON body or the "query" URL
	// parameter.
	Query string
}

// MockTransport implements Transport in memory and records every request.
type MockTransport struct {
	mu       sync.Mutex
	handler  MockHandler
	requests []MockRequest
}

// NewMockTransport returns a transport that always answers with body.
func NewMockTransport(body string) *MockTransport {
	return NewMockTransportFunc(func(context.Context, MockRequest) ([]byte, error) {
		return []byte(body), nil
	})
}

// NewMockErrorTransport returns a transport that always fails with err.
func NewMockErrorTransport(err error) *MockTransport {
	return NewMockTransportFunc(func(context.Context, MockRequest) ([]byte, error) {
		return nil, err
	})
}

func NewMockTransportFunc(h MockHandler) *MockTransport {
	return &MockTransport{handler: h}
}

var _ Transport = (*MockTransport)(nil)

func (m *MockTransport) Send(ctx context.Context, req *http.Request) ([]byte, error) {
	rec := MockRequest{
		Method: req.Method,
		URL:    req.URL.String(),
		Header: req.Header.Clone(),
	}
	if req.Body != nil {
		b, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}
		_ = req.Body.Close()
		rec.Body = b
	}
	if len(bytes.TrimSpace(rec.Body)) > 0 {
		rec.Query = gjson.GetBytes(rec.Body, "query").String()
	} else {
		rec.Query = req.URL.Query().Get("query")
	}

	m.mu.Lock()
	m.requests = append(m.requests, rec)
	h := m.handler
	m.mu.Unlock()

	return h(ctx, rec)
}

// Requests returns a copy of the recorded requests.
func (m *MockTransport) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockRequest(nil), m.requests...)
}
