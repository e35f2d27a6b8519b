package executor

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/tidwall/sjson"
)

// Transport delivers a prepared HTTP request and returns the raw response
// body.
//
// Contract
//   - Send must honor ctx; the executor treats any error as RequestFailed.
//   - Send must not retry on its own; retries belong to higher layers.
//   - The returned bytes are owned by the caller.
type Transport interface {
	Send(ctx context.Context, req *http.Request) ([]byte, error)
}

// RequestBuilder turns a serialized document into an HTTP request for
// endpoint.
type RequestBuilder func(endpoint *url.URL, document string) (*http.Request, error)

// RequestEditor adjusts a built request, typically to add headers.
type RequestEditor func(req *http.Request)

// DefaultRequestBuilder POSTs {"query": document} as JSON.
func DefaultRequestBuilder(endpoint *url.URL, document string) (*http.Request, error) {
	body, err := sjson.SetBytes([]byte(`{}`), "query", document)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// GETRequestBuilder sends the document in the "query" URL parameter, keeping
// any parameters already present on endpoint.
func GETRequestBuilder(endpoint *url.URL, document string) (*http.Request, error) {
	u := *endpoint
	q := u.Query()
	q.Set("query", document)
	u.RawQuery = q.Encode()
	req, err := http.NewRequest(http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return req, nil
}
