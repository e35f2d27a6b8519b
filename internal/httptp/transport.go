// Package httptp is the HTTP implementation of executor.Transport.
package httptp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/hanpama/graphkit/internal/eventbus"
	"github.com/hanpama/graphkit/internal/events"
	"github.com/hanpama/graphkit/internal/executor"
	"github.com/hanpama/graphkit/internal/reqid"
)

// Transport sends GraphQL requests over HTTP with deadline defaults, shared
// headers and request ID propagation.
type Transport struct {
	opts   *Options
	client *http.Client
	closed atomic.Bool
}

func New(opts ...Option) *Transport {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	client := o.Client
	if client == nil {
		client = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
	}
	return &Transport{opts: o, client: client}
}

// Ensure we satisfy executor.Transport
var _ executor.Transport = (*Transport)(nil)

func (t *Transport) Send(ctx context.Context, req *http.Request) (body []byte, err error) {
	if t.closed.Load() {
		return nil, ErrClosed
	}

	// Determine deadline
	if _, ok := ctx.Deadline(); !ok && t.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.opts.Timeout)
		defer cancel()
	}
	req = req.WithContext(ctx)
	t.setHeaders(ctx, req)

	start := time.Now()
	status := 0
	eventbus.Publish(ctx, events.HTTPClientStart{Method: req.Method, URL: req.URL.String()})
	defer func() {
		eventbus.Publish(ctx, events.HTTPClientFinish{
			Method:   req.Method,
			URL:      req.URL.String(),
			Status:   status,
			Bytes:    len(body),
			Err:      err,
			Duration: time.Since(start),
		})
	}()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	body, err = readBody(resp.Body, t.opts.MaxBodyBytes)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		preview := string(body)
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		err = &StatusError{StatusCode: resp.StatusCode, Body: preview}
		return nil, err
	}
	return body, nil
}

// Close marks the transport closed and releases idle connections. Requests
// sent after Close fail with ErrClosed.
func (t *Transport) Close() error {
	if t.closed.Swap(true) {
		return nil
	}
	t.client.CloseIdleConnections()
	return nil
}

// ---------------- internals ----------------

func (t *Transport) setHeaders(ctx context.Context, req *http.Request) {
	for k, vs := range t.opts.Headers {
		if req.Header.Get(k) != "" {
			continue
		}
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if t.opts.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.opts.UserAgent)
	}
	if id, ok := reqid.FromContext(ctx); ok && req.Header.Get(reqid.Header) == "" {
		req.Header.Set(reqid.Header, reqid.Format(id))
	}
}

func readBody(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("httptp: read body: %w", err)
	}
	if int64(len(b)) > limit {
		return nil, ErrBodyTooLarge
	}
	return b, nil
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
