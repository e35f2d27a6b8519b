// Package mockserver is an in-process GraphQL endpoint for tests and demos.
//
// It parses every received document with gqlparser, optionally validates it
// against a schema, records it, and answers with canned data keyed by root
// field name. It resolves nothing.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/hanpama/graphkit/internal/eventbus"
	"github.com/hanpama/graphkit/internal/events"
	"github.com/hanpama/graphkit/internal/language"
	"github.com/hanpama/graphkit/internal/reqid"
	"github.com/tidwall/sjson"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type Options struct {
	// Schema enables validation of received documents when set.
	Schema *language.Schema

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// Pretty enables indented JSON responses.
	Pretty bool
}

type Option func(*Options)

func WithSchema(s *language.Schema) Option { return func(o *Options) { o.Schema = s } }
func WithMaxBodyBytes(n int64) Option      { return func(o *Options) { o.MaxBodyBytes = n } }
func WithPretty() Option                   { return func(o *Options) { o.Pretty = true } }

// WithSDL parses sdl and enables validation against it. It panics on invalid
// SDL since fixtures are static.
func WithSDL(sdl string) Option {
	s, err := language.LoadSchema("mockserver.graphql", sdl)
	if err != nil {
		panic(fmt.Sprintf("mockserver: %v", err))
	}
	return WithSchema(s)
}

// Received is a request the handler accepted.
type Received struct {
	Method        string
	Query         string
	OperationType string
	// Fields lists the response keys of the top-level selections.
	Fields []string
	Header http.Header
}

// Handler is an http.Handler that serves canned GraphQL responses.
type Handler struct {
	opt Options

	mu        sync.Mutex
	responses map[string]json.RawMessage
	errors    gqlerror.List
	received  []Received
}

func New(opts ...Option) *Handler {
	var o Options
	for _, f := range opts {
		f(&o)
	}
	return &Handler{opt: o, responses: map[string]json.RawMessage{}}
}

// Start serves h on a new httptest.Server. The caller closes the server.
func Start(opts ...Option) (*Handler, *httptest.Server) {
	h := New(opts...)
	return h, httptest.NewServer(h)
}

// Respond sets the data returned for the top-level field name. v is encoded
// with encoding/json; json.RawMessage is sent as is.
func (h *Handler) Respond(name string, v any) error {
	raw, ok := v.(json.RawMessage)
	if !ok {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("mockserver: encode %s: %w", name, err)
		}
		raw = b
	}
	h.mu.Lock()
	h.responses[name] = raw
	h.mu.Unlock()
	return nil
}

// RespondJSON sets the raw JSON returned for the top-level field name.
func (h *Handler) RespondJSON(name, raw string) {
	h.mu.Lock()
	h.responses[name] = json.RawMessage(raw)
	h.mu.Unlock()
}

// AddError appends a server error sent with every response.
func (h *Handler) AddError(message string, path ...any) {
	e := &gqlerror.Error{Message: message}
	for _, p := range path {
		switch v := p.(type) {
		case int:
			e.Path = append(e.Path, ast.PathIndex(v))
		default:
			e.Path = append(e.Path, ast.PathName(fmt.Sprint(v)))
		}
	}
	h.mu.Lock()
	h.errors = append(h.errors, e)
	h.mu.Unlock()
}

// Received returns a copy of the accepted requests.
func (h *Handler) Received() []Received {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Received(nil), h.received...)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if id, ok := reqid.Parse(r.Header.Get(reqid.Header)); ok {
		ctx = reqid.WithID(ctx, id)
	} else {
		ctx, _ = reqid.NewContext(ctx)
	}

	status := http.StatusOK
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, Duration: time.Since(start)})
	}()

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		h.writeJSON(w, status, errorResponse("method not allowed"))
		return
	}

	req, err := parseRequest(r, h.opt.MaxBodyBytes)
	if err != nil {
		status = http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.writeJSON(w, status, errorResponse(err.Error()))
		return
	}

	body, failure := h.execute(ctx, r, req)
	if failure != nil {
		h.writeJSON(w, status, failure)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) execute(_ context.Context, r *http.Request, req graphQLRequest) ([]byte, any) {
	var doc *language.QueryDocument
	var err error
	if h.opt.Schema != nil {
		doc, err = language.ValidateQuery(h.opt.Schema, req.Query)
	} else {
		doc, err = language.ParseQuery(req.Query)
	}
	if err != nil {
		var list gqlerror.List
		if errors.As(err, &list) {
			return nil, specResult{Errors: list}
		}
		var ge *gqlerror.Error
		if errors.As(err, &ge) {
			return nil, specResult{Errors: gqlerror.List{ge}}
		}
		return nil, errorResponse(err.Error())
	}

	op := doc.Operations.ForName(req.OperationName)
	if op == nil && len(doc.Operations) > 0 {
		op = doc.Operations[0]
	}
	if op == nil {
		return nil, errorResponse("no operation")
	}

	rec := Received{
		Method:        r.Method,
		Query:         req.Query,
		OperationType: string(op.Operation),
		Header:        r.Header.Clone(),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	out := []byte(`{"data":{}}`)
	for _, sel := range op.SelectionSet {
		f, ok := sel.(*language.Field)
		if !ok {
			continue
		}
		key := f.Alias
		if key == "" {
			key = f.Name
		}
		rec.Fields = append(rec.Fields, key)
		raw, ok := h.responses[f.Name]
		if !ok {
			raw = json.RawMessage("null")
		}
		if out, err = sjson.SetRawBytes(out, "data."+key, raw); err != nil {
			return nil, errorResponse(err.Error())
		}
	}
	if len(h.errors) > 0 {
		errs, err := json.Marshal(h.errors)
		if err != nil {
			return nil, errorResponse(err.Error())
		}
		if out, err = sjson.SetRawBytes(out, "errors", errs); err != nil {
			return nil, errorResponse(err.Error())
		}
	}
	h.received = append(h.received, rec)
	return out, nil
}

// ------------------ Request parsing ------------------

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

var errBodyTooLarge = errors.New("body too large")

func parseRequest(r *http.Request, maxBody int64) (graphQLRequest, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return graphQLRequest{}, errors.New("missing 'query'")
		}
		return graphQLRequest{Query: q, OperationName: r.URL.Query().Get("operationName")}, nil
	}

	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return graphQLRequest{}, errors.New("unsupported Content-Type")
	}
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return graphQLRequest{}, errors.New("failed to read body")
	}
	defer r.Body.Close()
	if maxBody > 0 && int64(len(body)) > maxBody {
		return graphQLRequest{}, errBodyTooLarge
	}
	if len(body) > 0 && body[0] == '[' {
		return graphQLRequest{}, errors.New("batched requests are not supported")
	}
	var req graphQLRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return graphQLRequest{}, errors.New("invalid JSON")
	}
	if req.Query == "" {
		return graphQLRequest{}, errors.New("missing 'query'")
	}
	return req, nil
}

// ------------------ Response formatting ------------------

type specResult struct {
	Data   any           `json:"data"`
	Errors gqlerror.List `json:"errors,omitempty"`
}

func errorResponse(message string) specResult {
	return specResult{Errors: gqlerror.List{{Message: message}}}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if h.opt.Pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}
