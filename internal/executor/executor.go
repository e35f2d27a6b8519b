package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/hanpama/graphkit/internal/dispatch"
	"github.com/hanpama/graphkit/internal/document"
	"github.com/hanpama/graphkit/internal/eventbus"
	"github.com/hanpama/graphkit/internal/events"
	"github.com/hanpama/graphkit/internal/gqlerr"
	"github.com/hanpama/graphkit/internal/language"
	"github.com/hanpama/graphkit/internal/reqid"
	"github.com/hanpama/graphkit/internal/selection"
	"github.com/tidwall/gjson"
)

// Operation is one top-level field of a request.
type Operation = selection.Operation

// Executor issues operations against one endpoint. It holds no per-request
// state and may be shared between goroutines.
type Executor struct {
	endpoint  string
	transport Transport
	opts      *Options
}

// NewExecutor creates an Executor. The endpoint is validated on every call so
// that a bad address surfaces as InvalidEndpoint from Execute.
func NewExecutor(endpoint string, transport Transport, opts ...Option) *Executor {
	o := defaultOptions()
	for _, f := range opts {
		f(o)
	}
	if o.RequestBuilder == nil {
		o.RequestBuilder = DefaultRequestBuilder
	}
	return &Executor{endpoint: endpoint, transport: transport, opts: o}
}

func (e *Executor) Endpoint() string { return e.endpoint }

// Query executes ops as one query document.
func (e *Executor) Query(ctx context.Context, ops ...Operation) (*Result, error) {
	return e.Execute(ctx, language.Query, ops...)
}

// Mutation executes ops as one mutation document.
func (e *Executor) Mutation(ctx context.Context, ops ...Operation) (*Result, error) {
	return e.Execute(ctx, language.Mutation, ops...)
}

// Execute serializes ops into one document of the given kind, sends it and
// dispatches the response. The returned Result is non-nil whenever a response
// envelope was parsed, even if dispatch failed.
func (e *Executor) Execute(ctx context.Context, kind language.Operation, ops ...Operation) (*Result, error) {
	if kind != language.Query && kind != language.Mutation {
		return nil, gqlerr.Errorf(gqlerr.SchemaViolation, nil, "unsupported operation kind %q", kind)
	}
	if err := validateOperations(ops); err != nil {
		return nil, err
	}
	endpoint, err := ParseEndpoint(e.endpoint)
	if err != nil {
		return nil, err
	}

	doc := document.Serialize(ops, kind)
	ctx, _ = reqid.Ensure(ctx)
	names := operationNames(ops)

	eventbus.Publish(ctx, events.OperationStart{
		Endpoint: endpoint.String(),
		Kind:     string(kind),
		Names:    names,
		Document: doc,
	})
	start := time.Now()
	res, err := e.execute(ctx, endpoint, doc, ops)
	finish := events.OperationFinish{
		Endpoint: endpoint.String(),
		Kind:     string(kind),
		Names:    names,
		Err:      err,
		Duration: time.Since(start),
	}
	if res != nil {
		finish.ServerErrors = res.Errors
		finish.Deliveries = res.Deliveries
	}
	eventbus.Publish(ctx, finish)
	return res, err
}

func (e *Executor) execute(ctx context.Context, endpoint *url.URL, doc string, ops []Operation) (*Result, error) {
	if e.transport == nil {
		return nil, gqlerr.Errorf(gqlerr.RequestFailed, nil, "no transport configured")
	}
	req, err := e.opts.RequestBuilder(endpoint, doc)
	if err != nil {
		return nil, &gqlerr.Error{Kind: gqlerr.RequestFailed, Message: "build request", Err: err}
	}
	if req == nil {
		return nil, gqlerr.Errorf(gqlerr.RequestFailed, nil, "request builder returned no request")
	}
	req = req.WithContext(ctx)
	if e.opts.RequestEditor != nil {
		e.opts.RequestEditor(req)
	}

	body, err := e.transport.Send(ctx, req)
	if err != nil {
		return nil, gqlerr.Wrap(gqlerr.RequestFailed, nil, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, gqlerr.Wrap(gqlerr.RequestFailed, nil, err)
	}

	res, data, err := parseEnvelope(body)
	if err != nil {
		return nil, err
	}
	res.Document = doc

	for _, op := range ops {
		plan, err := dispatch.PrepareOperation(data, op)
		if err != nil {
			eventbus.Publish(ctx, events.DispatchFinish{Name: op.Name, Err: err})
			return res, err
		}
		plan.Run()
		res.Deliveries += plan.Len()
		eventbus.Publish(ctx, events.DispatchFinish{Name: op.Name, Deliveries: plan.Len()})
	}
	return res, nil
}

// parseEnvelope checks that body is a JSON object and splits it into the
// server errors and the data member.
func parseEnvelope(body []byte) (*Result, gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return nil, gjson.Result{}, gqlerr.Errorf(gqlerr.MalformedResponse, nil, "response body is not JSON: %s", preview(body))
	}
	env := gjson.ParseBytes(body)
	if !env.IsObject() {
		return nil, gjson.Result{}, gqlerr.Errorf(gqlerr.MalformedResponse, nil, "response body is not a JSON object: %s", preview(body))
	}

	res := &Result{}
	if errs := env.Get("errors"); errs.Exists() && errs.Type != gjson.Null {
		if err := json.Unmarshal([]byte(errs.Raw), &res.Errors); err != nil {
			return nil, gjson.Result{}, &gqlerr.Error{Kind: gqlerr.MalformedResponse, Path: gqlerr.Path{"errors"}, Message: "decode errors", Err: err}
		}
	}
	return res, env.Get("data"), nil
}

func validateOperations(ops []Operation) error {
	if len(ops) == 0 {
		return gqlerr.Errorf(gqlerr.SchemaViolation, nil, "no operations to execute")
	}
	seen := make(map[string]bool, len(ops))
	for i, op := range ops {
		if op.Name == "" {
			return gqlerr.Errorf(gqlerr.SchemaViolation, nil, "operation %d has no name", i)
		}
		if op.Root == nil {
			return gqlerr.Errorf(gqlerr.SchemaViolation, gqlerr.Path{op.Name}, "operation has no selection")
		}
		if seen[op.Name] {
			return gqlerr.Errorf(gqlerr.SchemaViolation, gqlerr.Path{op.Name}, "operation selected twice")
		}
		seen[op.Name] = true
	}
	return nil
}

// ParseEndpoint accepts absolute http and https URLs.
func ParseEndpoint(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, gqlerr.Errorf(gqlerr.InvalidEndpoint, nil, "endpoint is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, gqlerr.Wrap(gqlerr.InvalidEndpoint, nil, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, gqlerr.Errorf(gqlerr.InvalidEndpoint, nil, "unsupported scheme in %q", raw)
	}
	if u.Host == "" {
		return nil, gqlerr.Errorf(gqlerr.InvalidEndpoint, nil, "missing host in %q", raw)
	}
	return u, nil
}

func operationNames(ops []Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Name
	}
	return out
}

func preview(b []byte) string {
	const limit = 120
	if len(b) > limit {
		return fmt.Sprintf("%q...", b[:limit])
	}
	return fmt.Sprintf("%q", b)
}
