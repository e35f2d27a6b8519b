package otel

import (
	"context"
	"strings"
	"sync"

	"github.com/hanpama/graphkit/internal/eventbus"
	"github.com/hanpama/graphkit/internal/events"
	"github.com/hanpama/graphkit/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Setup configures OpenTelemetry and attaches eventbus subscribers.
// If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	bus := eventbus.Current()
	if bus == nil {
		bus = eventbus.New()
		eventbus.Use(bus)
	}
	unregister := Register(bus, otel.Tracer("graphkit"))

	return func(ctx context.Context) error {
		unregister()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes span-producing handlers to bus. Spans are correlated by
// the request ID carried in the event context.
func Register(bus *eventbus.Bus, tracer trace.Tracer) (unregister func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type subscriber struct {
	tracer     trace.Tracer
	opSpans    sync.Map // rid -> trace.Span
	clientSpan sync.Map // rid -> trace.Span
	httpSpans  sync.Map // rid -> trace.Span
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	offs := []func(){
		eventbus.On(bus, func(ctx context.Context, e events.OperationStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "graphql.operation", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				attribute.String("graphql.operation.type", e.Kind),
				attribute.String("graphql.operation.name", strings.Join(e.Names, ",")),
				attribute.String("graphql.endpoint", e.Endpoint),
			)
			s.opSpans.Store(rid, span)
		}),

		eventbus.On(bus, func(ctx context.Context, e events.DispatchFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.opSpans.Load(rid)
			if !ok {
				return
			}
			attrs := []attribute.KeyValue{
				attribute.String("graphql.field", e.Name),
				attribute.Int("graphql.deliveries", e.Deliveries),
			}
			if e.Err != nil {
				attrs = append(attrs, attribute.String("error", e.Err.Error()))
			}
			v.(trace.Span).AddEvent("dispatch", trace.WithAttributes(attrs...))
		}),

		eventbus.On(bus, func(ctx context.Context, e events.OperationFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.opSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				attribute.Int("graphql.error_count", len(e.ServerErrors)),
				attribute.Int("graphql.deliveries", e.Deliveries),
			)
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),

		eventbus.On(bus, func(ctx context.Context, e events.HTTPClientStart) {
			rid, _ := reqid.FromContext(ctx)
			parent := ctx
			if v, ok := s.opSpans.Load(rid); ok {
				parent = trace.ContextWithSpan(ctx, v.(trace.Span))
			}
			_, span := s.tracer.Start(parent, "http.client", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Method),
				attribute.String("http.url", e.URL),
			)
			s.clientSpan.Store(rid, span)
		}),

		eventbus.On(bus, func(ctx context.Context, e events.HTTPClientFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.clientSpan.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			if e.Status != 0 {
				span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			}
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End()
		}),

		eventbus.On(bus, func(ctx context.Context, e events.HTTPStart) {
			rid, _ := reqid.FromContext(ctx)
			parent := ctx
			if v, ok := s.clientSpan.Load(rid); ok {
				parent = trace.ContextWithSpan(ctx, v.(trace.Span))
			}
			_, span := s.tracer.Start(parent, "http.request", trace.WithSpanKind(trace.SpanKindServer))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.target", e.Request.URL.Path),
			)
			s.httpSpans.Store(rid, span)
		}),

		eventbus.On(bus, func(ctx context.Context, e events.HTTPFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.httpSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			span.End()
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}
