// Package logging turns eventbus events into zap log lines.
package logging

import (
	"context"
	"fmt"

	"github.com/hanpama/graphkit/internal/eventbus"
	"github.com/hanpama/graphkit/internal/events"
	"github.com/hanpama/graphkit/internal/reqid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Setup builds a console logger at level and subscribes it to the global bus,
// installing one if none is set. The returned func flushes and unsubscribes.
func Setup(level string) (*zap.Logger, func(), error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}

	bus := eventbus.Current()
	if bus == nil {
		bus = eventbus.New()
		eventbus.Use(bus)
	}
	unregister := Register(bus, logger)
	return logger, func() {
		unregister()
		_ = logger.Sync()
	}, nil
}

// Register subscribes logger to operation and HTTP events on bus.
func Register(bus *eventbus.Bus, logger *zap.Logger) (unregister func()) {
	offs := []func(){
		eventbus.On(bus, func(ctx context.Context, e events.OperationStart) {
			logger.Debug("operation start",
				requestID(ctx),
				zap.String("kind", e.Kind),
				zap.Strings("fields", e.Names),
				zap.String("endpoint", e.Endpoint),
				zap.String("document", e.Document),
			)
		}),
		eventbus.On(bus, func(ctx context.Context, e events.DispatchFinish) {
			if e.Err != nil {
				logger.Warn("dispatch failed", requestID(ctx), zap.String("field", e.Name), zap.Error(e.Err))
			}
		}),
		eventbus.On(bus, func(ctx context.Context, e events.OperationFinish) {
			fields := []zap.Field{
				requestID(ctx),
				zap.String("kind", e.Kind),
				zap.Strings("fields", e.Names),
				zap.Int("deliveries", e.Deliveries),
				zap.Int("server_errors", len(e.ServerErrors)),
				zap.Duration("duration", e.Duration),
			}
			if e.Err != nil {
				logger.Error("operation failed", append(fields, zap.Error(e.Err))...)
				return
			}
			logger.Info("operation finish", fields...)
		}),
		eventbus.On(bus, func(ctx context.Context, e events.HTTPClientFinish) {
			fields := []zap.Field{
				requestID(ctx),
				zap.String("method", e.Method),
				zap.String("url", e.URL),
				zap.Int("status", e.Status),
				zap.Int("bytes", e.Bytes),
				zap.Duration("duration", e.Duration),
			}
			if e.Err != nil {
				logger.Warn("http request failed", append(fields, zap.Error(e.Err))...)
				return
			}
			logger.Debug("http request", fields...)
		}),
		eventbus.On(bus, func(ctx context.Context, e events.HTTPFinish) {
			logger.Debug("http served",
				requestID(ctx),
				zap.String("method", e.Request.Method),
				zap.String("path", e.Request.URL.Path),
				zap.Int("status", e.Status),
				zap.Duration("duration", e.Duration),
			)
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func requestID(ctx context.Context) zap.Field {
	id, ok := reqid.FromContext(ctx)
	if !ok {
		return zap.Skip()
	}
	return zap.String("request_id", reqid.Format(id))
}
