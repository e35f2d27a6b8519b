package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/hanpama/graphkit/internal/eventbus"
	"github.com/hanpama/graphkit/internal/events"
	"github.com/hanpama/graphkit/internal/reqid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRegister(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	bus := eventbus.New()
	unregister := Register(bus, zap.New(core))

	ctx := reqid.WithID(context.Background(), 255)
	eventbus.Emit(ctx, bus, events.OperationStart{Kind: "query", Names: []string{"user"}, Document: "query {user { id }}"})
	eventbus.Emit(ctx, bus, events.DispatchFinish{Name: "user", Deliveries: 1})
	eventbus.Emit(ctx, bus, events.OperationFinish{Kind: "query", Names: []string{"user"}, Deliveries: 1})

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "operation start", entries[0].Message)
	require.Equal(t, "ff", entries[0].ContextMap()["request_id"])
	require.Equal(t, "operation finish", entries[1].Message)
	require.Equal(t, zapcore.InfoLevel, entries[1].Level)
	require.Equal(t, int64(1), entries[1].ContextMap()["deliveries"])

	unregister()
	eventbus.Emit(ctx, bus, events.OperationStart{Kind: "query"})
	require.Equal(t, 2, logs.Len())
}

func TestRegister_Failures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	bus := eventbus.New()
	defer Register(bus, zap.New(core))()

	boom := errors.New("boom")
	eventbus.Emit(context.Background(), bus, events.HTTPClientFinish{Method: "POST", URL: "http://x", Err: boom})
	eventbus.Emit(context.Background(), bus, events.DispatchFinish{Name: "user", Err: boom})
	eventbus.Emit(context.Background(), bus, events.OperationFinish{Kind: "query", Err: boom})

	require.Equal(t, 1, logs.FilterMessage("http request failed").Len())
	require.Equal(t, 1, logs.FilterMessage("dispatch failed").Len())
	failed := logs.FilterMessage("operation failed").All()
	require.Len(t, failed, 1)
	require.Equal(t, zapcore.ErrorLevel, failed[0].Level)
	require.Equal(t, "boom", failed[0].ContextMap()["error"])
	_, hasID := failed[0].ContextMap()["request_id"]
	require.False(t, hasID)
}

func TestSetup(t *testing.T) {
	t.Cleanup(func() { eventbus.Use(nil) })
	_, _, err := Setup("loud")
	require.Error(t, err)

	logger, done, err := Setup("warn")
	require.NoError(t, err)
	require.NotNil(t, logger)
	require.NotNil(t, eventbus.Current())
	done()
}
