package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(tracing bool) (*LoggerClient, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return NewFromZap(zap.New(core), tracing), logs
}

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestLoggerFields(t *testing.T) {
	log, logs := newObservedLogger(false)

	log.Error("search failed", errors.New("boom"), map[string]interface{}{"table": "chunks"})

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "search failed", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "chunks", fields["table"])
}

func TestLoggerWithContextAddsTraceIDs(t *testing.T) {
	log, logs := newObservedLogger(true)

	log.InfoWithContext(spanContext(t), "request", nil)

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
}

func TestLoggerWithContextTracingDisabled(t *testing.T) {
	log, logs := newObservedLogger(false)

	log.WarnWithContext(spanContext(t), "request", nil)

	fields := logs.All()[0].ContextMap()
	assert.NotContains(t, fields, "trace_id")
}

func TestLoggerWithContextNoSpan(t *testing.T) {
	log, logs := newObservedLogger(true)

	log.DebugWithContext(context.Background(), "request", nil, map[string]interface{}{"a": 1})

	fields := logs.All()[0].ContextMap()
	assert.NotContains(t, fields, "trace_id")
	assert.EqualValues(t, 1, fields["a"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel(Debug))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(Info))
	assert.Equal(t, zapcore.WarnLevel, parseLevel(Warning))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel(Error))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestNewLoggerClient(t *testing.T) {
	log, err := NewLoggerClient(Config{Level: Debug, ServiceName: "vectordb-api"})
	require.NoError(t, err)
	require.NotNil(t, log.Zap)
	assert.True(t, log.Zap.Core().Enabled(zapcore.DebugLevel))

	var _ Logger = log
}
