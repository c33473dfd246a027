package observability

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedOp struct {
	component, operation string
	duration             time.Duration
	err                  error
}

type fakeRecorder struct {
	mu  sync.Mutex
	ops []recordedOp
}

func (f *fakeRecorder) RecordOperation(component, operation string, duration time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, recordedOp{component, operation, duration, err})
}

type fakeLogger struct {
	msgs   []string
	fields []map[string]interface{}
}

func (f *fakeLogger) DebugWithContext(_ context.Context, msg string, _ error, fields ...map[string]interface{}) {
	f.msgs = append(f.msgs, msg)
	f.fields = append(f.fields, fields...)
}

func TestMetricsObserver(t *testing.T) {
	rec := &fakeRecorder{}
	obs := NewMetricsObserver(rec)

	boom := errors.New("boom")
	obs.ObserveOperation(OperationContext{Component: "sqlite", Operation: "search", Duration: time.Second, Error: boom})

	require.Len(t, rec.ops, 1)
	assert.Equal(t, recordedOp{"sqlite", "search", time.Second, boom}, rec.ops[0])
}

func TestNilObserversDoNotPanic(t *testing.T) {
	var m *MetricsObserver
	m.ObserveOperation(OperationContext{})

	var l *LoggingObserver
	l.ObserveOperation(OperationContext{})

	Multi(nil, nil).ObserveOperation(OperationContext{})
}

func TestLoggingObserver(t *testing.T) {
	log := &fakeLogger{}
	obs := NewLoggingObserver(log)

	obs.ObserveOperation(OperationContext{
		Component: "minio",
		Operation: "persist",
		Resource:  "bucket",
		Size:      42,
		Metadata:  map[string]interface{}{"key": "db.sqlite"},
	})

	require.Len(t, log.msgs, 1)
	assert.Equal(t, "minio", log.fields[0]["component"])
	assert.Equal(t, int64(42), log.fields[0]["size"])
	assert.Equal(t, "db.sqlite", log.fields[0]["key"])
}

func TestMultiAndDI(t *testing.T) {
	rec := &fakeRecorder{}
	log := &fakeLogger{}

	var calls int
	obs := Multi(NewObserverWithDI(ObserverParams{Recorder: rec, Logger: log}), ObserverFunc(func(OperationContext) { calls++ }))
	obs.ObserveOperation(OperationContext{Component: "repository", Operation: "get_all"})

	assert.Len(t, rec.ops, 1)
	assert.Len(t, log.msgs, 1)
	assert.Equal(t, 1, calls)
}
