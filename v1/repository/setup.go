package repository

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// Logger is the subset of logger.Logger used by the repository.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Tracer is the subset of *tracer.Tracer used by the repository.
type Tracer interface {
	StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

// Repository is the façade between the HTTP layer and the engine. It fills in
// defaults and instruments every call; the engine does the actual work.
type Repository struct {
	engine   vectordb.Service
	tracer   Tracer
	logger   Logger
	observer observability.Observer
}

// NewRepository wraps engine.
//
// Example:
//
//	engine, err := sqlite.NewEngine(ctx, sqlite.Config{InMemory: true}, nil)
//	repo := repository.NewRepository(engine).WithLogger(log)
func NewRepository(engine vectordb.Service) *Repository {
	return &Repository{engine: engine}
}

// WithTracer attaches a tracer. Passing nil disables spans.
func (r *Repository) WithTracer(tracer Tracer) *Repository {
	r.tracer = tracer
	return r
}

// WithLogger attaches a logger. Passing nil disables logging.
func (r *Repository) WithLogger(logger Logger) *Repository {
	r.logger = logger
	return r
}

// WithObserver attaches an observer for operation notifications.
func (r *Repository) WithObserver(observer observability.Observer) *Repository {
	r.observer = observer
	return r
}

// Ping checks that the engine is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.engine.Ping(ctx)
}

// call runs fn inside a span named repository.<operation>, then logs and
// reports the outcome. fn returns the number of rows it touched.
func (r *Repository) call(ctx context.Context, operation, table string, attrs map[string]interface{}, fn func(ctx context.Context) (int64, error)) error {
	start := time.Now()

	var span trace.Span = noop.Span{}
	if r.tracer != nil {
		ctx, span = r.tracer.StartSpan(ctx, "repository."+operation)
		r.tracer.SetAttributes(span, map[string]interface{}{"table": table})
		r.tracer.SetAttributes(span, attrs)
	}
	defer span.End()

	size, err := fn(ctx)
	duration := time.Since(start)

	if r.tracer != nil {
		r.tracer.RecordErrorOnSpan(span, err)
		r.tracer.SetAttributes(span, map[string]interface{}{"rows": size})
	}
	if r.logger != nil {
		fields := map[string]interface{}{
			"operation":   operation,
			"table":       table,
			"rows":        size,
			"duration_ms": duration.Milliseconds(),
		}
		for k, v := range attrs {
			fields[k] = v
		}
		r.logger.DebugWithContext(ctx, "repository call", err, fields)
	}
	r.observeOperation(operation, table, duration, err, size, attrs)
	return err
}
