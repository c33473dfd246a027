package api

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/vectordb-api/v1/repository"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// Repository is the façade the handlers call. *repository.Repository implements it.
type Repository interface {
	Ping(ctx context.Context) error
	GetTable(ctx context.Context, name string) (*vectordb.TableInfo, error)
	CreateTable(ctx context.Context, name string, schema *vectordb.Schema, data []vectordb.Row, mode vectordb.CreateMode) error
	Insert(ctx context.Context, name string, rows []vectordb.Row) error
	BulkInsert(ctx context.Context, name string, rows []vectordb.Row) error
	Search(ctx context.Context, q repository.SearchQuery) ([]vectordb.Row, error)
	SearchText(ctx context.Context, q repository.TextSearchQuery) ([]vectordb.Row, error)
	CreateFullTextIndex(ctx context.Context, table string, opts vectordb.FullTextIndexOptions) error
	CreateVectorIndex(ctx context.Context, table string, opts vectordb.VectorIndexOptions) error
	GetAll(ctx context.Context, name string) ([]vectordb.Row, error)
}

var _ Repository = (*repository.Repository)(nil)

// Logger is the subset of logger.Logger used by the server.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Tracer is the subset of *tracer.Tracer used by the tracing middleware.
type Tracer interface {
	StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
	ExtractHTTP(ctx context.Context, header http.Header) context.Context
}

// RequestRecorder is the subset of metrics.MetricsCollector used for request metrics.
type RequestRecorder interface {
	IncrementRequests(route, method, status string)
	RecordRequestDuration(start time.Time, route, method string)
}
