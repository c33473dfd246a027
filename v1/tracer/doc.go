// Package tracer provides OpenTelemetry tracing for the vector database API.
//
// NewClient builds an SDK tracer provider (optionally exporting over OTLP/HTTP),
// installs it globally with W3C trace context propagation and returns a *Tracer
// with helpers to start spans, attach attributes, record errors and move trace
// context across process boundaries.
//
// Usage:
//
//	ctx = t.ExtractHTTP(r.Context(), r.Header)
//	ctx, span := t.StartSpan(ctx, "POST /{table}/search")
//	defer span.End()
//
//	t.SetAttributes(span, map[string]interface{}{"table": "chunks"})
//	if err != nil {
//	    t.RecordErrorOnSpan(span, err)
//	}
//
// Configuration:
//
//	SERVICE_NAME=vectordb-api
//	APP_ENV=production
//	TRACER_ENABLE_EXPORT=true
//	OTEL_EXPORTER_OTLP_ENDPOINT=http://collector:4318
package tracer
