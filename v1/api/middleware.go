package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries the request ID; an incoming value is kept.
const RequestIDHeader = "X-Request-ID"

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (r *statusRecorder) WriteHeader(status int) {
	if !r.written {
		r.status = status
		r.written = true
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.status = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// middleware wraps next with, from the outside in: request ID, tracing span,
// metrics and access log, then panic recovery.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		ctx := r.Context()
		span := trace.SpanFromContext(ctx)
		if s.tracer != nil {
			ctx = s.tracer.ExtractHTTP(ctx, r.Header)
			ctx, span = s.tracer.StartSpan(ctx, r.Method+" "+r.URL.Path, trace.WithSpanKind(trace.SpanKindServer))
			defer span.End()
		}

		req := r.WithContext(ctx)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		s.recoverPanics(next).ServeHTTP(rec, req)

		// ServeMux stores the matched pattern on the request it was handed.
		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(rec.status)

		if s.tracer != nil {
			span.SetName(route)
			s.tracer.SetAttributes(span, map[string]interface{}{
				"http.method":      r.Method,
				"http.route":       route,
				"http.target":      r.URL.Path,
				"http.status_code": rec.status,
				"request_id":       requestID,
			})
			if rec.status >= http.StatusInternalServerError {
				s.tracer.RecordErrorOnSpan(span, fmt.Errorf("%s %s returned %d", r.Method, r.URL.Path, rec.status))
			}
		}
		if s.metrics != nil {
			s.metrics.IncrementRequests(route, r.Method, status)
			s.metrics.RecordRequestDuration(start, route, r.Method)
		}
		s.logInfo(ctx, "request completed", map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"route":       route,
			"status":      rec.status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  requestID,
		})
	})
}

// recoverPanics turns a handler panic into a 500 response.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			err := fmt.Errorf("panic: %v", rec)
			s.logError(r.Context(), "recovered from handler panic", err, map[string]interface{}{
				"method": r.Method,
				"path":   r.URL.Path,
				"stack":  string(debug.Stack()),
			})
			writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": err.Error()})
		}()
		next.ServeHTTP(w, r)
	})
}
