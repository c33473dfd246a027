package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// Server serves the vector database routes over HTTP.
type Server struct {
	cfg     Config
	repo    Repository
	logger  Logger
	tracer  Tracer
	metrics RequestRecorder

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewServer creates a server for repo. Call Handler to mount it elsewhere or
// Start to listen on cfg.ListenAddress().
//
// Example:
//
//	srv := api.NewServer(cfg, repo).WithLogger(log).WithMetrics(m)
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Shutdown(ctx)
func NewServer(cfg Config, repo Repository) *Server {
	return &Server{cfg: cfg, repo: repo}
}

// WithLogger attaches a logger. Passing nil disables logging.
func (s *Server) WithLogger(logger Logger) *Server {
	s.logger = logger
	return s
}

// WithTracer attaches a tracer. Passing nil disables request spans.
func (s *Server) WithTracer(tracer Tracer) *Server {
	s.tracer = tracer
	return s
}

// WithMetrics attaches a recorder for request counts and latencies.
func (s *Server) WithMetrics(metrics RequestRecorder) *Server {
	s.metrics = metrics
	return s
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return s.middleware(s.routes())
}

// routes registers every endpoint under the configured prefix. Each path also
// gets a method-less fallback so that a wrong method is answered with a JSON 405.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	prefix := s.cfg.Prefix()
	seen := map[string]bool{}

	handle := func(method, path string, h handlerFunc) {
		full := prefix + path
		mux.HandleFunc(method+" "+full, s.wrap(h))
		if !seen[full] {
			seen[full] = true
			mux.HandleFunc(full, s.wrap(func(http.ResponseWriter, *http.Request) error {
				return &HTTPError{Status: http.StatusMethodNotAllowed, Detail: msgMethodNotAllowed}
			}))
		}
	}

	handle(http.MethodGet, "/healthz", s.handleHealth)
	handle(http.MethodGet, "/readyz", s.handleReady)
	handle(http.MethodPost, "/create_table", s.handleCreateTable)
	handle(http.MethodGet, "/{table}/items", s.handleGetItems)
	handle(http.MethodPost, "/{table}/items", s.handleInsertItem)
	handle(http.MethodPost, "/{table}/bulk_items", s.handleBulkInsert)
	handle(http.MethodPost, "/{table}/search", s.handleSearch)
	handle(http.MethodPost, "/{table}/search_text", s.handleSearchText)
	handle(http.MethodPost, "/{table}/create_fts_index", s.handleCreateFullTextIndex)
	handle(http.MethodPost, "/{table}/create_vector_index", s.handleCreateVectorIndex)

	notFound := s.wrap(func(http.ResponseWriter, *http.Request) error {
		return &HTTPError{Status: http.StatusNotFound, Detail: msgNotFound}
	})
	mux.HandleFunc("/", notFound)
	if prefix != "" {
		mux.HandleFunc(prefix+"/", notFound)
	}
	return mux
}

// handlerFunc is an endpoint that reports failures by returning them.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// wrap turns returned errors into {"detail": ...} responses and logs them.
// This is the only place request errors are logged.
func (s *Server) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		status := statusOf(err)
		fields := map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": status,
		}
		if table := r.PathValue("table"); table != "" {
			fields["table"] = table
		}
		if status >= http.StatusInternalServerError {
			s.logError(r.Context(), "request failed", err, fields)
		} else {
			s.logWarn(r.Context(), "request rejected", err, fields)
		}
		writeJSON(w, status, map[string]string{"detail": err.Error()})
	}
}

// writeJSON writes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"detail": fmt.Sprintf("failed to encode response: %v", err)})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// Start binds the listen address and serves in the background. Bind errors
// are returned immediately.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return errors.New("server already started")
	}

	addr := s.cfg.ListenAddress()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	s.logInfo(context.Background(), "Starting HTTP server", map[string]interface{}{
		"address": listener.Addr().String(),
		"prefix":  s.cfg.Prefix(),
	})

	srv := s.server
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logError(context.Background(), "HTTP server stopped unexpectedly", err, nil)
		}
	}()
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.logInfo(ctx, "Shutting down HTTP server", nil)
	return srv.Shutdown(ctx)
}

func (s *Server) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

func (s *Server) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

func (s *Server) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if s.logger != nil {
		s.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
