package api

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/metrics"
	"github.com/Aleph-Alpha/vectordb-api/v1/repository"
	"github.com/Aleph-Alpha/vectordb-api/v1/tracer"
)

// FXModule provides the HTTP server and ties it to the application lifecycle.
//
// Dependencies required by this module:
// - An api.Config instance
// - A *repository.Repository
// - Logger, *tracer.Tracer and metrics.MetricsCollector are optional
var FXModule = fx.Module("api",
	fx.Provide(NewServerWithDI),
	fx.Invoke(RegisterServerLifecycle),
)

// ServerParams groups the dependencies of NewServerWithDI.
type ServerParams struct {
	fx.In

	Config     Config
	Repository *repository.Repository
	Logger     Logger                   `optional:"true"`
	Tracer     *tracer.Tracer           `optional:"true"`
	Metrics    metrics.MetricsCollector `optional:"true"`
}

// NewServerWithDI creates a Server with injected dependencies.
func NewServerWithDI(p ServerParams) *Server {
	srv := NewServer(p.Config, p.Repository).WithLogger(p.Logger)
	if p.Tracer != nil {
		srv.WithTracer(p.Tracer)
	}
	if p.Metrics != nil {
		srv.WithMetrics(p.Metrics)
	}
	return srv
}

// RegisterServerLifecycle starts listening on application start and drains
// in-flight requests on stop. The server is registered after the engine, so
// it stops first.
func RegisterServerLifecycle(lc fx.Lifecycle, srv *Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
