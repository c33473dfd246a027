package sqlite

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// FXModule is an fx module that provides the embedded engine.
// It registers the Engine constructor and exposes it as vectordb.Service, and
// closes the engine (taking a final snapshot) on application stop.
var FXModule = fx.Module("sqlite",
	fx.Provide(
		NewEngineWithDI,
		fx.Annotate(
			func(e *Engine) vectordb.Service { return e },
			fx.As(new(vectordb.Service)),
		),
	),
	fx.Invoke(RegisterEngineLifecycle),
)

// EngineParams groups the dependencies needed to create an Engine via dependency injection.
type EngineParams struct {
	fx.In

	Config      Config
	Snapshotter Snapshotter            `optional:"true"`
	Logger      Logger                 `optional:"true"`
	Observer    observability.Observer `optional:"true"`
}

// NewEngineWithDI opens the engine with injected dependencies. The snapshot restore
// is bounded by Config.SnapshotTimeout.
func NewEngineWithDI(params EngineParams) (*Engine, error) {
	engine, err := NewEngine(context.Background(), params.Config, params.Snapshotter)
	if err != nil {
		return nil, err
	}
	return engine.WithLogger(params.Logger).WithObserver(params.Observer), nil
}

// EngineLifecycleParams groups the dependencies needed for Engine lifecycle management.
type EngineLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Engine    *Engine
}

// RegisterEngineLifecycle closes the engine when the application stops.
func RegisterEngineLifecycle(params EngineLifecycleParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return params.Engine.Close()
		},
	})
}
