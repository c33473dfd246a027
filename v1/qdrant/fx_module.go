package qdrant

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// FXModule defines the Fx module for the Qdrant engine.
//
// The module:
//  1. Provides NewQdrantClientWithDI, which connects and health-checks the server.
//  2. Provides NewAdapterWithDI and exposes the adapter as vectordb.Service.
//  3. Invokes RegisterQdrantLifecycle to close the connection on shutdown.
//
// Usage:
//
//	app := fx.New(
//	    qdrant.FXModule,
//	    fx.Provide(func() *qdrant.Config { return qdrant.FromEndpoint("localhost") }),
//	)
//
// Dependencies required by this module:
// - A *qdrant.Config instance must be available in the dependency injection container.
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClientWithDI,
		NewAdapterWithDI,
		fx.Annotate(
			func(a *Adapter) vectordb.Service { return a },
			fx.As(new(vectordb.Service)),
		),
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams defines dependencies needed to construct the Qdrant client.
type QdrantParams struct {
	fx.In

	Config *Config
	Logger Logger `optional:"true"`
}

// NewQdrantClientWithDI connects to Qdrant with injected dependencies.
func NewQdrantClientWithDI(p QdrantParams) (*QdrantClient, error) {
	return NewQdrantClient(p.Config, p.Logger)
}

// AdapterParams defines dependencies needed to construct the Adapter.
type AdapterParams struct {
	fx.In

	Client   *QdrantClient
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewAdapterWithDI builds the vectordb.Service adapter over the connected client.
func NewAdapterWithDI(p AdapterParams) *Adapter {
	return NewAdapter(p.Client.Client()).
		WithConfig(p.Client.Config()).
		WithLogger(p.Logger).
		WithObserver(p.Observer)
}

// RegisterQdrantLifecycle closes the Qdrant connection when the application stops.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *QdrantClient) {
	var once sync.Once

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			var err error
			once.Do(func() {
				err = client.Close()
			})
			return err
		},
	})
}
