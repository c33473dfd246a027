package minio

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
)

// FXModule is an fx module that provides the MinIO snapshot store.
// It provides *MinioClient and the Client interface, and runs the connection
// monitor for the lifetime of the application.
var FXModule = fx.Module("minio",
	fx.Provide(
		NewClientWithDI,
		fx.Annotate(
			func(m *MinioClient) Client { return m },
			fx.As(new(Client)),
		),
	),
	fx.Invoke(RegisterLifecycle),
)

// MinioParams groups the dependencies needed to create a MinIO client via dependency injection.
type MinioParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewClientWithDI creates a MinIO client with injected dependencies.
func NewClientWithDI(params MinioParams) (*MinioClient, error) {
	client, err := NewClient(params.Config)
	if err != nil {
		return nil, err
	}
	return client.WithLogger(params.Logger).WithObserver(params.Observer), nil
}

// MinioLifecycleParams groups the dependencies needed for MinIO lifecycle management.
type MinioLifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *MinioClient
}

// RegisterLifecycle starts the connection monitor on application start and stops
// it on application stop.
func RegisterLifecycle(params MinioLifecycleParams) {
	wg := &sync.WaitGroup{}
	monitorCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(1)
			go func() {
				defer wg.Done()
				params.Client.monitorConnection(monitorCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Client.logInfo(ctx, "Closing MinIO client", nil)
			params.Client.GracefulShutdown()
			cancel()
			wg.Wait()
			return nil
		},
	})
}
