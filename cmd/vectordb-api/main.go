// Command vectordb-api serves the vector database HTTP API.
//
// The storage engine is chosen from VECTORDB_URI at startup; see package config
// for the accepted URIs and environment variables.
package main

import (
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/api"
	"github.com/Aleph-Alpha/vectordb-api/v1/config"
	"github.com/Aleph-Alpha/vectordb-api/v1/logger"
	"github.com/Aleph-Alpha/vectordb-api/v1/metrics"
	"github.com/Aleph-Alpha/vectordb-api/v1/minio"
	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/qdrant"
	"github.com/Aleph-Alpha/vectordb-api/v1/repository"
	"github.com/Aleph-Alpha/vectordb-api/v1/sqlite"
	"github.com/Aleph-Alpha/vectordb-api/v1/tracer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vectordb-api: %v\n", err)
		os.Exit(1)
	}
	target, err := cfg.Storage.Target()
	if err != nil {
		fmt.Fprintf(os.Stderr, "vectordb-api: %v\n", err)
		os.Exit(1)
	}

	fx.New(options(cfg, target)...).Run()
}

// options assembles the application graph for the selected engine.
func options(cfg *config.Config, target config.Target) []fx.Option {
	opts := []fx.Option{
		fx.Supply(cfg),
		config.FXModule,
		logger.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		loggerAdapters,
		fx.Provide(func(m *metrics.Metrics) observability.OperationRecorder { return m }),
		observability.FXModule,
	}

	switch target.Kind {
	case config.EngineQdrant:
		opts = append(opts,
			fx.Supply(target.Qdrant),
			qdrant.FXModule,
		)
	default:
		opts = append(opts, fx.Supply(target.SQLite))
		if target.Snapshot != nil {
			// minio is registered first so its stop hook runs after the
			// engine's final snapshot.
			opts = append(opts,
				fx.Supply(*target.Snapshot),
				minio.FXModule,
				fx.Provide(func(c *minio.MinioClient) sqlite.Snapshotter { return c }),
			)
		}
		opts = append(opts, sqlite.FXModule)
	}

	return append(opts,
		repository.FXModule,
		api.FXModule,
		fx.Invoke(func(log *logger.LoggerClient, c api.Config) {
			log.Info("vectordb-api configured", nil, map[string]interface{}{
				"storage": target.String(),
				"address": c.ListenAddress(),
				"prefix":  c.Prefix(),
			})
		}),
	)
}

// loggerAdapters exposes the shared zap client under each package's Logger interface.
var loggerAdapters = fx.Provide(
	func(l *logger.LoggerClient) tracer.Logger { return l },
	func(l *logger.LoggerClient) metrics.Logger { return l },
	func(l *logger.LoggerClient) observability.Logger { return l },
	func(l *logger.LoggerClient) sqlite.Logger { return l },
	func(l *logger.LoggerClient) minio.Logger { return l },
	func(l *logger.LoggerClient) qdrant.Logger { return l },
	func(l *logger.LoggerClient) repository.Logger { return l },
	func(l *logger.LoggerClient) api.Logger { return l },
)
