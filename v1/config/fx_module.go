package config

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/api"
	"github.com/Aleph-Alpha/vectordb-api/v1/logger"
	"github.com/Aleph-Alpha/vectordb-api/v1/metrics"
	"github.com/Aleph-Alpha/vectordb-api/v1/tracer"
)

// FXModule provides each section of a loaded *Config to the packages that
// consume it, plus the engine Target derived from the storage section.
//
// The *Config itself is supplied by the caller, because the engine modules to
// install depend on it:
//
//	cfg, err := config.Load()
//	app := fx.New(fx.Supply(cfg), config.FXModule, ...)
var FXModule = fx.Module("config",
	fx.Provide(
		func(c *Config) StorageConfig { return c.Storage },
		func(c *Config) api.Config { return c.HTTP },
		func(c *Config) logger.Config { return c.Logger },
		func(c *Config) metrics.Config { return c.Metrics },
		func(c *Config) tracer.Config { return c.Tracer },
		func(s StorageConfig) (Target, error) { return s.Target() },
	),
)
