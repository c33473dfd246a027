package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/config"
)

func TestOptions_GraphIsComplete(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		kind config.EngineKind
	}{
		{"memory", "memory://", config.EngineSQLite},
		{"file", "file:///tmp/vectordb-test.sqlite", config.EngineSQLite},
		{"s3 snapshot", "s3://bucket/db.sqlite", config.EngineSQLite},
		{"qdrant", "qdrant://localhost:6334", config.EngineQdrant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{Storage: config.StorageConfig{
				URI:         tt.uri,
				AccountName: "account",
				AccountKey:  "key",
				Endpoint:    "localhost:9000",
			}}
			target, err := cfg.Storage.Target()
			require.NoError(t, err)
			assert.Equal(t, tt.kind, target.Kind)

			opts := append(options(cfg, target), fx.NopLogger)
			assert.NoError(t, fx.ValidateApp(opts...))
		})
	}
}
