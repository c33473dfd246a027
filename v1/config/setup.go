package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrMissingValue is returned when a required variable is absent.
var ErrMissingValue = errors.New("missing required configuration value")

// Load reads the configuration from the environment.
//
// .env.local and .env are loaded first when present. Every section is processed
// with its own envconfig keys, legacy variable names fill values the current
// names leave empty, and the storage section is validated.
func Load() (*Config, error) {
	if err := loadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	var cfg Config
	sections := []struct {
		name   string
		target any
	}{
		{"storage", &cfg.Storage},
		{"http", &cfg.HTTP},
		{"logger", &cfg.Logger},
		{"metrics", &cfg.Metrics},
		{"tracer", &cfg.Tracer},
	}
	for _, s := range sections {
		if err := envconfig.Process("", s.target); err != nil {
			return nil, fmt.Errorf("failed to read %s configuration: %w", s.name, err)
		}
	}

	applyLegacy("VECTORDB_URI", &cfg.Storage.URI)
	applyLegacy("STORAGE_ACCOUNT_NAME", &cfg.Storage.AccountName)
	applyLegacy("STORAGE_ACCOUNT_KEY", &cfg.Storage.AccountKey)

	if cfg.Logger.ServiceName == "" {
		cfg.Logger.ServiceName = cfg.Tracer.ServiceName
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = cfg.Tracer.ServiceName
	}

	if err := cfg.Storage.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the required storage values are present.
func (s StorageConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"VECTORDB_URI", s.URI},
		{"STORAGE_ACCOUNT_NAME", s.AccountName},
		{"STORAGE_ACCOUNT_KEY", s.AccountKey},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%w: %s (or %s) must be set", ErrMissingValue, r.name, legacyNames[r.name])
		}
	}
	return nil
}

// applyLegacy fills an empty value from the legacy variable of key.
func applyLegacy(key string, target *string) {
	if *target != "" {
		return
	}
	if v, ok := os.LookupEnv(legacyNames[key]); ok {
		*target = v
	}
}

func loadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}
