package qdrant

import (
	"context"
	"time"
)

const (
	defaultPort              = 6334
	defaultBatchSize         = 200 // points per upsert request
	defaultUpsertConcurrency = 4   // concurrent upsert requests per Add
	defaultScrollPageSize    = 256 // points per scroll page
)

// Config holds connection and behavior settings for the Qdrant client.
//
// It is intentionally minimal, readable, and easy to override from environment
// variables, YAML, or programmatically via helper methods.
//
// Example (programmatic):
//
//	cfg := qdrant.DefaultConfig()
//	cfg.Endpoint = "qdrant.internal"
//	cfg.ApiKey = os.Getenv("STORAGE_ACCOUNT_KEY")
//
// Example (builder style):
//
//	cfg := qdrant.FromEndpoint("localhost").
//	    WithPort(6334).
//	    WithApiKey(key).
//	    WithTLS(true)
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Endpoint string `yaml:"endpoint"`

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int `yaml:"port"`

	// Optional authentication token for secured deployments.
	ApiKey string `yaml:"api_key"`

	// UseTLS enables TLS on the gRPC connection (the qdrants:// scheme).
	UseTLS bool `yaml:"use_tls"`

	// Maximum duration of the startup health check.
	Timeout time.Duration `yaml:"timeout"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility"`

	// BatchSize is the number of points sent per upsert request.
	BatchSize int `yaml:"batch_size"`

	// UpsertConcurrency bounds the number of upsert requests in flight per insert.
	UpsertConcurrency int `yaml:"upsert_concurrency"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:           "localhost",
		Port:               defaultPort,
		Timeout:            5 * time.Second,
		CheckCompatibility: true,
		BatchSize:          defaultBatchSize,
		UpsertConcurrency:  defaultUpsertConcurrency,
	}
}

// FromEndpoint returns a default config pre-filled with a specific endpoint.
func FromEndpoint(host string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = host
	return cfg
}

// Builder-style helpers (optional, ergonomic)
func (c *Config) WithPort(port int) *Config {
	c.Port = port
	return c
}

func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

func (c *Config) WithTLS(enabled bool) *Config {
	c.UseTLS = enabled
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}

func (c *Config) WithBatchSize(n int) *Config {
	c.BatchSize = n
	return c
}

// applyDefaults fills zero values with their defaults.
func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.UpsertConcurrency <= 0 {
		c.UpsertConcurrency = defaultUpsertConcurrency
	}
}

// Logger is the subset of logger.Logger used by this package.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
