package qdrant

import (
	"context"
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// QdrantClient wraps the official Qdrant Go client and owns the gRPC connection.
// Table operations live on Adapter, which is built from Client().
type QdrantClient struct {
	api    *qdrant.Client
	cfg    *Config
	logger Logger
}

// NewQdrantClient constructs a new instance of QdrantClient and validates
// connectivity via a health check.
//
// The Qdrant Go SDK connects lazily, so this method performs an immediate
// health check to fail fast if the service is unreachable.
//
// Example:
//
//	client, err := qdrant.NewQdrantClient(qdrant.FromEndpoint("localhost"), log)
func NewQdrantClient(cfg *Config, logger Logger) (*QdrantClient, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.applyDefaults()

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:                   cfg.Endpoint,
		Port:                   cfg.Port,
		APIKey:                 cfg.ApiKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: !cfg.CheckCompatibility,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qdrant client: %w", err)
	}

	qc := &QdrantClient{api: client, cfg: cfg, logger: logger}

	if err := qc.healthCheck(context.Background()); err != nil {
		_ = client.Close()
		return nil, err
	}
	return qc, nil
}

// healthCheck verifies the availability of the Qdrant service, bounded by
// Config.Timeout.
func (c *QdrantClient) healthCheck(ctx context.Context) error {
	if c.api == nil {
		return fmt.Errorf("qdrant client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}

	if c.logger != nil {
		c.logger.InfoWithContext(ctx, "Connected to Qdrant", nil, map[string]interface{}{
			"endpoint": c.cfg.Endpoint,
			"port":     c.cfg.Port,
			"version":  resp.GetVersion(),
		})
	}
	return nil
}

// Client returns the underlying Qdrant SDK client.
func (c *QdrantClient) Client() *qdrant.Client {
	return c.api
}

// Config returns the effective configuration.
func (c *QdrantClient) Config() Config {
	return *c.cfg
}

// Close closes the gRPC connection.
func (c *QdrantClient) Close() error {
	if c.api == nil {
		return nil
	}
	if c.logger != nil {
		c.logger.InfoWithContext(context.Background(), "Closing Qdrant client", nil, nil)
	}
	return c.api.Close()
}
