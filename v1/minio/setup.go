package minio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
)

// MinioClient keeps database snapshots in a bucket. It wraps the standard MinIO
// client with connection monitoring and reconnection.
type MinioClient struct {
	// client is swapped atomically on reconnection so operations never race with it
	client atomic.Pointer[minio.Client]

	// cfg holds the configuration for this MinIO client instance
	cfg Config

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger

	// shutdownSignal is used to signal the connection monitor to stop
	shutdownSignal chan struct{}

	closeShutdownOnce sync.Once
}

var _ Client = (*MinioClient)(nil)

// NewClient creates and validates a new MinIO client.
// It validates the connection and ensures the configured bucket exists.
//
// Example:
//
//	client, err := minio.NewClient(config)
//	if err != nil {
//	    return fmt.Errorf("failed to initialize MinIO client: %w", err)
//	}
//
//	// Optionally attach logger and observer
//	client = client.
//	    WithLogger(myLogger).
//	    WithObserver(myObserver)
//
//	defer client.GracefulShutdown()
func NewClient(config Config) (*MinioClient, error) {
	if config.Connection.BucketName == "" {
		return nil, fmt.Errorf("%w: bucket name is empty", ErrInvalidConfig)
	}
	if config.Snapshot.ObjectKey == "" {
		config.Snapshot.ObjectKey = DefaultObjectKey
	}

	client, err := connectToMinio(config)
	if err != nil {
		return nil, err
	}

	minioClient := &MinioClient{
		cfg:            config,
		shutdownSignal: make(chan struct{}),
	}
	minioClient.client.Store(client)

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := minioClient.validateConnection(timeoutCtx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}
	if err := minioClient.ensureBucketExists(timeoutCtx); err != nil {
		return nil, err
	}

	return minioClient, nil
}

// connectToMinio creates a new standard MinIO client with static V4 credentials.
func connectToMinio(cfg Config) (*minio.Client, error) {
	if cfg.Connection.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio endpoint cannot be empty", ErrInvalidConfig)
	}

	client, err := minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// validateConnection checks that the bucket can be queried with the configured credentials.
// Bucket-scoped validation avoids requiring ListAllMyBuckets permissions.
func (m *MinioClient) validateConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, connectionValidationTimeout)
	defer cancel()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}
	_, err := c.BucketExists(ctx, m.cfg.Connection.BucketName)
	return err
}

// ensureBucketExists checks if the configured bucket exists and creates it when
// AccessBucketCreation is set.
func (m *MinioClient) ensureBucketExists(ctx context.Context) error {
	bucketName := m.cfg.Connection.BucketName

	ctx, cancel := context.WithTimeout(ctx, connectionValidationTimeout)
	defer cancel()

	c := m.client.Load()
	if c == nil {
		return ErrConnectionFailed
	}

	exists, err := c.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check if bucket exists, bucket: %v, err: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if !m.cfg.Connection.AccessBucketCreation {
		return fmt.Errorf("%w: '%s', please create it manually", ErrBucketNotFound, bucketName)
	}

	m.logInfo(ctx, "Bucket does not exist, creating it", map[string]interface{}{
		"bucket": bucketName,
		"region": m.cfg.Connection.Region,
	})
	if err := c.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: m.cfg.Connection.Region}); err != nil {
		return fmt.Errorf("failed to create bucket '%s': %w", bucketName, err)
	}
	m.logInfo(ctx, "Successfully created bucket", map[string]interface{}{"bucket": bucketName})
	return nil
}

// monitorConnection periodically validates the connection and replaces the client
// when validation fails. It returns on shutdown or when ctx is done.
func (m *MinioClient) monitorConnection(ctx context.Context) {
	ticker := time.NewTicker(connectionHealthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			err := m.validateConnection(ctx)
			if err == nil {
				continue
			}
			m.logWarn(ctx, "MinIO connection issue detected, attempting reconnection", err, map[string]interface{}{
				"endpoint": m.cfg.Connection.Endpoint,
			})
			if err := m.reconnect(ctx); err != nil {
				m.logError(ctx, "MinIO reconnection failed", err, map[string]interface{}{
					"endpoint":      m.cfg.Connection.Endpoint,
					"will_retry_in": connectionHealthCheckInterval.String(),
				})
				continue
			}
			m.logInfo(ctx, "Successfully reconnected to MinIO", map[string]interface{}{
				"endpoint": m.cfg.Connection.Endpoint,
				"bucket":   m.cfg.Connection.BucketName,
			})

		case <-m.shutdownSignal:
			return

		case <-ctx.Done():
			return
		}
	}
}

// reconnect builds a new client and swaps it in once it has been validated.
func (m *MinioClient) reconnect(ctx context.Context) error {
	newClient, err := connectToMinio(m.cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, connectionValidationTimeout)
	defer cancel()
	if _, err := newClient.BucketExists(ctx, m.cfg.Connection.BucketName); err != nil {
		return err
	}
	m.client.Store(newClient)
	return nil
}

// GracefulShutdown stops the connection monitor. It is safe to call more than once.
func (m *MinioClient) GracefulShutdown() {
	m.closeShutdownOnce.Do(func() {
		close(m.shutdownSignal)
	})
}

// WithObserver attaches an observer to the MinIO client for observability hooks.
// This method uses the builder pattern and returns the client for method chaining.
func (m *MinioClient) WithObserver(observer observability.Observer) *MinioClient {
	m.observer = observer
	return m
}

// WithLogger attaches a logger to the MinIO client for internal logging.
// This method uses the builder pattern and returns the client for method chaining.
func (m *MinioClient) WithLogger(logger Logger) *MinioClient {
	m.logger = logger
	return m
}

// logInfo logs an informational message using the configured logger if available.
func (m *MinioClient) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

// logWarn logs a warning message using the configured logger if available.
func (m *MinioClient) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

// logError logs an error message using the configured logger if available.
// This is only used for errors in background goroutines that can't be returned to the caller.
func (m *MinioClient) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if m.logger != nil {
		m.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
