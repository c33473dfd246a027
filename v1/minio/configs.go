package minio

import (
	"context"
	"time"
)

const (
	connectionHealthCheckInterval = 30 * time.Second
	connectionValidationTimeout   = 10 * time.Second

	// DefaultObjectKey is the snapshot object when none is configured.
	DefaultObjectKey = "vectordb.sqlite"

	// snapshotContentType is the media type of SQLite database files.
	snapshotContentType = "application/vnd.sqlite3"
)

// Config defines the top-level configuration for the snapshot store.
type Config struct {
	// Connection details for the MinIO / S3 server
	Connection ConnectionConfig

	// Snapshot selects where the database snapshot lives in the bucket
	Snapshot SnapshotConfig
}

// ConnectionConfig contains MinIO server connection details.
type ConnectionConfig struct {
	// Endpoint is the server address, e.g. "localhost:9000"
	Endpoint string `yaml:"endpoint" envconfig:"STORAGE_ENDPOINT"`

	// AccessKeyID is the access key (the storage account name)
	AccessKeyID string `yaml:"access_key_id" envconfig:"STORAGE_ACCOUNT_NAME"`

	// SecretAccessKey is the secret key (the storage account key)
	SecretAccessKey string `yaml:"secret_access_key" envconfig:"STORAGE_ACCOUNT_KEY"`

	// UseSSL selects https
	UseSSL bool `yaml:"use_ssl" envconfig:"STORAGE_USE_SSL" default:"true"`

	// BucketName is the bucket holding the snapshot
	BucketName string `yaml:"bucket_name"`

	// Region of the bucket, e.g. "us-east-1"
	Region string `yaml:"region" envconfig:"STORAGE_REGION"`

	// AccessBucketCreation creates the bucket when it does not exist
	AccessBucketCreation bool `yaml:"access_bucket_creation" envconfig:"STORAGE_CREATE_BUCKET"`
}

// SnapshotConfig locates the snapshot object.
type SnapshotConfig struct {
	// ObjectKey is the object name of the snapshot within the bucket
	ObjectKey string `yaml:"object_key"`
}

// Logger is an interface that matches the std logger's context-aware methods.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}
