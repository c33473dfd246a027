package config

import (
	"github.com/Aleph-Alpha/vectordb-api/v1/api"
	"github.com/Aleph-Alpha/vectordb-api/v1/logger"
	"github.com/Aleph-Alpha/vectordb-api/v1/metrics"
	"github.com/Aleph-Alpha/vectordb-api/v1/tracer"
)

// Config is the complete service configuration, one section per package.
type Config struct {
	Storage StorageConfig
	HTTP    api.Config
	Logger  logger.Config
	Metrics metrics.Config
	Tracer  tracer.Config
}

// StorageConfig selects the engine and the storage account it uses.
type StorageConfig struct {
	// URI selects the engine and the location of the data:
	//   memory://               in-memory SQLite
	//   file:///data/db.sqlite  SQLite file (a bare path works too)
	//   s3://bucket/key         SQLite file snapshotted to an S3 / MinIO object
	//   qdrant://host:port      Qdrant over gRPC (qdrants:// for TLS)
	//
	// Environment variable VECTORDB_URI, legacy LanceDbContainerFolderURI.
	URI string `yaml:"uri" envconfig:"VECTORDB_URI"`

	// AccountName is the storage account name (S3 access key).
	// Environment variable STORAGE_ACCOUNT_NAME, legacy StorageAccountName.
	AccountName string `yaml:"account_name" envconfig:"STORAGE_ACCOUNT_NAME"`

	// AccountKey is the storage account key (S3 secret key, Qdrant API key).
	// Environment variable STORAGE_ACCOUNT_KEY, legacy StorageAccountKey.
	AccountKey string `yaml:"account_key" envconfig:"STORAGE_ACCOUNT_KEY"`

	// Endpoint is the S3 endpoint used by s3:// URIs, e.g. "minio:9000".
	Endpoint string `yaml:"endpoint" envconfig:"STORAGE_ENDPOINT"`

	// UseSSL selects https for the S3 endpoint.
	UseSSL bool `yaml:"use_ssl" envconfig:"STORAGE_USE_SSL" default:"true"`

	// Region of the bucket.
	Region string `yaml:"region" envconfig:"STORAGE_REGION"`

	// CreateBucket creates the bucket when it does not exist.
	CreateBucket bool `yaml:"create_bucket" envconfig:"STORAGE_CREATE_BUCKET"`

	// LocalPath is the local database file backing an s3:// URI.
	// Default: <tmp>/vectordb/<bucket>/<object base name>
	LocalPath string `yaml:"local_path" envconfig:"STORAGE_LOCAL_PATH"`
}

// legacyNames maps current variable names to the names used by earlier deployments.
var legacyNames = map[string]string{
	"VECTORDB_URI":         "LanceDbContainerFolderURI",
	"STORAGE_ACCOUNT_NAME": "StorageAccountName",
	"STORAGE_ACCOUNT_KEY":  "StorageAccountKey",
}

// envFiles are loaded before the environment is read, earlier files winning.
// Variables already set in the process environment are never overridden.
var envFiles = []string{".env.local", ".env"}
