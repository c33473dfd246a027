// Package config loads the service configuration from the environment.
//
// Every section is a struct owned by the package that consumes it (api.Config,
// logger.Config, metrics.Config, tracer.Config) plus StorageConfig, which is
// parsed into an engine Target:
//
//	memory://                 in-memory SQLite
//	file:///data/db.sqlite    SQLite file (a bare path works too)
//	s3://bucket/key           SQLite file restored from and snapshotted to a bucket object
//	qdrant://host:6334        remote Qdrant (qdrants:// for TLS, account key as API key)
//
// Load reads .env.local and .env when present, processes each section with
// envconfig and falls back to the variable names of earlier deployments
// (LanceDbContainerFolderURI, StorageAccountName, StorageAccountKey) for the
// three required storage values. A missing required value fails with
// ErrMissingValue.
package config
