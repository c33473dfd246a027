package sqlite

import (
	"context"
	"time"
)

// Config defines the configuration of the embedded SQLite engine.
type Config struct {
	// Path is the database file. Empty (or InMemory) keeps the database in memory.
	Path string

	// InMemory forces an in-memory database even when Path is set.
	InMemory bool

	// BusyTimeout is how long a statement waits on a locked database file.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// SnapshotTimeout bounds restoring and persisting snapshots.
	// Default: 2 minutes
	SnapshotTimeout time.Duration
}

// Default values for configuration
const (
	DefaultBusyTimeout     = 5 * time.Second
	DefaultSnapshotTimeout = 2 * time.Minute
)

// inMemory reports whether the configuration selects an in-memory database.
func (c Config) inMemory() bool {
	return c.InMemory || c.Path == "" || c.Path == ":memory:"
}

// Logger is an interface that matches the std logger's context-aware methods.
type Logger interface {
	// InfoWithContext logs an informational message with trace context.
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// WarnWithContext logs a warning message with trace context.
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})

	// ErrorWithContext logs an error message with trace context.
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Snapshotter persists the database file outside of the local disk.
// The minio package provides an implementation backed by object storage.
type Snapshotter interface {
	// Restore downloads the latest snapshot to localPath.
	// It returns false without error when no snapshot exists yet.
	Restore(ctx context.Context, localPath string) (bool, error)

	// Persist uploads the file at localPath as the latest snapshot.
	Persist(ctx context.Context, localPath string) error
}
