package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// Engine is the embedded vector database engine. It stores every vectordb table in
// a SQLite table, computes distances with registered scalar functions and serves
// full-text queries from FTS5.
//
// Engine implements vectordb.Service.
type Engine struct {
	// db is limited to one connection; every result set is drained before the
	// next statement runs.
	db *sql.DB

	// cfg holds the configuration for this engine instance
	cfg Config

	// snapshotter persists the database file after mutations, nil when disabled
	snapshotter Snapshotter

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger

	// mu serialises mutations with the snapshot that follows them
	mu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

var _ vectordb.Service = (*Engine)(nil)

// NewEngine opens the database described by cfg.
//
// When a snapshotter is given and the database is file-backed, the latest snapshot
// is restored to cfg.Path before the file is opened.
//
// Example:
//
//	engine, err := sqlite.NewEngine(ctx, sqlite.Config{Path: "/data/vectordb.sqlite"}, nil)
//	if err != nil {
//	    return fmt.Errorf("failed to open engine: %w", err)
//	}
//	defer engine.Close()
func NewEngine(ctx context.Context, cfg Config, snapshotter Snapshotter) (*Engine, error) {
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}
	if cfg.SnapshotTimeout == 0 {
		cfg.SnapshotTimeout = DefaultSnapshotTimeout
	}

	if err := registerFunctions(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	if !cfg.inMemory() {
		e.snapshotter = snapshotter
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		if err := e.restore(ctx); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	e.db = db

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to sqlite database: %w", err)
	}
	if err := ensureMetaTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

// dsn builds the driver connection string.
func dsn(cfg Config) string {
	if cfg.inMemory() {
		return ":memory:"
	}
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	return "file:" + cfg.Path + "?" + q.Encode()
}

// WithObserver attaches an observer to the engine for observability hooks.
// This method uses the builder pattern and returns the engine for method chaining.
func (e *Engine) WithObserver(observer observability.Observer) *Engine {
	e.observer = observer
	return e
}

// WithLogger attaches a logger to the engine for internal logging.
// This method uses the builder pattern and returns the engine for method chaining.
func (e *Engine) WithLogger(logger Logger) *Engine {
	e.logger = logger
	return e
}

// Ping checks that the database answers queries.
func (e *Engine) Ping(ctx context.Context) error {
	var one int
	if err := e.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

// Close takes a final snapshot and closes the database. It is safe to call more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.SnapshotTimeout)
		defer cancel()

		e.mu.Lock()
		snapErr := e.persist(ctx)
		e.mu.Unlock()

		if err := e.db.Close(); err != nil {
			e.closeErr = fmt.Errorf("failed to close sqlite database: %w", err)
			return
		}
		e.closeErr = snapErr
	})
	return e.closeErr
}
