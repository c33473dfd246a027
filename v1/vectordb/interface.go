package vectordb

import "context"

// Service is the common interface for the embedded and remote vector database engines.
// It is the only contract the repository façade relies on, which allows the HTTP layer
// to run unchanged on top of SQLite, Qdrant or a mock in tests.
//
// Example usage:
//
//	func NewRepository(db vectordb.Service) *Repository {
//	    return &Repository{engine: db}
//	}
//
//	// Works with any implementation:
//	// - sqlite.NewEngine(ctx, cfg, snapshotter)
//	// - qdrant.NewAdapter(qdrantClient.Client())
//
//go:generate mockgen -source=interface.go -destination=mock_service.go -package=vectordb
type Service interface {
	// OpenTable probes a table and returns its metadata.
	// Returns an error wrapping ErrTableNotFound when the table does not exist,
	// so callers can branch on IsTableNotFound instead of treating every failure alike.
	OpenTable(ctx context.Context, name string) (*TableInfo, error)

	// CreateTable creates a table from an explicit schema, from seed data, or both.
	// With CreateModeCreate an existing table yields ErrTableExists; with
	// CreateModeOverwrite the existing table and its indexes are replaced.
	CreateTable(ctx context.Context, req CreateTableRequest) (*TableInfo, error)

	// Add appends rows to an existing table.
	Add(ctx context.Context, table string, rows []Row) error

	// Search performs nearest-neighbor search and returns rows ordered by
	// ascending _distance.
	//
	// Example:
	//   rows, err := db.Search(ctx, SearchRequest{Table: "docs", Vector: vec, Limit: 10})
	Search(ctx context.Context, req SearchRequest) ([]Row, error)

	// SearchText performs full-text search and returns rows ordered by
	// descending _score. Requires a full-text index (ErrIndexMissing otherwise).
	SearchText(ctx context.Context, req TextSearchRequest) ([]Row, error)

	// CreateFullTextIndex builds a full-text index over one or more string fields.
	CreateFullTextIndex(ctx context.Context, table string, opts FullTextIndexOptions) error

	// CreateVectorIndex builds an approximate nearest-neighbor index over a vector column.
	CreateVectorIndex(ctx context.Context, table string, opts VectorIndexOptions) error

	// Scan returns every row of the table in insertion order.
	Scan(ctx context.Context, table string) ([]Row, error)

	// ListTables returns the names of all tables.
	ListTables(ctx context.Context) ([]string, error)

	// Ping checks that the engine is reachable.
	Ping(ctx context.Context) error

	// Close releases the engine handle.
	Close() error
}
