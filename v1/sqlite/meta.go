package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// metaTable stores one row per vectordb table: the schema and the index configurations.
const metaTable = vectordb.ReservedPrefix + "_tables"

// tableMeta is the JSON document stored in metaTable.
type tableMeta struct {
	Schema vectordb.Schema `json:"schema"`

	// VectorIndexes maps a vector column to its index configuration.
	VectorIndexes map[string]vectordb.VectorIndexOptions `json:"vectorIndexes,omitempty"`

	// FullText is the full-text index configuration, nil when none exists.
	FullText *fullTextMeta `json:"fullText,omitempty"`
}

type fullTextMeta struct {
	Fields         []string `json:"fields"`
	OrderingFields []string `json:"orderingFields,omitempty"`
	Tokenizer      string   `json:"tokenizer"`
	WithPosition   bool     `json:"withPosition"`
	UseTantivy     bool     `json:"useTantivy"`
	WriterHeapSize int64    `json:"writerHeapSize"`
}

// metric returns the metric configured for a vector column (L2 without an index).
func (m *tableMeta) metric(column string) vectordb.Metric {
	if idx, ok := m.VectorIndexes[column]; ok && idx.Metric != "" {
		return idx.Metric
	}
	return vectordb.MetricL2
}

// execer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ensureMetaTable(ctx context.Context, db execer) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s (name TEXT PRIMARY KEY, meta TEXT NOT NULL)`, quoteIdent(metaTable)))
	if err != nil {
		return fmt.Errorf("failed to create metadata table: %w", err)
	}
	return nil
}

// loadMeta returns the metadata of a table, or an error wrapping ErrTableNotFound.
func loadMeta(ctx context.Context, db execer, name string) (*tableMeta, error) {
	var raw string
	err := db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT meta FROM %s WHERE name = ?`, quoteIdent(metaTable)), name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: '%s'", vectordb.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata of table '%s': %w", name, err)
	}

	var meta tableMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("corrupt metadata for table '%s': %w", name, err)
	}
	return &meta, nil
}

func saveMeta(ctx context.Context, db execer, name string, meta *tableMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata of table '%s': %w", name, err)
	}
	_, err = db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (name, meta) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET meta = excluded.meta`, quoteIdent(metaTable)),
		name, string(raw))
	if err != nil {
		return fmt.Errorf("failed to save metadata of table '%s': %w", name, err)
	}
	return nil
}

func deleteMeta(ctx context.Context, db execer, name string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE name = ?`, quoteIdent(metaTable)), name)
	return err
}

func listTableNames(ctx context.Context, db execer) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, quoteIdent(metaTable)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func countRows(ctx context.Context, db execer, name string) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, quoteIdent(name))).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows of table '%s': %w", name, err)
	}
	return n, nil
}
