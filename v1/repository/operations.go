package repository

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// GetTable probes a table. It fails with an error wrapping
// vectordb.ErrTableNotFound when the table does not exist.
func (r *Repository) GetTable(ctx context.Context, name string) (*vectordb.TableInfo, error) {
	var info *vectordb.TableInfo
	err := r.call(ctx, "get_table", name, nil, func(ctx context.Context) (int64, error) {
		var err error
		info, err = r.engine.OpenTable(ctx, name)
		if err != nil {
			return 0, err
		}
		return info.NumRows, nil
	})
	return info, err
}

// CreateTable creates a table from schema, from data, or both. When schema is
// nil the schema is inferred from data.
func (r *Repository) CreateTable(ctx context.Context, name string, schema *vectordb.Schema, data []vectordb.Row, mode vectordb.CreateMode) error {
	attrs := map[string]interface{}{"mode": string(mode)}
	return r.call(ctx, "create_table", name, attrs, func(ctx context.Context) (int64, error) {
		m, err := vectordb.ParseCreateMode(string(mode))
		if err != nil {
			return 0, err
		}
		_, err = r.engine.CreateTable(ctx, vectordb.CreateTableRequest{
			Name:   name,
			Schema: schema,
			Data:   data,
			Mode:   m,
		})
		return int64(len(data)), err
	})
}

// Insert appends rows to an existing table.
func (r *Repository) Insert(ctx context.Context, name string, rows []vectordb.Row) error {
	return r.add(ctx, "insert", name, rows)
}

// BulkInsert appends rows to an existing table. It behaves exactly like Insert.
func (r *Repository) BulkInsert(ctx context.Context, name string, rows []vectordb.Row) error {
	return r.add(ctx, "bulk_insert", name, rows)
}

func (r *Repository) add(ctx context.Context, operation, name string, rows []vectordb.Row) error {
	return r.call(ctx, operation, name, nil, func(ctx context.Context) (int64, error) {
		return int64(len(rows)), r.engine.Add(ctx, name, rows)
	})
}

// Search returns the rows nearest to q.Vector ordered by ascending _distance.
func (r *Repository) Search(ctx context.Context, q SearchQuery) ([]vectordb.Row, error) {
	limit, err := resolveLimit(q.Limit)
	if err != nil {
		return nil, err
	}

	attrs := map[string]interface{}{"limit": limit, "dim": len(q.Vector)}
	if q.Where != "" {
		attrs["where"] = q.Where
	}

	var rows []vectordb.Row
	err = r.call(ctx, "search", q.Table, attrs, func(ctx context.Context) (int64, error) {
		var err error
		rows, err = r.engine.Search(ctx, vectordb.SearchRequest{
			Table:        q.Table,
			Vector:       q.Vector,
			Limit:        limit,
			Where:        q.Where,
			Columns:      q.Columns,
			VectorColumn: q.VectorColumn,
		})
		return int64(len(rows)), err
	})
	return rows, err
}

// SearchText returns the rows matching q.Query ordered by descending _score.
// The table needs a full-text index.
func (r *Repository) SearchText(ctx context.Context, q TextSearchQuery) ([]vectordb.Row, error) {
	limit, err := resolveLimit(q.Limit)
	if err != nil {
		return nil, err
	}

	attrs := map[string]interface{}{"limit": limit}
	if q.Where != "" {
		attrs["where"] = q.Where
	}

	var rows []vectordb.Row
	err = r.call(ctx, "search_text", q.Table, attrs, func(ctx context.Context) (int64, error) {
		var err error
		rows, err = r.engine.SearchText(ctx, vectordb.TextSearchRequest{
			Table:   q.Table,
			Query:   q.Query,
			Limit:   limit,
			Where:   q.Where,
			Columns: q.Columns,
		})
		return int64(len(rows)), err
	})
	return rows, err
}

// CreateFullTextIndex builds a full-text index over opts.FieldNames.
func (r *Repository) CreateFullTextIndex(ctx context.Context, table string, opts vectordb.FullTextIndexOptions) error {
	attrs := map[string]interface{}{
		"fields":  opts.FieldNames,
		"replace": opts.Replace,
	}
	return r.call(ctx, "create_fts_index", table, attrs, func(ctx context.Context) (int64, error) {
		return 0, r.engine.CreateFullTextIndex(ctx, table, opts)
	})
}

// CreateVectorIndex builds an approximate nearest-neighbor index. The metric
// is used by every later search on the column.
func (r *Repository) CreateVectorIndex(ctx context.Context, table string, opts vectordb.VectorIndexOptions) error {
	attrs := map[string]interface{}{
		"index_type": string(opts.IndexType),
		"metric":     string(opts.Metric),
		"replace":    opts.Replace,
	}
	return r.call(ctx, "create_vector_index", table, attrs, func(ctx context.Context) (int64, error) {
		return 0, r.engine.CreateVectorIndex(ctx, table, opts)
	})
}

// GetAll returns every row of the table in insertion order.
func (r *Repository) GetAll(ctx context.Context, name string) ([]vectordb.Row, error) {
	var rows []vectordb.Row
	err := r.call(ctx, "get_all", name, nil, func(ctx context.Context) (int64, error) {
		var err error
		rows, err = r.engine.Scan(ctx, name)
		return int64(len(rows)), err
	})
	return rows, err
}

// resolveLimit rejects non-positive limits. Callers apply DefaultLimit when
// the client leaves the limit out.
func resolveLimit(limit int) (int, error) {
	if limit <= 0 {
		return 0, fmt.Errorf("%w: limit must be positive, got %d", vectordb.ErrInvalidArgument, limit)
	}
	return limit, nil
}
