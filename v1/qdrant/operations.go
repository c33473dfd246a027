package qdrant

import (
	"context"
	"fmt"
	"sort"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// ── Tables ───────────────────────────────────────────────────────────────────

// OpenTable returns the schema and point count of an existing table.
func (a *Adapter) OpenTable(ctx context.Context, name string) (*vectordb.TableInfo, error) {
	start := time.Now()
	info, err := a.openTable(ctx, name)
	a.observeOperation("open_table", name, "", time.Since(start), err, 0, nil)
	return info, err
}

func (a *Adapter) openTable(ctx context.Context, name string) (*vectordb.TableInfo, error) {
	exists, err := a.client.CollectionExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection '%s': %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", vectordb.ErrTableNotFound, name)
	}

	meta, err := a.loadMeta(ctx, name)
	if err != nil {
		return nil, err
	}
	n, err := a.countPoints(ctx, name)
	if err != nil {
		return nil, err
	}
	return &vectordb.TableInfo{Name: name, Schema: meta.Schema, NumRows: n}, nil
}

// CreateTable creates a collection from an explicit schema, seed data, or both.
//
// Every vector field becomes a named vector using the Euclid distance. With
// CreateModeOverwrite the existing collection is deleted first.
func (a *Adapter) CreateTable(ctx context.Context, req vectordb.CreateTableRequest) (*vectordb.TableInfo, error) {
	start := time.Now()
	info, err := a.createTable(ctx, req)
	a.observeOperation("create_table", req.Name, "", time.Since(start), err, int64(len(req.Data)), map[string]interface{}{
		"mode": string(req.Mode),
	})
	return info, err
}

func (a *Adapter) createTable(ctx context.Context, req vectordb.CreateTableRequest) (*vectordb.TableInfo, error) {
	if err := vectordb.ValidateTableName(req.Name); err != nil {
		return nil, err
	}
	mode, err := vectordb.ParseCreateMode(string(req.Mode))
	if err != nil {
		return nil, err
	}

	var schema vectordb.Schema
	if req.Schema != nil {
		schema = *req.Schema
		if err := schema.Validate(); err != nil {
			return nil, err
		}
	} else {
		if schema, err = vectordb.InferSchema(req.Data); err != nil {
			return nil, err
		}
	}

	rows, err := vectordb.ConformRows(schema, req.Data)
	if err != nil {
		return nil, err
	}

	exists, err := a.client.CollectionExists(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check collection '%s': %w", req.Name, err)
	}
	if exists {
		if mode == vectordb.CreateModeCreate {
			return nil, fmt.Errorf("%w: '%s'", vectordb.ErrTableExists, req.Name)
		}
		a.logWarn(ctx, "Overwriting existing table", nil, map[string]interface{}{"table": req.Name})
		if err := a.dropTable(ctx, req.Name); err != nil {
			return nil, err
		}
	}

	params := make(map[string]*qdrant.VectorParams)
	for _, f := range schema.VectorFields() {
		params[f.Name] = &qdrant.VectorParams{
			Size:     uint64(f.Dim),
			Distance: qdrant.Distance_Euclid,
		}
	}
	err = a.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: req.Name,
		VectorsConfig:  qdrant.NewVectorsConfigMap(params),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create collection '%s': %w", req.Name, err)
	}

	if err := a.saveMeta(ctx, req.Name, &tableMeta{Schema: schema}); err != nil {
		return nil, err
	}
	if err := a.upsertRows(ctx, req.Name, schema, rows); err != nil {
		return nil, err
	}

	a.logInfo(ctx, "Table created", map[string]interface{}{
		"table": req.Name,
		"mode":  string(mode),
		"rows":  len(rows),
	})
	return &vectordb.TableInfo{Name: req.Name, Schema: schema, NumRows: int64(len(rows))}, nil
}

func (a *Adapter) dropTable(ctx context.Context, name string) error {
	if err := a.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("failed to delete collection '%s': %w", name, err)
	}
	return a.deleteMeta(ctx, name)
}

// Add appends rows to an existing table.
func (a *Adapter) Add(ctx context.Context, table string, rows []vectordb.Row) error {
	start := time.Now()
	err := a.add(ctx, table, rows)
	a.observeOperation("add", table, "", time.Since(start), err, int64(len(rows)), nil)
	return err
}

func (a *Adapter) add(ctx context.Context, table string, rows []vectordb.Row) error {
	meta, err := a.loadMeta(ctx, table)
	if err != nil {
		return err
	}
	conformed, err := vectordb.ConformRows(meta.Schema, rows)
	if err != nil {
		return err
	}
	if len(conformed) == 0 {
		return nil
	}
	return a.upsertRows(ctx, table, meta.Schema, conformed)
}

// upsertRows writes rows in batches of Config.BatchSize with at most
// Config.UpsertConcurrency requests in flight.
func (a *Adapter) upsertRows(ctx context.Context, table string, schema vectordb.Schema, rows []vectordb.Row) error {
	if len(rows) == 0 {
		return nil
	}

	base := time.Now().UnixNano()
	points := make([]*qdrant.PointStruct, len(rows))
	for i, row := range rows {
		p, err := buildPoint(schema, row, base+int64(i))
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		points[i] = p
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.UpsertConcurrency)

	for start := 0; start < len(points); start += a.cfg.BatchSize {
		end := min(start+a.cfg.BatchSize, len(points))
		batch := points[start:end]

		g.Go(func() error {
			_, err := a.client.Upsert(gctx, &qdrant.UpsertPoints{
				CollectionName: table,
				Points:         batch,
				Wait:           qdrant.PtrOf(true),
			})
			if err != nil {
				return fmt.Errorf("batch upsert into '%s' failed at [%d:%d]: %w", table, start, end, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Scan returns every row of the table in insertion order.
func (a *Adapter) Scan(ctx context.Context, table string) ([]vectordb.Row, error) {
	start := time.Now()
	rows, err := a.scan(ctx, table)
	a.observeOperation("scan", table, "", time.Since(start), err, int64(len(rows)), nil)
	return rows, err
}

func (a *Adapter) scan(ctx context.Context, table string) ([]vectordb.Row, error) {
	meta, err := a.loadMeta(ctx, table)
	if err != nil {
		return nil, err
	}

	type seqRow struct {
		seq int64
		row vectordb.Row
	}
	var collected []seqRow

	err = a.scrollAll(ctx, table, nil, true, func(p *qdrant.RetrievedPoint) error {
		row, err := buildRow(meta.Schema.Fields, p.GetPayload(), p.GetVectors())
		if err != nil {
			return err
		}
		collected = append(collected, seqRow{seq: payloadSeq(p.GetPayload()), row: row})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan table '%s': %w", table, err)
	}

	sort.SliceStable(collected, func(i, j int) bool { return collected[i].seq < collected[j].seq })
	out := make([]vectordb.Row, len(collected))
	for i, c := range collected {
		out[i] = c.row
	}
	return out, nil
}

// ListTables returns the names of all tables, sorted.
func (a *Adapter) ListTables(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := a.listTableNames(ctx)
	a.observeOperation("list_tables", "", "", time.Since(start), err, int64(len(names)), nil)
	return names, err
}

func (a *Adapter) countPoints(ctx context.Context, table string) (int64, error) {
	n, err := a.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: table,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points of table '%s': %w", table, err)
	}
	return int64(n), nil
}
