package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// ── Tables ───────────────────────────────────────────────────────────────────

// OpenTable returns the schema and row count of an existing table.
func (e *Engine) OpenTable(ctx context.Context, name string) (*vectordb.TableInfo, error) {
	start := time.Now()
	info, err := e.openTable(ctx, name)
	e.observeOperation("open_table", name, "", time.Since(start), err, 0, nil)
	return info, err
}

func (e *Engine) openTable(ctx context.Context, name string) (*vectordb.TableInfo, error) {
	meta, err := loadMeta(ctx, e.db, name)
	if err != nil {
		return nil, err
	}
	n, err := countRows(ctx, e.db, name)
	if err != nil {
		return nil, err
	}
	return &vectordb.TableInfo{Name: name, Schema: meta.Schema, NumRows: n}, nil
}

// CreateTable creates a table from an explicit schema, seed data, or both.
//
// The schema is inferred from the data when none is given. With CreateModeOverwrite
// an existing table is dropped together with its indexes.
func (e *Engine) CreateTable(ctx context.Context, req vectordb.CreateTableRequest) (*vectordb.TableInfo, error) {
	start := time.Now()
	info, err := e.createTable(ctx, req)
	e.observeOperation("create_table", req.Name, "", time.Since(start), err, int64(len(req.Data)), map[string]interface{}{
		"mode": string(req.Mode),
	})
	return info, err
}

func (e *Engine) createTable(ctx context.Context, req vectordb.CreateTableRequest) (*vectordb.TableInfo, error) {
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

	e.mu.Lock()
	defer e.mu.Unlock()

	err = e.withTx(ctx, func(tx *sql.Tx) error {
		_, err := loadMeta(ctx, tx, req.Name)
		switch {
		case err == nil && mode == vectordb.CreateModeCreate:
			return fmt.Errorf("%w: '%s'", vectordb.ErrTableExists, req.Name)
		case err == nil:
			if err := dropTable(ctx, tx, req.Name); err != nil {
				return err
			}
		case !vectordb.IsTableNotFound(err):
			return err
		}

		cols := make([]string, len(schema.Fields))
		for i, f := range schema.Fields {
			cols[i] = quoteIdent(f.Name) + " " + columnType(f.Type)
		}
		ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(req.Name), strings.Join(cols, ", "))
		if _, err := tx.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("failed to create table '%s': %w", req.Name, err)
		}
		if err := saveMeta(ctx, tx, req.Name, &tableMeta{Schema: schema}); err != nil {
			return err
		}
		return insertRows(ctx, tx, req.Name, schema, rows)
	})
	if err != nil {
		return nil, err
	}

	e.logInfo(ctx, "Table created", map[string]interface{}{
		"table": req.Name,
		"mode":  string(mode),
		"rows":  len(rows),
	})

	if err := e.persist(ctx); err != nil {
		return nil, err
	}
	return &vectordb.TableInfo{Name: req.Name, Schema: schema, NumRows: int64(len(rows))}, nil
}

// dropTable removes a table, its full-text index and its metadata.
func dropTable(ctx context.Context, tx *sql.Tx, name string) error {
	stmts := []string{
		"DROP TRIGGER IF EXISTS " + quoteIdent(ftsTrigger(name)),
		"DROP TABLE IF EXISTS " + quoteIdent(ftsTable(name)),
		"DROP TABLE IF EXISTS " + quoteIdent(name),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to drop table '%s': %w", name, err)
		}
	}
	if err := deleteMeta(ctx, tx, name); err != nil {
		return fmt.Errorf("failed to drop table '%s': %w", name, err)
	}
	return nil
}

// ── Rows ─────────────────────────────────────────────────────────────────────

// Add appends rows to an existing table. Fields missing from a row are stored as NULL.
func (e *Engine) Add(ctx context.Context, table string, rows []vectordb.Row) error {
	start := time.Now()
	err := e.add(ctx, table, rows)
	e.observeOperation("add", table, "", time.Since(start), err, int64(len(rows)), nil)
	return err
}

func (e *Engine) add(ctx context.Context, table string, rows []vectordb.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	meta, err := loadMeta(ctx, e.db, table)
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

	err = e.withTx(ctx, func(tx *sql.Tx) error {
		return insertRows(ctx, tx, table, meta.Schema, conformed)
	})
	if err != nil {
		return err
	}
	return e.persist(ctx)
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, schema vectordb.Schema, rows []vectordb.Row) error {
	if len(rows) == 0 {
		return nil
	}

	cols := make([]string, len(schema.Fields))
	marks := make([]string, len(schema.Fields))
	for i, f := range schema.Fields {
		cols[i] = quoteIdent(f.Name)
		marks[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(cols, ", "), strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare insert into '%s': %w", table, err)
	}
	defer stmt.Close()

	args := make([]any, len(schema.Fields))
	for n, row := range rows {
		for i, f := range schema.Fields {
			v, _ := row.Get(f.Name)
			if args[i], err = encodeValue(f, v); err != nil {
				return fmt.Errorf("row %d: %w", n, err)
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row %d into '%s': %w", n, table, err)
		}
	}
	return nil
}

// Scan returns every row of the table in insertion order.
func (e *Engine) Scan(ctx context.Context, table string) ([]vectordb.Row, error) {
	start := time.Now()
	rows, err := e.scan(ctx, table)
	e.observeOperation("scan", table, "", time.Since(start), err, int64(len(rows)), nil)
	return rows, err
}

func (e *Engine) scan(ctx context.Context, table string) ([]vectordb.Row, error) {
	meta, err := loadMeta(ctx, e.db, table)
	if err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid",
		selectList(table, meta.Schema.Fields), quoteIdent(table))

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan table '%s': %w", table, err)
	}
	out, err := collectRows(rows, meta.Schema.Fields, "")
	if err != nil {
		return nil, fmt.Errorf("failed to scan table '%s': %w", table, err)
	}
	return out, nil
}

// ListTables returns the table names in lexical order.
func (e *Engine) ListTables(ctx context.Context) ([]string, error) {
	start := time.Now()
	names, err := listTableNames(ctx, e.db)
	if err != nil {
		err = fmt.Errorf("failed to list tables: %w", err)
	}
	e.observeOperation("list_tables", "", "", time.Since(start), err, int64(len(names)), nil)
	return names, err
}

// withTx runs fn inside a transaction. fn must not use e.db: the single connection
// is held by the transaction until it ends.
func (e *Engine) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.logError(ctx, "Transaction rollback failed", rbErr, nil)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
