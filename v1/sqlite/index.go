package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// ── Full-text index ──────────────────────────────────────────────────────────

// fts5Tokenizers maps tokenizer names to FTS5 tokenize options.
var fts5Tokenizers = map[string]string{
	"default":    "unicode61",
	"simple":     "unicode61",
	"en_stem":    "porter unicode61",
	"porter":     "porter unicode61",
	"raw":        "ascii",
	"whitespace": "ascii",
	"ngram":      "trigram",
	"trigram":    "trigram",
}

// CreateFullTextIndex builds an FTS5 index over the given string fields. Rows added
// later are indexed by an insert trigger.
func (e *Engine) CreateFullTextIndex(ctx context.Context, table string, opts vectordb.FullTextIndexOptions) error {
	start := time.Now()
	err := e.createFullTextIndex(ctx, table, opts)
	e.observeOperation("create_fts_index", table, strings.Join(opts.FieldNames, ","), time.Since(start), err, 0, map[string]interface{}{
		"tokenizer": opts.TokenizerName,
		"replace":   opts.Replace,
	})
	return err
}

func (e *Engine) createFullTextIndex(ctx context.Context, table string, opts vectordb.FullTextIndexOptions) error {
	if len(opts.FieldNames) == 0 {
		return fmt.Errorf("%w: at least one field name is required", vectordb.ErrInvalidArgument)
	}
	if opts.WriterHeapSize <= 0 {
		return fmt.Errorf("%w: writer_heap_size must be positive, got %d", vectordb.ErrInvalidArgument, opts.WriterHeapSize)
	}
	tokenizerName := strings.ToLower(opts.TokenizerName)
	if tokenizerName == "" {
		tokenizerName = "default"
	}
	tokenize, ok := fts5Tokenizers[tokenizerName]
	if !ok {
		return fmt.Errorf("%w: unsupported tokenizer %q", vectordb.ErrInvalidArgument, opts.TokenizerName)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	meta, err := loadMeta(ctx, e.db, table)
	if err != nil {
		return err
	}
	for _, name := range opts.FieldNames {
		f, ok := meta.Schema.Field(name)
		if !ok {
			return fmt.Errorf("%w: field '%s' not found in table '%s'", vectordb.ErrColumnNotFound, name, table)
		}
		if f.Type != vectordb.FieldTypeString {
			return fmt.Errorf("%w: field '%s' is not a string field", vectordb.ErrInvalidArgument, name)
		}
	}
	for _, name := range opts.OrderingFieldNames {
		f, ok := meta.Schema.Field(name)
		if !ok {
			return fmt.Errorf("%w: ordering field '%s' not found in table '%s'", vectordb.ErrColumnNotFound, name, table)
		}
		if f.Type != vectordb.FieldTypeInt64 && f.Type != vectordb.FieldTypeFloat64 {
			return fmt.Errorf("%w: ordering field '%s' is not numeric", vectordb.ErrInvalidArgument, name)
		}
	}
	if meta.FullText != nil && !opts.Replace {
		return fmt.Errorf("%w: a full-text index already exists on table '%s', set replace=true to rebuild it",
			vectordb.ErrIndexExists, table)
	}

	fts := quoteIdent(ftsTable(table))
	cols := make([]string, len(opts.FieldNames))
	newCols := make([]string, len(opts.FieldNames))
	for i, name := range opts.FieldNames {
		cols[i] = quoteIdent(name)
		newCols[i] = "new." + quoteIdent(name)
	}

	options := []string{
		"content=" + quoteString(table),
		"tokenize=" + quoteString(tokenize),
	}
	// Under the trigram tokenizer every query term is a phrase of trigrams, and
	// FTS5 only evaluates phrases with detail=full.
	if !opts.WithPosition && tokenize != "trigram" {
		options = append(options, "detail=column")
	}

	err = e.withTx(ctx, func(tx *sql.Tx) error {
		stmts := []string{
			"DROP TRIGGER IF EXISTS " + quoteIdent(ftsTrigger(table)),
			"DROP TABLE IF EXISTS " + fts,
			fmt.Sprintf("CREATE VIRTUAL TABLE %s USING fts5(%s, %s)", fts, strings.Join(cols, ", "), strings.Join(options, ", ")),
			fmt.Sprintf("CREATE TRIGGER %s AFTER INSERT ON %s BEGIN INSERT INTO %s(rowid, %s) VALUES (new.rowid, %s); END",
				quoteIdent(ftsTrigger(table)), quoteIdent(table), fts, strings.Join(cols, ", "), strings.Join(newCols, ", ")),
			fmt.Sprintf("INSERT INTO %s(%s) VALUES('rebuild')", fts, fts),
		}
		for _, stmt := range stmts {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to build full-text index on '%s': %w", table, err)
			}
		}

		meta.FullText = &fullTextMeta{
			Fields:         opts.FieldNames,
			OrderingFields: opts.OrderingFieldNames,
			Tokenizer:      tokenizerName,
			WithPosition:   opts.WithPosition,
			UseTantivy:     opts.UseTantivy,
			WriterHeapSize: opts.WriterHeapSize,
		}
		return saveMeta(ctx, tx, table, meta)
	})
	if err != nil {
		return err
	}

	e.logInfo(ctx, "Full-text index created", map[string]interface{}{
		"table":     table,
		"fields":    opts.FieldNames,
		"tokenizer": tokenizerName,
	})
	return e.persist(ctx)
}

// ── Vector index ─────────────────────────────────────────────────────────────

// CreateVectorIndex validates and records a vector index configuration. The
// configured metric is used by later searches on the column.
func (e *Engine) CreateVectorIndex(ctx context.Context, table string, opts vectordb.VectorIndexOptions) error {
	start := time.Now()
	err := e.createVectorIndex(ctx, table, opts)
	e.observeOperation("create_vector_index", table, opts.VectorColumn, time.Since(start), err, 0, map[string]interface{}{
		"index_type": string(opts.IndexType),
		"metric":     string(opts.Metric),
	})
	return err
}

func (e *Engine) createVectorIndex(ctx context.Context, table string, opts vectordb.VectorIndexOptions) error {
	metric, err := vectordb.ParseMetric(string(opts.Metric))
	if err != nil {
		return err
	}
	indexType, err := vectordb.ParseIndexType(string(opts.IndexType))
	if err != nil {
		return err
	}
	if opts.NumPartitions <= 0 {
		return fmt.Errorf("%w: num_partitions must be positive, got %d", vectordb.ErrInvalidArgument, opts.NumPartitions)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	meta, err := loadMeta(ctx, e.db, table)
	if err != nil {
		return err
	}
	vecField, err := vectordb.ResolveVectorColumn(meta.Schema, opts.VectorColumn)
	if err != nil {
		return err
	}

	if indexType.IsProductQuantized() {
		if opts.NumSubVectors <= 0 {
			return fmt.Errorf("%w: num_sub_vectors must be positive, got %d", vectordb.ErrInvalidArgument, opts.NumSubVectors)
		}
		if vecField.Dim%opts.NumSubVectors != 0 {
			return fmt.Errorf("%w: vector dimension %d is not divisible by num_sub_vectors %d",
				vectordb.ErrInvalidArgument, vecField.Dim, opts.NumSubVectors)
		}
		if opts.NumBits != 4 && opts.NumBits != 8 {
			return fmt.Errorf("%w: num_bits must be 4 or 8, got %d", vectordb.ErrInvalidArgument, opts.NumBits)
		}
	}

	if _, exists := meta.VectorIndexes[vecField.Name]; exists && !opts.Replace {
		return fmt.Errorf("%w: a vector index already exists on column '%s' of table '%s', set replace=true to rebuild it",
			vectordb.ErrIndexExists, vecField.Name, table)
	}

	n, err := countRows(ctx, e.db, table)
	if err != nil {
		return err
	}
	if n < int64(opts.NumPartitions) {
		return fmt.Errorf("%w: table '%s' has %d rows, at least num_partitions (%d) are required to train the index",
			vectordb.ErrInvalidArgument, table, n, opts.NumPartitions)
	}

	opts.VectorColumn = vecField.Name
	opts.Metric = metric
	opts.IndexType = indexType
	if meta.VectorIndexes == nil {
		meta.VectorIndexes = map[string]vectordb.VectorIndexOptions{}
	}
	meta.VectorIndexes[vecField.Name] = opts

	if err := saveMeta(ctx, e.db, table, meta); err != nil {
		return err
	}

	e.logInfo(ctx, "Vector index created", map[string]interface{}{
		"table":      table,
		"column":     vecField.Name,
		"index_type": string(indexType),
		"metric":     string(metric),
	})
	return e.persist(ctx)
}
