package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// Search returns the rows nearest to req.Vector ordered by ascending _distance.
// Scoring is exact; vector index settings only select the metric.
func (e *Engine) Search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.Row, error) {
	start := time.Now()
	rows, err := e.search(ctx, req)
	e.observeOperation("search", req.Table, req.VectorColumn, time.Since(start), err, int64(len(rows)), map[string]interface{}{
		"limit":    req.Limit,
		"filtered": req.Where != "",
	})
	return rows, err
}

func (e *Engine) search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.Row, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", vectordb.ErrInvalidArgument, req.Limit)
	}

	meta, err := loadMeta(ctx, e.db, req.Table)
	if err != nil {
		return nil, err
	}
	vecField, err := vectordb.ResolveVectorColumn(meta.Schema, req.VectorColumn)
	if err != nil {
		return nil, err
	}
	if len(req.Vector) != vecField.Dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d but column '%s' has dimension %d",
			vectordb.ErrInvalidArgument, len(req.Vector), vecField.Name, vecField.Dim)
	}
	fields, err := vectordb.ProjectColumns(meta.Schema, req.Columns)
	if err != nil {
		return nil, err
	}
	cond, condArgs, err := renderWhere(req.Where, req.Table, meta.Schema)
	if err != nil {
		return nil, err
	}

	col := quoteIdent(req.Table) + "." + quoteIdent(vecField.Name)
	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s", selectList(req.Table, fields))
	if len(fields) > 0 {
		sb.WriteString(",")
	}
	fmt.Fprintf(&sb, " %s(%s, ?) AS %s FROM %s WHERE %s IS NOT NULL",
		distanceFunction(meta.metric(vecField.Name)), col, vectordb.DistanceColumn, quoteIdent(req.Table), col)
	if cond != "" {
		fmt.Fprintf(&sb, " AND (%s)", cond)
	}
	fmt.Fprintf(&sb, " ORDER BY %s ASC, %s.rowid LIMIT ?", vectordb.DistanceColumn, quoteIdent(req.Table))

	args := make([]any, 0, len(condArgs)+2)
	args = append(args, encodeVector(req.Vector))
	args = append(args, condArgs...)
	args = append(args, req.Limit)

	rows, err := e.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("vector search on table '%s' failed: %w", req.Table, err)
	}
	out, err := collectRows(rows, fields, vectordb.DistanceColumn)
	if err != nil {
		return nil, fmt.Errorf("vector search on table '%s' failed: %w", req.Table, err)
	}
	return out, nil
}

// SearchText returns rows matching any term of req.Query ordered by descending _score.
func (e *Engine) SearchText(ctx context.Context, req vectordb.TextSearchRequest) ([]vectordb.Row, error) {
	start := time.Now()
	rows, err := e.searchText(ctx, req)
	e.observeOperation("search_text", req.Table, "", time.Since(start), err, int64(len(rows)), map[string]interface{}{
		"limit":    req.Limit,
		"filtered": req.Where != "",
	})
	return rows, err
}

func (e *Engine) searchText(ctx context.Context, req vectordb.TextSearchRequest) ([]vectordb.Row, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", vectordb.ErrInvalidArgument, req.Limit)
	}

	meta, err := loadMeta(ctx, e.db, req.Table)
	if err != nil {
		return nil, err
	}
	if meta.FullText == nil {
		return nil, fmt.Errorf("%w: no full-text index exists on table '%s', create one with /create_fts_index",
			vectordb.ErrIndexMissing, req.Table)
	}
	fields, err := vectordb.ProjectColumns(meta.Schema, req.Columns)
	if err != nil {
		return nil, err
	}
	cond, condArgs, err := renderWhere(req.Where, req.Table, meta.Schema)
	if err != nil {
		return nil, err
	}

	match := matchExpression(req.Query)
	if match == "" {
		return []vectordb.Row{}, nil
	}

	fts := quoteIdent(ftsTable(req.Table))
	table := quoteIdent(req.Table)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s", selectList(req.Table, fields))
	if len(fields) > 0 {
		sb.WriteString(",")
	}
	fmt.Fprintf(&sb, " -bm25(%s) AS %s FROM %s JOIN %s ON %s.rowid = %s.rowid WHERE %s MATCH ?",
		fts, vectordb.ScoreColumn, fts, table, table, fts, fts)
	if cond != "" {
		fmt.Fprintf(&sb, " AND (%s)", cond)
	}
	fmt.Fprintf(&sb, " ORDER BY %s DESC", vectordb.ScoreColumn)
	if len(meta.FullText.OrderingFields) > 0 {
		fmt.Fprintf(&sb, ", %s.%s DESC", table, quoteIdent(meta.FullText.OrderingFields[0]))
	}
	fmt.Fprintf(&sb, ", %s.rowid LIMIT ?", table)

	args := make([]any, 0, len(condArgs)+2)
	args = append(args, match)
	args = append(args, condArgs...)
	args = append(args, req.Limit)

	rows, err := e.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("full-text search on table '%s' failed: %w", req.Table, err)
	}
	out, err := collectRows(rows, fields, vectordb.ScoreColumn)
	if err != nil {
		return nil, fmt.Errorf("full-text search on table '%s' failed: %w", req.Table, err)
	}
	return out, nil
}

// matchExpression turns free text into an FTS5 query matching any of its words.
// Every word is quoted so FTS5 operators in user input are taken literally.
func matchExpression(query string) string {
	words := queryTerms(query)
	for i, w := range words {
		words[i] = `"` + strings.ReplaceAll(w, `"`, `""`) + `"`
	}
	return strings.Join(words, " OR ")
}

// queryTerms splits text into words of letters and digits.
func queryTerms(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
