package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// quoteIdent quotes an identifier for use in SQL text.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteString quotes a string literal for statements that cannot take parameters (DDL).
func quoteString(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}

// ftsTable is the FTS5 table backing the full-text index of a table.
func ftsTable(table string) string {
	return vectordb.ReservedPrefix + "_fts_" + table
}

// ftsTrigger keeps ftsTable in sync with inserts into table.
func ftsTrigger(table string) string {
	return vectordb.ReservedPrefix + "_fts_" + table + "_ai"
}

// columnType maps a field type to its SQLite column type.
func columnType(t vectordb.FieldType) string {
	switch t {
	case vectordb.FieldTypeInt64, vectordb.FieldTypeBool:
		return "INTEGER"
	case vectordb.FieldTypeFloat64:
		return "REAL"
	case vectordb.FieldTypeVector:
		return "BLOB"
	default:
		return "TEXT"
	}
}

// encodeValue converts a conformed row value into its stored representation.
func encodeValue(f vectordb.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case vectordb.FieldTypeBool:
		if b, _ := v.(bool); b {
			return int64(1), nil
		}
		return int64(0), nil
	case vectordb.FieldTypeVector:
		vec, _ := vectordb.AsVector(v)
		return encodeVector(vec), nil
	case vectordb.FieldTypeJSON:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		return string(raw), nil
	default:
		return v, nil
	}
}

// decodeValue converts a stored value back into the row representation of the field.
func decodeValue(f vectordb.Field, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Type {
	case vectordb.FieldTypeString:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		}
	case vectordb.FieldTypeInt64:
		switch n := v.(type) {
		case int64:
			return n, nil
		case float64:
			return int64(n), nil
		}
	case vectordb.FieldTypeFloat64:
		switch n := v.(type) {
		case float64:
			return n, nil
		case int64:
			return float64(n), nil
		}
	case vectordb.FieldTypeBool:
		if n, ok := v.(int64); ok {
			return n != 0, nil
		}
	case vectordb.FieldTypeVector:
		if b, ok := v.([]byte); ok {
			return decodeVector(b)
		}
	case vectordb.FieldTypeJSON:
		switch s := v.(type) {
		case string:
			return vectordb.DecodeValue([]byte(s))
		case []byte:
			return vectordb.DecodeValue(s)
		}
	}
	return nil, fmt.Errorf("field %q: unexpected stored value of type %T", f.Name, v)
}

// selectList renders the qualified column list of a projection.
func selectList(table string, fields []vectordb.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = quoteIdent(table) + "." + quoteIdent(f.Name)
	}
	return strings.Join(cols, ", ")
}

// collectRows reads every row of a result set whose leading columns are fields,
// optionally followed by one float64 extra column (distance or score).
// The result set is fully drained and closed before returning.
func collectRows(rows *sql.Rows, fields []vectordb.Field, extra string) ([]vectordb.Row, error) {
	defer rows.Close()

	width := len(fields)
	if extra != "" {
		width++
	}

	out := []vectordb.Row{}
	for rows.Next() {
		values := make([]any, width)
		ptrs := make([]any, width)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		pairs := make([]vectordb.Pair, 0, width)
		for i, f := range fields {
			v, err := decodeValue(f, values[i])
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, vectordb.Pair{Key: f.Name, Value: v})
		}
		if extra != "" {
			pairs = append(pairs, vectordb.Pair{Key: extra, Value: toFloat(values[len(fields)])})
		}
		out = append(out, vectordb.NewRow(pairs...))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func toFloat(v any) any {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	default:
		return v
	}
}

// logInfo logs an informational message using the configured logger if available.
func (e *Engine) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

// logWarn logs a warning message using the configured logger if available.
func (e *Engine) logWarn(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.WarnWithContext(ctx, msg, err, fields)
	}
}

// logError logs an error message using the configured logger if available.
// It is only used where the error cannot be returned to the caller.
func (e *Engine) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if e.logger != nil {
		e.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
