package sqlite

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// whereRenderer translates a filter tree into a parameterised SQL condition over
// the columns of one table.
type whereRenderer struct {
	table  string
	schema vectordb.Schema
	args   []any
}

// renderWhere parses a where expression and renders it as SQL.
// An empty expression renders as "" with no arguments.
func renderWhere(where, table string, schema vectordb.Schema) (string, []any, error) {
	expr, err := vectordb.ParseWhere(where)
	if err != nil || expr == nil {
		return "", nil, err
	}
	r := &whereRenderer{table: table, schema: schema}
	sqlText, err := r.render(expr)
	if err != nil {
		return "", nil, err
	}
	return sqlText, r.args, nil
}

func (r *whereRenderer) render(expr vectordb.FilterExpr) (string, error) {
	switch e := expr.(type) {
	case *vectordb.Comparison:
		col, err := r.column(e.Field)
		if err != nil {
			return "", err
		}
		if e.Op == vectordb.OpLike {
			if _, ok := e.Value.(string); !ok {
				return "", fmt.Errorf("%w: LIKE requires a string pattern", vectordb.ErrInvalidFilter)
			}
		}
		r.args = append(r.args, bindValue(e.Value))
		return fmt.Sprintf("%s %s ?", col, e.Op), nil

	case *vectordb.InList:
		col, err := r.column(e.Field)
		if err != nil {
			return "", err
		}
		placeholders := make([]string, len(e.Values))
		for i, v := range e.Values {
			placeholders[i] = "?"
			r.args = append(r.args, bindValue(v))
		}
		op := "IN"
		if e.Negate {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", col, op, strings.Join(placeholders, ", ")), nil

	case *vectordb.NullCheck:
		col, err := r.column(e.Field)
		if err != nil {
			return "", err
		}
		if e.Negate {
			return col + " IS NOT NULL", nil
		}
		return col + " IS NULL", nil

	case *vectordb.And:
		return r.binary("AND", e.Left, e.Right)

	case *vectordb.Or:
		return r.binary("OR", e.Left, e.Right)

	case *vectordb.Not:
		inner, err := r.render(e.Expr)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil

	default:
		return "", fmt.Errorf("%w: unsupported expression %T", vectordb.ErrInvalidFilter, expr)
	}
}

func (r *whereRenderer) binary(op string, left, right vectordb.FilterExpr) (string, error) {
	l, err := r.render(left)
	if err != nil {
		return "", err
	}
	rt, err := r.render(right)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", l, op, rt), nil
}

// column resolves a field path to a SQL expression. Nested paths are only valid on
// json columns and are read with json_extract.
func (r *whereRenderer) column(path vectordb.FieldPath) (string, error) {
	field, ok := r.schema.Field(path.Column())
	if !ok {
		return "", fmt.Errorf("%w: column '%s' referenced in where is not in the table schema",
			vectordb.ErrColumnNotFound, path.Column())
	}
	col := quoteIdent(r.table) + "." + quoteIdent(field.Name)

	if field.Type == vectordb.FieldTypeVector {
		return "", fmt.Errorf("%w: vector column '%s' cannot be used in where", vectordb.ErrInvalidFilter, field.Name)
	}

	nested := path.Nested()
	if len(nested) == 0 {
		return col, nil
	}
	if field.Type != vectordb.FieldTypeJSON {
		return "", fmt.Errorf("%w: '%s' is not a json column, cannot select '%s'",
			vectordb.ErrInvalidFilter, field.Name, path)
	}

	var jsonPath strings.Builder
	jsonPath.WriteString("$")
	for _, seg := range nested {
		jsonPath.WriteString(`."`)
		jsonPath.WriteString(strings.ReplaceAll(seg, `"`, `\"`))
		jsonPath.WriteString(`"`)
	}
	return fmt.Sprintf("json_extract(%s, %s)", col, quoteString(jsonPath.String())), nil
}

// bindValue converts a literal for comparison with a column: bools become 0/1.
func bindValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return int64(1)
		}
		return int64(0)
	}
	return v
}
