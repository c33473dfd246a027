package vectordb

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// ReservedPrefix is reserved for engine-internal tables.
const ReservedPrefix = "_vectordb"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// ValidateTableName checks that a table name is non-empty, uses only letters, digits,
// underscores, hyphens and periods, and does not use the reserved prefix.
func ValidateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: table name cannot be empty", ErrInvalidArgument)
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("%w: invalid table name %q: only alphanumeric characters, underscores, hyphens and periods are allowed",
			ErrInvalidArgument, name)
	}
	if strings.HasPrefix(name, ReservedPrefix) {
		return fmt.Errorf("%w: invalid table name %q: the %q prefix is reserved", ErrInvalidArgument, name, ReservedPrefix)
	}
	return nil
}

// ── Value normalization ─────────────────────────────────────────────────────

// jsonNumber is satisfied by json.Number from both encoding/json and goccy/go-json.
type jsonNumber interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

// NormalizeValue converts a decoded or caller-provided value into the set of value
// types a Row may hold: nil, bool, int64, float64, string, []float32, []any and
// map[string]any. Integer types widen to int64, float32 to float64, and nested
// slices and maps are normalized recursively.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil, bool, int64, float64, string, []float32:
		return val
	case jsonNumber:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, err := val.Float64()
		if err != nil {
			return val.String()
		}
		return f
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		if val > math.MaxInt64 {
			return float64(val)
		}
		return int64(val)
	case float32:
		return float64(val)
	case []float64:
		out := make([]float32, len(val))
		for i, f := range val {
			out[i] = float32(f)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = NormalizeValue(item)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = item
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = NormalizeValue(item)
		}
		return out
	case Row:
		return val.ToMap()
	default:
		return val
	}
}

// AsVector converts a numeric list into a float32 vector.
// It accepts []float32, []float64 and []any whose elements are all int64 or float64.
func AsVector(v any) ([]float32, bool) {
	switch val := v.(type) {
	case []float32:
		return val, true
	case []float64:
		out := make([]float32, len(val))
		for i, f := range val {
			out[i] = float32(f)
		}
		return out, true
	case []any:
		out := make([]float32, len(val))
		for i, item := range val {
			switch n := item.(type) {
			case int64:
				out[i] = float32(n)
			case float64:
				out[i] = float32(n)
			default:
				return nil, false
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// ResolveVectorColumn picks the vector column for a search or index request.
// An explicit name must refer to a vector column; otherwise "vector" is preferred,
// then the single vector column of the schema.
func ResolveVectorColumn(schema Schema, requested string) (Field, error) {
	if requested != "" {
		f, ok := schema.Field(requested)
		if !ok {
			return Field{}, fmt.Errorf("%w: column %q not found", ErrColumnNotFound, requested)
		}
		if f.Type != FieldTypeVector {
			return Field{}, fmt.Errorf("%w: column %q is not a vector column", ErrInvalidArgument, requested)
		}
		return f, nil
	}

	if f, ok := schema.Field(DefaultVectorColumn); ok && f.Type == FieldTypeVector {
		return f, nil
	}

	vectors := schema.VectorFields()
	switch len(vectors) {
	case 0:
		return Field{}, fmt.Errorf("%w: no vector column found in table schema", ErrColumnNotFound)
	case 1:
		return vectors[0], nil
	default:
		names := make([]string, len(vectors))
		for i, f := range vectors {
			names[i] = f.Name
		}
		return Field{}, fmt.Errorf("%w: multiple vector columns found (%s), specify the vector column",
			ErrInvalidArgument, strings.Join(names, ", "))
	}
}

// ProjectColumns checks that every requested column exists in the schema.
// An empty request selects every column in schema order.
func ProjectColumns(schema Schema, columns []string) ([]Field, error) {
	if len(columns) == 0 {
		return schema.Fields, nil
	}
	out := make([]Field, 0, len(columns))
	for _, name := range columns {
		f, ok := schema.Field(name)
		if !ok {
			return nil, fmt.Errorf("%w: column %q not found", ErrColumnNotFound, name)
		}
		out = append(out, f)
	}
	return out, nil
}
