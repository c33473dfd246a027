package vectordb

import (
	"fmt"
	"strings"
)

// FieldType is the storage type of a column.
type FieldType string

const (
	FieldTypeString  FieldType = "string"
	FieldTypeInt64   FieldType = "int64"
	FieldTypeFloat64 FieldType = "float64"
	FieldTypeBool    FieldType = "bool"
	FieldTypeVector  FieldType = "vector"
	FieldTypeJSON    FieldType = "json"
)

// ParseFieldType accepts the canonical names plus a few common aliases
// ("str", "text", "int", "integer", "float", "double", "boolean", "list", "object").
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(s) {
	case "string", "str", "text", "utf8":
		return FieldTypeString, nil
	case "int64", "int", "integer", "int32":
		return FieldTypeInt64, nil
	case "float64", "float", "double", "float32", "number":
		return FieldTypeFloat64, nil
	case "bool", "boolean":
		return FieldTypeBool, nil
	case "vector", "fixed_size_list", "embedding":
		return FieldTypeVector, nil
	case "json", "object", "list", "struct":
		return FieldTypeJSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported field type %q", ErrInvalidArgument, s)
	}
}

// Field is a single column definition.
type Field struct {
	// Name is the column name.
	Name string `json:"name"`

	// Type is the storage type.
	Type FieldType `json:"type"`

	// Dim is the vector dimension; only meaningful for FieldTypeVector.
	Dim int `json:"dim,omitempty"`
}

// Schema is an ordered list of columns.
type Schema struct {
	Fields []Field `json:"fields"`
}

// Field looks up a column by name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// VectorFields returns the vector columns in schema order.
func (s Schema) VectorFields() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Type == FieldTypeVector {
			out = append(out, f)
		}
	}
	return out
}

// Names returns the column names in schema order.
func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Validate checks for empty or duplicate names and for vectors without a dimension.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: schema must contain at least one field", ErrInvalidArgument)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: field name cannot be empty", ErrInvalidArgument)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidArgument, f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Type {
		case FieldTypeString, FieldTypeInt64, FieldTypeFloat64, FieldTypeBool, FieldTypeJSON:
		case FieldTypeVector:
			if f.Dim <= 0 {
				return fmt.Errorf("%w: vector field %q must have a positive dimension", ErrInvalidArgument, f.Name)
			}
		default:
			return fmt.Errorf("%w: field %q has unsupported type %q", ErrInvalidArgument, f.Name, f.Type)
		}
	}
	return nil
}

// InferSchema derives a schema from seed rows.
//
// Fields appear in order of first appearance. The type of a field is taken from its
// first non-null value: strings, bools and integers map directly; an integer column
// that later sees a fractional number widens to float64; a non-empty list of numbers
// becomes a vector whose dimension is the list length; anything else is stored as json.
// A vector column whose rows disagree on length is demoted to json, and a column that
// only ever holds null is a string column.
func InferSchema(rows []Row) (Schema, error) {
	if len(rows) == 0 {
		return Schema{}, fmt.Errorf("%w: cannot infer a schema from empty data", ErrInvalidArgument)
	}

	type state struct {
		field   Field
		typed   bool
		demoted bool
	}
	var order []string
	states := make(map[string]*state)

	for _, row := range rows {
		row.Range(func(key string, value any) bool {
			st, ok := states[key]
			if !ok {
				st = &state{field: Field{Name: key, Type: FieldTypeString}}
				states[key] = st
				order = append(order, key)
			}
			if value == nil || st.demoted {
				return true
			}

			observed, dim := inferValueType(value)
			if !st.typed {
				st.field.Type = observed
				st.field.Dim = dim
				st.typed = true
				return true
			}

			switch {
			case st.field.Type == observed && observed != FieldTypeVector:
			case st.field.Type == FieldTypeVector && observed == FieldTypeVector && st.field.Dim == dim:
			case st.field.Type == FieldTypeInt64 && observed == FieldTypeFloat64:
				st.field.Type = FieldTypeFloat64
			case st.field.Type == FieldTypeFloat64 && observed == FieldTypeInt64:
			default:
				st.field.Type = FieldTypeJSON
				st.field.Dim = 0
				st.demoted = true
			}
			return true
		})
	}

	schema := Schema{Fields: make([]Field, 0, len(order))}
	for _, name := range order {
		schema.Fields = append(schema.Fields, states[name].field)
	}
	return schema, nil
}

func inferValueType(value any) (FieldType, int) {
	switch v := value.(type) {
	case string:
		return FieldTypeString, 0
	case bool:
		return FieldTypeBool, 0
	case int64:
		return FieldTypeInt64, 0
	case float64:
		return FieldTypeFloat64, 0
	case []float32:
		if len(v) > 0 {
			return FieldTypeVector, len(v)
		}
	case []any:
		if vec, ok := AsVector(v); ok && len(vec) > 0 {
			return FieldTypeVector, len(vec)
		}
	}
	return FieldTypeJSON, 0
}

// CoerceValue converts a row value into the Go representation of the column type,
// returning ErrSchemaMismatch when it does not fit. Nil is accepted for every type.
func CoerceValue(f Field, value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	switch f.Type {
	case FieldTypeString:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case FieldTypeInt64:
		switch v := value.(type) {
		case int64:
			return v, nil
		case float64:
			if v == float64(int64(v)) {
				return int64(v), nil
			}
		}
	case FieldTypeFloat64:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int64:
			return float64(v), nil
		}
	case FieldTypeBool:
		if b, ok := value.(bool); ok {
			return b, nil
		}
	case FieldTypeVector:
		vec, ok := AsVector(value)
		if !ok {
			break
		}
		if len(vec) != f.Dim {
			return nil, fmt.Errorf("%w: field %q expects a vector of dimension %d, got %d",
				ErrSchemaMismatch, f.Name, f.Dim, len(vec))
		}
		return vec, nil
	case FieldTypeJSON:
		return value, nil
	}
	return nil, fmt.Errorf("%w: field %q expects %s, got %s", ErrSchemaMismatch, f.Name, f.Type, describeValue(value))
}

func describeValue(value any) string {
	switch value.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case int64:
		return "int64"
	case float64:
		return "float64"
	case []float32, []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// ConformRows coerces every row to the schema. Unknown fields are rejected and
// missing fields are left out (stored as null by the engines).
func ConformRows(schema Schema, rows []Row) ([]Row, error) {
	out := make([]Row, len(rows))
	for i, row := range rows {
		conformed := NewRow()
		var err error
		row.Range(func(key string, value any) bool {
			f, ok := schema.Field(key)
			if !ok {
				err = fmt.Errorf("%w: field %q not found in table schema", ErrSchemaMismatch, key)
				return false
			}
			var v any
			if v, err = CoerceValue(f, value); err != nil {
				return false
			}
			conformed.Set(key, v)
			return true
		})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = conformed
	}
	return out, nil
}
