package vectordb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferSchema(t *testing.T) {
	rows := []Row{
		NewRow(Pair{"id", 1}, Pair{"text", "hello"}, Pair{"vector", []any{0.1, 0.2}}, Pair{"score", 1}, Pair{"empty", nil}),
		NewRow(Pair{"id", 2}, Pair{"text", "world"}, Pair{"vector", []any{int64(1), 0.5}}, Pair{"score", 2.5}, Pair{"flag", true}),
		NewRow(Pair{"meta", map[string]any{"a": "b"}}, Pair{"tags", []any{"x"}}),
	}

	schema, err := InferSchema(rows)
	require.NoError(t, err)

	assert.Equal(t, []Field{
		{Name: "id", Type: FieldTypeInt64},
		{Name: "text", Type: FieldTypeString},
		{Name: "vector", Type: FieldTypeVector, Dim: 2},
		{Name: "score", Type: FieldTypeFloat64},
		{Name: "empty", Type: FieldTypeString},
		{Name: "flag", Type: FieldTypeBool},
		{Name: "meta", Type: FieldTypeJSON},
		{Name: "tags", Type: FieldTypeJSON},
	}, schema.Fields)
}

func TestInferSchema_DemotesInconsistentVectors(t *testing.T) {
	rows := []Row{
		NewRow(Pair{"vector", []float32{1, 2}}),
		NewRow(Pair{"vector", []float32{1, 2, 3}}),
		NewRow(Pair{"vector", []float32{1, 2}}),
	}
	schema, err := InferSchema(rows)
	require.NoError(t, err)
	assert.Equal(t, []Field{{Name: "vector", Type: FieldTypeJSON}}, schema.Fields)
}

func TestInferSchema_Empty(t *testing.T) {
	_, err := InferSchema(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestInferSchema_EmptyListIsJSON(t *testing.T) {
	schema, err := InferSchema([]Row{NewRow(Pair{"v", []any{}})})
	require.NoError(t, err)
	assert.Equal(t, FieldTypeJSON, schema.Fields[0].Type)
}

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  Schema
		wantErr string
	}{
		{"valid", Schema{Fields: []Field{{Name: "a", Type: FieldTypeString}, {Name: "v", Type: FieldTypeVector, Dim: 3}}}, ""},
		{"empty", Schema{}, "at least one field"},
		{"empty name", Schema{Fields: []Field{{Type: FieldTypeString}}}, "field name cannot be empty"},
		{"duplicate", Schema{Fields: []Field{{Name: "a", Type: FieldTypeString}, {Name: "a", Type: FieldTypeBool}}}, `duplicate field "a"`},
		{"vector without dim", Schema{Fields: []Field{{Name: "v", Type: FieldTypeVector}}}, "positive dimension"},
		{"unknown type", Schema{Fields: []Field{{Name: "a", Type: "blob"}}}, `unsupported type "blob"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseFieldType(t *testing.T) {
	for in, want := range map[string]FieldType{
		"string": FieldTypeString, "TEXT": FieldTypeString,
		"int": FieldTypeInt64, "float": FieldTypeFloat64,
		"boolean": FieldTypeBool, "vector": FieldTypeVector, "object": FieldTypeJSON,
	} {
		got, err := ParseFieldType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFieldType("blob")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCoerceValue(t *testing.T) {
	vec := Field{Name: "vector", Type: FieldTypeVector, Dim: 2}

	v, err := CoerceValue(vec, []any{int64(1), 0.5})
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0.5}, v)

	_, err = CoerceValue(vec, []any{0.1, 0.2, 0.3})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `field "vector" expects a vector of dimension 2, got 3`)

	_, err = CoerceValue(vec, "nope")
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	v, err = CoerceValue(Field{Name: "n", Type: FieldTypeInt64}, 3.0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = CoerceValue(Field{Name: "n", Type: FieldTypeInt64}, 3.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `field "n" expects int64, got float64`)

	v, err = CoerceValue(Field{Name: "f", Type: FieldTypeFloat64}, int64(2))
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	v, err = CoerceValue(Field{Name: "s", Type: FieldTypeString}, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = CoerceValue(Field{Name: "b", Type: FieldTypeBool}, "true")
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestConformRows(t *testing.T) {
	schema := Schema{Fields: []Field{
		{Name: "text", Type: FieldTypeString},
		{Name: "vector", Type: FieldTypeVector, Dim: 2},
	}}

	out, err := ConformRows(schema, []Row{
		NewRow(Pair{"vector", []any{int64(1), int64(0)}}, Pair{"text", "a"}),
		NewRow(Pair{"text", "b"}),
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	v, _ := out[0].Get("vector")
	assert.Equal(t, []float32{1, 0}, v)
	assert.False(t, out[1].Has("vector"))

	_, err = ConformRows(schema, []Row{NewRow(Pair{"text", "a"}), NewRow(Pair{"other", 1})})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
	assert.Contains(t, err.Error(), `row 1: `)
	assert.Contains(t, err.Error(), `field "other" not found in table schema`)
}
