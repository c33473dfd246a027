package vectordb

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_PreservesKeyOrder(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":1,"alpha":"a","mid":[0.5,1]}`), &row))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, row.Keys())

	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":1,"alpha":"a","mid":[0.5,1]}`, string(out))
}

func TestRow_NumberDecoding(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"i":42,"f":1.25,"big":1e40,"neg":-7,"nested":{"n":3},"list":[1,"x",null]}`), &row))

	i, _ := row.Get("i")
	assert.Equal(t, int64(42), i)

	f, _ := row.Get("f")
	assert.Equal(t, 1.25, f)

	big, _ := row.Get("big")
	assert.Equal(t, 1e40, big)

	neg, _ := row.Get("neg")
	assert.Equal(t, int64(-7), neg)

	nested, _ := row.Get("nested")
	assert.Equal(t, map[string]any{"n": int64(3)}, nested)

	list, _ := row.Get("list")
	assert.Equal(t, []any{int64(1), "x", nil}, list)
}

func TestRow_ZeroValue(t *testing.T) {
	var row Row
	assert.Equal(t, 0, row.Len())
	assert.False(t, row.Has("x"))
	row.Delete("x")

	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))

	out, err = json.Marshal([]Row{{}, NewRow(Pair{"a", 1})})
	require.NoError(t, err)
	assert.Equal(t, `[{},{"a":1}]`, string(out))

	out, err = json.Marshal(map[string]any{"row": Row{}})
	require.NoError(t, err)
	assert.Equal(t, `{"row":{}}`, string(out))

	row.Set("x", 1)
	assert.Equal(t, 1, row.Len())
}

func TestRow_SetNormalizesAndKeepsPosition(t *testing.T) {
	row := NewRow(Pair{"a", 1}, Pair{"b", float32(0.5)}, Pair{"c", []float64{1, 2}})

	a, _ := row.Get("a")
	assert.Equal(t, int64(1), a)
	b, _ := row.Get("b")
	assert.Equal(t, 0.5, b)
	c, _ := row.Get("c")
	assert.Equal(t, []float32{1, 2}, c)

	row.Set("a", "again")
	assert.Equal(t, []string{"a", "b", "c"}, row.Keys())

	row.Delete("b")
	assert.Equal(t, []string{"a", "c"}, row.Keys())
}

func TestRow_VectorMarshalsAsNumbers(t *testing.T) {
	row := NewRow(Pair{"vector", []float32{0.5, 1, -2}})
	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"vector":[0.5,1,-2]}`, string(out))
}

func TestRow_CloneIsIndependent(t *testing.T) {
	row := NewRow(Pair{"a", 1})
	clone := row.Clone()
	clone.Set("b", 2)

	assert.Equal(t, 1, row.Len())
	assert.Equal(t, 2, clone.Len())
	assert.Equal(t, map[string]any{"a": int64(1), "b": int64(2)}, clone.ToMap())
}

func TestRow_RangeStopsEarly(t *testing.T) {
	row := NewRow(Pair{"a", 1}, Pair{"b", 2}, Pair{"c", 3})
	var seen []string
	row.Range(func(key string, _ any) bool {
		seen = append(seen, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRow_UnmarshalRejectsNonObject(t *testing.T) {
	var row Row
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &row))
}

func TestRow_SliceRoundTrip(t *testing.T) {
	var rows []Row
	require.NoError(t, json.Unmarshal([]byte(`[{"b":1,"a":2},{"c":true}]`), &rows))
	require.Len(t, rows, 2)

	out, err := json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, `[{"b":1,"a":2},{"c":true}]`, string(out))
}
