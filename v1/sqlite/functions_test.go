package sqlite

import (
	"database/sql/driver"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

func TestDistances(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}

	assert.InDelta(t, 2.0, squaredL2(a, b), 1e-9)
	assert.InDelta(t, 0.0, squaredL2(a, a), 1e-9)

	assert.InDelta(t, 1.0, cosineDistance(a, b), 1e-9)
	assert.InDelta(t, 0.0, cosineDistance(a, []float32{3, 0}), 1e-9)
	assert.InDelta(t, 2.0, cosineDistance(a, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 1.0, cosineDistance(a, []float32{0, 0}))

	assert.InDelta(t, 1.0, dotDistance(a, b), 1e-9)
	assert.InDelta(t, -1.0, dotDistance([]float32{1, 1}, []float32{1, 1}), 1e-9)
}

func TestDistanceFunction(t *testing.T) {
	assert.Equal(t, fnL2, distanceFunction(vectordb.MetricL2))
	assert.Equal(t, fnCosine, distanceFunction(vectordb.MetricCosine))
	assert.Equal(t, fnDot, distanceFunction(vectordb.MetricDot))
	assert.Equal(t, fnL2, distanceFunction(""))
}

func TestDistanceFunc_Arguments(t *testing.T) {
	fn := distanceFunc(fnL2, squaredL2)

	v, err := fn(nil, nil)
	require.Error(t, err)
	assert.Nil(t, v)

	v, err = fn(nil, []driver.Value{nil, encodeVector([]float32{1})})
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = fn(nil, []driver.Value{encodeVector([]float32{1}), encodeVector([]float32{1, 2})})
	assert.ErrorContains(t, err, "dimension mismatch")

	v, err = fn(nil, []driver.Value{encodeVector([]float32{1, 2}), encodeVector([]float32{1, 4})})
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestVectorEncoding(t *testing.T) {
	in := []float32{0, 1.5, -2, float32(math.Inf(1))}
	b := encodeVector(in)
	assert.Len(t, b, 16)

	out, err := decodeVector(b)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	assert.Nil(t, encodeVector(nil))

	_, err = decodeVector([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestMatchExpression(t *testing.T) {
	assert.Equal(t, `"quick" OR "brown" OR "fox"`, matchExpression("quick, brown fox!"))
	assert.Equal(t, `"NEAR" OR "x"`, matchExpression(`NEAR(x)`))
	assert.Equal(t, "", matchExpression(" -- "))
}

func TestDSN(t *testing.T) {
	assert.Equal(t, ":memory:", dsn(Config{}))
	assert.Equal(t, ":memory:", dsn(Config{Path: "/data/db.sqlite", InMemory: true}))

	got := dsn(Config{Path: "/data/db.sqlite", BusyTimeout: DefaultBusyTimeout})
	assert.Contains(t, got, "file:/data/db.sqlite?")
	assert.Contains(t, got, "busy_timeout%285000%29")
	assert.Contains(t, got, "journal_mode%28WAL%29")
}
