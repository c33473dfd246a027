package sqlite

import (
	"database/sql/driver"
	"fmt"
	"math"
	"sync"

	sqlite "modernc.org/sqlite"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// Distance functions available to every connection opened after registration.
// All of them follow "smaller is closer".
const (
	fnL2     = "vdb_l2"
	fnCosine = "vdb_cosine"
	fnDot    = "vdb_dot"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerFunctions registers the vector distance functions with the driver once per process.
func registerFunctions() error {
	registerOnce.Do(func() {
		for name, fn := range map[string]func(a, b []float32) float64{
			fnL2:     squaredL2,
			fnCosine: cosineDistance,
			fnDot:    dotDistance,
		} {
			if err := sqlite.RegisterDeterministicScalarFunction(name, 2, distanceFunc(name, fn)); err != nil {
				registerErr = fmt.Errorf("failed to register %s: %w", name, err)
				return
			}
		}
	})
	return registerErr
}

// distanceFunction returns the SQL function implementing a metric.
func distanceFunction(m vectordb.Metric) string {
	switch m {
	case vectordb.MetricCosine:
		return fnCosine
	case vectordb.MetricDot:
		return fnDot
	default:
		return fnL2
	}
}

func distanceFunc(name string, fn func(a, b []float32) float64) func(*sqlite.FunctionContext, []driver.Value) (driver.Value, error) {
	return func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%s: expected 2 arguments, got %d", name, len(args))
		}
		a, ok := args[0].([]byte)
		if !ok {
			return nil, nil
		}
		b, ok := args[1].([]byte)
		if !ok {
			return nil, nil
		}
		va, err := decodeVector(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		vb, err := decodeVector(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if len(va) != len(vb) {
			return nil, fmt.Errorf("%s: dimension mismatch %d vs %d", name, len(va), len(vb))
		}
		return fn(va, vb), nil
	}
}

// squaredL2 is the squared Euclidean distance.
func squaredL2(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return sum
}

// cosineDistance is 1 - cosine similarity. A zero vector has similarity 0.
func cosineDistance(a, b []float32) float64 {
	var dot, na2, nb2 float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na2)*math.Sqrt(nb2))
}

// dotDistance is 1 - dot product.
func dotDistance(a, b []float32) float64 {
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return 1 - dot
}
