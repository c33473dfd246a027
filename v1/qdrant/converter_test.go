package qdrant

import (
	"testing"

	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

var rowSchema = vectordb.Schema{Fields: []vectordb.Field{
	{Name: "text", Type: vectordb.FieldTypeString},
	{Name: "n", Type: vectordb.FieldTypeInt64},
	{Name: "score", Type: vectordb.FieldTypeFloat64},
	{Name: "meta", Type: vectordb.FieldTypeJSON},
	{Name: "vector", Type: vectordb.FieldTypeVector, Dim: 2},
}}

func TestBuildPoint(t *testing.T) {
	row := vectordb.NewRow(
		vectordb.Pair{Key: "text", Value: "hello"},
		vectordb.Pair{Key: "n", Value: int64(3)},
		vectordb.Pair{Key: "meta", Value: map[string]any{"tags": []any{"a"}}},
		vectordb.Pair{Key: "vector", Value: []float32{0.5, 1}},
	)

	p, err := buildPoint(rowSchema, row, 42)
	require.NoError(t, err)

	assert.NotEmpty(t, p.GetId().GetUuid())
	assert.Equal(t, "hello", p.GetPayload()["text"].GetStringValue())
	assert.Equal(t, int64(3), p.GetPayload()["n"].GetIntegerValue())
	assert.Equal(t, int64(42), payloadSeq(p.GetPayload()))

	// missing scalar fields are explicit nulls, vectors never reach the payload
	require.Contains(t, p.GetPayload(), "score")
	assert.IsType(t, &qdrant.Value_NullValue{}, p.GetPayload()["score"].GetKind())
	assert.NotContains(t, p.GetPayload(), "vector")

	named := p.GetVectors().GetVectors().GetVectors()
	require.Contains(t, named, "vector")
}

func TestBuildPoint_MissingVectorIsOmitted(t *testing.T) {
	p, err := buildPoint(rowSchema, vectordb.NewRow(vectordb.Pair{Key: "text", Value: "x"}), 1)
	require.NoError(t, err)
	assert.Empty(t, p.GetVectors().GetVectors().GetVectors())
}

func TestBuildRow(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"text":  "hello",
		"n":     int64(3),
		"score": 2.5,
		"meta":  map[string]any{"k": "v"},
	})
	vectors := &qdrant.VectorsOutput{
		VectorsOptions: &qdrant.VectorsOutput_Vectors{
			Vectors: &qdrant.NamedVectorsOutput{
				Vectors: map[string]*qdrant.VectorOutput{
					"vector": {Data: []float32{0.5, 1}},
				},
			},
		},
	}

	row, err := buildRow(rowSchema.Fields, payload, vectors)
	require.NoError(t, err)

	assert.Equal(t, []string{"text", "n", "score", "meta", "vector"}, row.Keys())
	v, _ := row.Get("n")
	assert.Equal(t, int64(3), v)
	v, _ = row.Get("meta")
	assert.Equal(t, map[string]any{"k": "v"}, v)
	v, _ = row.Get("vector")
	assert.Equal(t, []float32{0.5, 1}, v)
}

func TestBuildRow_Projection(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{"text": "hello", "n": int64(1)})

	row, err := buildRow([]vectordb.Field{{Name: "n", Type: vectordb.FieldTypeInt64}}, payload, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, row.Keys())
}

func TestBuildRow_TypeMismatch(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{"n": "not a number"})

	_, err := buildRow([]vectordb.Field{{Name: "n", Type: vectordb.FieldTypeInt64}}, payload, nil)
	assert.ErrorIs(t, err, vectordb.ErrSchemaMismatch)
}

func TestExtractValue(t *testing.T) {
	payload := qdrant.NewValueMap(map[string]any{
		"list":   []any{"a", int64(1), true, nil},
		"nested": map[string]any{"x": 1.5},
	})

	assert.Equal(t, []any{"a", int64(1), true, nil}, extractValue(payload["list"]))
	assert.Equal(t, map[string]any{"x": 1.5}, extractValue(payload["nested"]))
	assert.Nil(t, extractValue(nil))
}

func TestDistanceFromScore(t *testing.T) {
	assert.InDelta(t, 4.0, distanceFromScore(vectordb.MetricL2, 2), 1e-9)
	assert.InDelta(t, 0.25, distanceFromScore(vectordb.MetricCosine, 0.75), 1e-9)
	assert.InDelta(t, -1.0, distanceFromScore(vectordb.MetricDot, 2), 1e-9)
}

func TestQueryTermsAndScore(t *testing.T) {
	terms := uniqueTerms(queryTerms("Hello, hello WORLD!"))
	assert.Equal(t, []string{"hello", "world"}, terms)

	payload := qdrant.NewValueMap(map[string]any{"title": "Hello there", "body": "the world"})
	assert.Equal(t, 2.0, termScore(payload, []string{"title", "body"}, terms))
	assert.Equal(t, 1.0, termScore(payload, []string{"title"}, terms))
}

func TestCompressionRatio(t *testing.T) {
	// 1536 dims, 96 sub-vectors, 8 bits: 32*1536/(96*8) = 64
	assert.Equal(t, qdrant.CompressionRatio_x64, compressionRatio(1536, 96, 8))
	// 128 dims, 16 sub-vectors, 8 bits: 32
	assert.Equal(t, qdrant.CompressionRatio_x32, compressionRatio(128, 16, 8))
	// 8 dims, 4 sub-vectors, 8 bits: 8
	assert.Equal(t, qdrant.CompressionRatio_x8, compressionRatio(8, 4, 8))
	assert.Equal(t, qdrant.CompressionRatio_x4, compressionRatio(4, 4, 8))
}

func TestQuantizationFor(t *testing.T) {
	pq := quantizationFor(vectordb.IndexTypeIVFPQ, 128, 16, 8)
	require.NotNil(t, pq.GetProduct())
	assert.Equal(t, qdrant.CompressionRatio_x32, pq.GetProduct().GetCompression())

	sq := quantizationFor(vectordb.IndexTypeIVFHNSWSQ, 128, 0, 0)
	require.NotNil(t, sq.GetScalar())
	assert.Equal(t, qdrant.QuantizationType_Int8, sq.GetScalar().GetType())

	flat := quantizationFor(vectordb.IndexTypeIVFFlat, 128, 0, 0)
	assert.NotNil(t, flat.GetDisabled())
}

func TestMetricDistance(t *testing.T) {
	assert.Equal(t, qdrant.Distance_Euclid, metricDistance(vectordb.MetricL2))
	assert.Equal(t, qdrant.Distance_Cosine, metricDistance(vectordb.MetricCosine))
	assert.Equal(t, qdrant.Distance_Dot, metricDistance(vectordb.MetricDot))
}

func TestConfigDefaults(t *testing.T) {
	cfg := &Config{Endpoint: "qdrant"}
	cfg.applyDefaults()

	assert.Equal(t, defaultPort, cfg.Port)
	assert.Equal(t, defaultBatchSize, cfg.BatchSize)
	assert.Equal(t, defaultUpsertConcurrency, cfg.UpsertConcurrency)

	built := FromEndpoint("remote").WithPort(7000).WithApiKey("k").WithTLS(true).WithBatchSize(10)
	assert.Equal(t, "remote", built.Endpoint)
	assert.Equal(t, 7000, built.Port)
	assert.True(t, built.UseTLS)
	assert.Equal(t, 10, built.BatchSize)
}
