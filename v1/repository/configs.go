package repository

import "github.com/Aleph-Alpha/vectordb-api/v1/vectordb"

// Defaults applied when a request leaves an option unset.
const (
	DefaultLimit          = 10
	DefaultTableName      = "chunks"
	DefaultWriterHeapSize = 1024 * 1024 * 1024
	DefaultNumPartitions  = 256
	DefaultNumSubVectors  = 96
	DefaultNumBits        = 8
)

// SearchQuery describes a nearest-neighbor query.
type SearchQuery struct {
	Table   string
	Vector  []float32
	Where   string
	Columns []string

	// Limit caps the result size and must be positive. The API fills in
	// DefaultLimit when a request leaves it out.
	Limit int

	// VectorColumn selects the column to search. Empty picks the default vector column.
	VectorColumn string
}

// TextSearchQuery describes a full-text query.
type TextSearchQuery struct {
	Table   string
	Query   string
	Where   string
	Columns []string

	// Limit caps the result size and must be positive. The API fills in
	// DefaultLimit when a request leaves it out.
	Limit int
}

// DefaultFullTextIndexOptions returns the options used when a request sets
// nothing but the fields to index.
func DefaultFullTextIndexOptions(fieldNames ...string) vectordb.FullTextIndexOptions {
	return vectordb.FullTextIndexOptions{
		FieldNames:     fieldNames,
		Replace:        false,
		WriterHeapSize: DefaultWriterHeapSize,
		UseTantivy:     true,
		WithPosition:   true,
	}
}

// DefaultVectorIndexOptions returns the options used when a request sets none.
func DefaultVectorIndexOptions() vectordb.VectorIndexOptions {
	return vectordb.VectorIndexOptions{
		Replace:       true,
		Metric:        vectordb.MetricL2,
		NumPartitions: DefaultNumPartitions,
		NumSubVectors: DefaultNumSubVectors,
		IndexType:     vectordb.IndexTypeIVFPQ,
		NumBits:       DefaultNumBits,
	}
}
