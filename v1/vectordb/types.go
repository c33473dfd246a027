package vectordb

import (
	"fmt"
	"strings"
)

// Result columns appended by the engines.
const (
	// DistanceColumn holds the distance between the query vector and the row (smaller is closer).
	DistanceColumn = "_distance"

	// ScoreColumn holds the full-text relevance score (larger is better).
	ScoreColumn = "_score"

	// DefaultVectorColumn is the conventional name of the vector field.
	DefaultVectorColumn = "vector"
)

// ── Tables ───────────────────────────────────────────────────────────────────

// CreateMode controls how CreateTable treats an existing table.
type CreateMode string

const (
	// CreateModeCreate fails with ErrTableExists when the table already exists.
	CreateModeCreate CreateMode = "create"

	// CreateModeOverwrite drops the existing table (and its indexes) first.
	CreateModeOverwrite CreateMode = "overwrite"
)

// ParseCreateMode validates a mode string. An empty string means CreateModeCreate.
func ParseCreateMode(s string) (CreateMode, error) {
	switch CreateMode(s) {
	case "", CreateModeCreate:
		return CreateModeCreate, nil
	case CreateModeOverwrite:
		return CreateModeOverwrite, nil
	default:
		return "", fmt.Errorf("%w: invalid mode %q: expected %q or %q",
			ErrInvalidArgument, s, CreateModeCreate, CreateModeOverwrite)
	}
}

// TableInfo describes an existing table.
type TableInfo struct {
	// Name is the table name.
	Name string `json:"name"`

	// Schema is the ordered list of columns.
	Schema Schema `json:"schema"`

	// NumRows is the number of rows currently stored.
	NumRows int64 `json:"numRows"`
}

// CreateTableRequest describes a table to create.
// At least one of Schema or Data must be set; when Schema is nil it is inferred from Data.
type CreateTableRequest struct {
	Name   string
	Schema *Schema
	Data   []Row
	Mode   CreateMode
}

// ── Queries ──────────────────────────────────────────────────────────────────

// SearchRequest represents a single nearest-neighbor query.
type SearchRequest struct {
	// Table to search.
	Table string `json:"table"`

	// Vector is the query embedding.
	Vector []float32 `json:"vector"`

	// Limit caps the number of returned rows.
	Limit int `json:"limit"`

	// Where is an optional boolean filter expression (see ParseWhere).
	Where string `json:"where,omitempty"`

	// Columns restricts the returned fields. Empty means all columns.
	Columns []string `json:"columns,omitempty"`

	// VectorColumn selects the vector column. Empty picks "vector" or the only vector column.
	VectorColumn string `json:"vectorColumn,omitempty"`
}

// TextSearchRequest represents a full-text query.
type TextSearchRequest struct {
	Table   string   `json:"table"`
	Query   string   `json:"query"`
	Limit   int      `json:"limit"`
	Where   string   `json:"where,omitempty"`
	Columns []string `json:"columns,omitempty"`
}

// ── Indexes ──────────────────────────────────────────────────────────────────

// FullTextIndexOptions configures CreateFullTextIndex.
type FullTextIndexOptions struct {
	// FieldNames are the string fields to index. Required.
	FieldNames []string `json:"fieldNames"`

	// OrderingFieldNames are numeric fields used to break score ties.
	OrderingFieldNames []string `json:"orderingFieldNames,omitempty"`

	// Replace rebuilds an existing index instead of failing with ErrIndexExists.
	Replace bool `json:"replace"`

	// WriterHeapSize is the indexing memory budget in bytes.
	WriterHeapSize int64 `json:"writerHeapSize"`

	// UseTantivy selects the tantivy-compatible index flavour. Recorded for compatibility.
	UseTantivy bool `json:"useTantivy"`

	// TokenizerName selects the tokenizer. Empty means "default".
	TokenizerName string `json:"tokenizerName,omitempty"`

	// WithPosition stores token positions, enabling phrase queries.
	WithPosition bool `json:"withPosition"`
}

// IndexType enumerates the supported approximate nearest-neighbor index variants.
type IndexType string

const (
	IndexTypeIVFFlat   IndexType = "IVF_FLAT"
	IndexTypeIVFPQ     IndexType = "IVF_PQ"
	IndexTypeIVFHNSWSQ IndexType = "IVF_HNSW_SQ"
	IndexTypeIVFHNSWPQ IndexType = "IVF_HNSW_PQ"
)

// ParseIndexType validates an index type name.
func ParseIndexType(s string) (IndexType, error) {
	switch t := IndexType(strings.ToUpper(s)); t {
	case IndexTypeIVFFlat, IndexTypeIVFPQ, IndexTypeIVFHNSWSQ, IndexTypeIVFHNSWPQ:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unsupported index_type %q: expected one of IVF_FLAT, IVF_PQ, IVF_HNSW_SQ, IVF_HNSW_PQ",
			ErrInvalidArgument, s)
	}
}

// IsProductQuantized reports whether the index variant uses product quantization.
func (t IndexType) IsProductQuantized() bool {
	return t == IndexTypeIVFPQ || t == IndexTypeIVFHNSWPQ
}

// IsHNSW reports whether the index variant builds an HNSW graph.
func (t IndexType) IsHNSW() bool {
	return t == IndexTypeIVFHNSWSQ || t == IndexTypeIVFHNSWPQ
}

// Metric selects the distance function.
type Metric string

const (
	MetricL2     Metric = "l2"
	MetricCosine Metric = "cosine"
	MetricDot    Metric = "dot"
)

// ParseMetric validates a metric name case-insensitively. An empty string means MetricL2.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(strings.ToLower(s)); m {
	case "":
		return MetricL2, nil
	case MetricL2, MetricCosine, MetricDot:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unsupported metric %q: expected one of l2, cosine, dot", ErrInvalidArgument, s)
	}
}

// VectorIndexOptions configures CreateVectorIndex.
type VectorIndexOptions struct {
	// VectorColumn is the column to index. Empty picks "vector" or the only vector column.
	VectorColumn string `json:"vectorColumn,omitempty"`

	// Replace rebuilds an existing index instead of failing with ErrIndexExists.
	Replace bool `json:"replace"`

	// Metric is the distance function used by the index and by subsequent searches.
	Metric Metric `json:"metric"`

	// NumPartitions is the number of IVF partitions.
	NumPartitions int `json:"numPartitions"`

	// NumSubVectors is the number of PQ sub-vectors.
	NumSubVectors int `json:"numSubVectors"`

	// IndexType is the index variant.
	IndexType IndexType `json:"indexType"`

	// NumBits is the number of bits per PQ code.
	NumBits int `json:"numBits"`
}
