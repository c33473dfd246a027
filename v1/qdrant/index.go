package qdrant

import (
	"context"
	"fmt"
	"strings"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// ── Full-text index ──────────────────────────────────────────────────────────

// textTokenizers maps tokenizer names to Qdrant text index tokenizers.
var textTokenizers = map[string]qdrant.TokenizerType{
	"default":      qdrant.TokenizerType_Word,
	"simple":       qdrant.TokenizerType_Word,
	"en_stem":      qdrant.TokenizerType_Word,
	"porter":       qdrant.TokenizerType_Word,
	"raw":          qdrant.TokenizerType_Whitespace,
	"whitespace":   qdrant.TokenizerType_Whitespace,
	"ngram":        qdrant.TokenizerType_Prefix,
	"trigram":      qdrant.TokenizerType_Prefix,
	"multilingual": qdrant.TokenizerType_Multilingual,
}

// CreateFullTextIndex creates a payload text index on every field and a numeric
// index on every ordering field.
func (a *Adapter) CreateFullTextIndex(ctx context.Context, table string, opts vectordb.FullTextIndexOptions) error {
	start := time.Now()
	err := a.createFullTextIndex(ctx, table, opts)
	a.observeOperation("create_fts_index", table, strings.Join(opts.FieldNames, ","), time.Since(start), err, 0, map[string]interface{}{
		"tokenizer": opts.TokenizerName,
		"replace":   opts.Replace,
	})
	return err
}

func (a *Adapter) createFullTextIndex(ctx context.Context, table string, opts vectordb.FullTextIndexOptions) error {
	if len(opts.FieldNames) == 0 {
		return fmt.Errorf("%w: at least one field name is required", vectordb.ErrInvalidArgument)
	}
	if opts.WriterHeapSize <= 0 {
		return fmt.Errorf("%w: writer_heap_size must be positive, got %d", vectordb.ErrInvalidArgument, opts.WriterHeapSize)
	}
	tokenizerName := strings.ToLower(opts.TokenizerName)
	if tokenizerName == "" {
		tokenizerName = "default"
	}
	tokenizer, ok := textTokenizers[tokenizerName]
	if !ok {
		return fmt.Errorf("%w: unsupported tokenizer %q", vectordb.ErrInvalidArgument, opts.TokenizerName)
	}

	meta, err := a.loadMeta(ctx, table)
	if err != nil {
		return err
	}
	for _, name := range opts.FieldNames {
		f, ok := meta.Schema.Field(name)
		if !ok {
			return fmt.Errorf("%w: field '%s' not found in table '%s'", vectordb.ErrColumnNotFound, name, table)
		}
		if f.Type != vectordb.FieldTypeString {
			return fmt.Errorf("%w: field '%s' is not a string field", vectordb.ErrInvalidArgument, name)
		}
	}
	orderingTypes := make([]qdrant.FieldType, len(opts.OrderingFieldNames))
	for i, name := range opts.OrderingFieldNames {
		f, ok := meta.Schema.Field(name)
		if !ok {
			return fmt.Errorf("%w: ordering field '%s' not found in table '%s'", vectordb.ErrColumnNotFound, name, table)
		}
		switch f.Type {
		case vectordb.FieldTypeInt64:
			orderingTypes[i] = qdrant.FieldType_FieldTypeInteger
		case vectordb.FieldTypeFloat64:
			orderingTypes[i] = qdrant.FieldType_FieldTypeFloat
		default:
			return fmt.Errorf("%w: ordering field '%s' is not numeric", vectordb.ErrInvalidArgument, name)
		}
	}
	if meta.FullText != nil && !opts.Replace {
		return fmt.Errorf("%w: a full-text index already exists on table '%s', set replace=true to rebuild it",
			vectordb.ErrIndexExists, table)
	}

	for _, name := range opts.FieldNames {
		_, err := a.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: table,
			FieldName:      name,
			FieldType:      qdrant.FieldType_FieldTypeText.Enum(),
			FieldIndexParams: &qdrant.PayloadIndexParams{
				IndexParams: &qdrant.PayloadIndexParams_TextIndexParams{
					TextIndexParams: &qdrant.TextIndexParams{
						Tokenizer:      tokenizer,
						Lowercase:      qdrant.PtrOf(true),
						PhraseMatching: qdrant.PtrOf(opts.WithPosition),
					},
				},
			},
			Wait: qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("failed to build full-text index on '%s.%s': %w", table, name, err)
		}
	}
	for i, name := range opts.OrderingFieldNames {
		_, err := a.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: table,
			FieldName:      name,
			FieldType:      orderingTypes[i].Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("failed to index ordering field '%s.%s': %w", table, name, err)
		}
	}

	meta.FullText = &fullTextMeta{
		Fields:         opts.FieldNames,
		OrderingFields: opts.OrderingFieldNames,
		Tokenizer:      tokenizerName,
		WithPosition:   opts.WithPosition,
	}
	if err := a.saveMeta(ctx, table, meta); err != nil {
		return err
	}

	a.logInfo(ctx, "Full-text index created", map[string]interface{}{
		"table":     table,
		"fields":    opts.FieldNames,
		"tokenizer": tokenizerName,
	})
	return nil
}

// ── Vector index ─────────────────────────────────────────────────────────────

// hnswM and hnswEfConstruct are applied to the named vector of HNSW index variants.
const (
	hnswM           = 16
	hnswEfConstruct = 128
)

// CreateVectorIndex maps the index options onto the HNSW and quantization settings
// of the named vector. The collection distance is fixed at creation, so a metric
// other than the stored distance is rejected.
func (a *Adapter) CreateVectorIndex(ctx context.Context, table string, opts vectordb.VectorIndexOptions) error {
	start := time.Now()
	err := a.createVectorIndex(ctx, table, opts)
	a.observeOperation("create_vector_index", table, opts.VectorColumn, time.Since(start), err, 0, map[string]interface{}{
		"index_type": string(opts.IndexType),
		"metric":     string(opts.Metric),
	})
	return err
}

func (a *Adapter) createVectorIndex(ctx context.Context, table string, opts vectordb.VectorIndexOptions) error {
	metric, err := vectordb.ParseMetric(string(opts.Metric))
	if err != nil {
		return err
	}
	indexType, err := vectordb.ParseIndexType(string(opts.IndexType))
	if err != nil {
		return err
	}
	if opts.NumPartitions <= 0 {
		return fmt.Errorf("%w: num_partitions must be positive, got %d", vectordb.ErrInvalidArgument, opts.NumPartitions)
	}

	meta, err := a.loadMeta(ctx, table)
	if err != nil {
		return err
	}
	vecField, err := vectordb.ResolveVectorColumn(meta.Schema, opts.VectorColumn)
	if err != nil {
		return err
	}

	if indexType.IsProductQuantized() {
		if opts.NumSubVectors <= 0 {
			return fmt.Errorf("%w: num_sub_vectors must be positive, got %d", vectordb.ErrInvalidArgument, opts.NumSubVectors)
		}
		if vecField.Dim%opts.NumSubVectors != 0 {
			return fmt.Errorf("%w: vector dimension %d is not divisible by num_sub_vectors %d",
				vectordb.ErrInvalidArgument, vecField.Dim, opts.NumSubVectors)
		}
		if opts.NumBits != 4 && opts.NumBits != 8 {
			return fmt.Errorf("%w: num_bits must be 4 or 8, got %d", vectordb.ErrInvalidArgument, opts.NumBits)
		}
	}

	if _, exists := meta.VectorIndexes[vecField.Name]; exists && !opts.Replace {
		return fmt.Errorf("%w: a vector index already exists on column '%s' of table '%s', set replace=true to rebuild it",
			vectordb.ErrIndexExists, vecField.Name, table)
	}

	info, err := a.client.GetCollectionInfo(ctx, table)
	if err != nil {
		return fmt.Errorf("failed to get collection '%s': %w", table, err)
	}
	if distance := vectorDistance(info, vecField.Name); distance != metricDistance(metric) {
		return fmt.Errorf("%w: metric %q does not match the distance %s of vector '%s'",
			vectordb.ErrInvalidArgument, metric, distance, vecField.Name)
	}
	if n := derefUint64(info.PointsCount); n < uint64(opts.NumPartitions) {
		return fmt.Errorf("%w: table '%s' has %d rows, at least num_partitions (%d) are required to train the index",
			vectordb.ErrInvalidArgument, table, n, opts.NumPartitions)
	}

	diff := &qdrant.VectorParamsDiff{
		QuantizationConfig: quantizationFor(indexType, vecField.Dim, opts.NumSubVectors, opts.NumBits),
	}
	if indexType.IsHNSW() {
		diff.HnswConfig = &qdrant.HnswConfigDiff{
			M:           qdrant.PtrOf(uint64(hnswM)),
			EfConstruct: qdrant.PtrOf(uint64(hnswEfConstruct)),
		}
	}
	err = a.client.UpdateCollection(ctx, &qdrant.UpdateCollection{
		CollectionName: table,
		VectorsConfig: &qdrant.VectorsConfigDiff{
			Config: &qdrant.VectorsConfigDiff_ParamsMap{
				ParamsMap: &qdrant.VectorParamsDiffMap{
					Map: map[string]*qdrant.VectorParamsDiff{vecField.Name: diff},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update index settings of '%s.%s': %w", table, vecField.Name, err)
	}

	opts.VectorColumn = vecField.Name
	opts.Metric = metric
	opts.IndexType = indexType
	if meta.VectorIndexes == nil {
		meta.VectorIndexes = map[string]vectordb.VectorIndexOptions{}
	}
	meta.VectorIndexes[vecField.Name] = opts
	if err := a.saveMeta(ctx, table, meta); err != nil {
		return err
	}

	a.logInfo(ctx, "Vector index created", map[string]interface{}{
		"table":      table,
		"column":     vecField.Name,
		"index_type": string(indexType),
		"metric":     string(metric),
	})
	return nil
}

// quantizationFor returns the quantization settings of an index variant.
func quantizationFor(indexType vectordb.IndexType, dim, subVectors, bits int) *qdrant.QuantizationConfigDiff {
	switch {
	case indexType.IsProductQuantized():
		return &qdrant.QuantizationConfigDiff{
			Quantization: &qdrant.QuantizationConfigDiff_Product{
				Product: &qdrant.ProductQuantization{Compression: compressionRatio(dim, subVectors, bits)},
			},
		}
	case indexType == vectordb.IndexTypeIVFHNSWSQ:
		return &qdrant.QuantizationConfigDiff{
			Quantization: &qdrant.QuantizationConfigDiff_Scalar{
				Scalar: &qdrant.ScalarQuantization{Type: qdrant.QuantizationType_Int8},
			},
		}
	default:
		return &qdrant.QuantizationConfigDiff{
			Quantization: &qdrant.QuantizationConfigDiff_Disabled{Disabled: &qdrant.Disabled{}},
		}
	}
}

// compressionRatio picks the largest supported ratio not above the one implied by
// the PQ code size: 32 bits per dimension against bits per sub-vector.
func compressionRatio(dim, subVectors, bits int) qdrant.CompressionRatio {
	ratio := 4
	if subVectors > 0 && bits > 0 {
		ratio = 32 * dim / (subVectors * bits)
	}
	switch {
	case ratio >= 64:
		return qdrant.CompressionRatio_x64
	case ratio >= 32:
		return qdrant.CompressionRatio_x32
	case ratio >= 16:
		return qdrant.CompressionRatio_x16
	case ratio >= 8:
		return qdrant.CompressionRatio_x8
	default:
		return qdrant.CompressionRatio_x4
	}
}

func metricDistance(m vectordb.Metric) qdrant.Distance {
	switch m {
	case vectordb.MetricCosine:
		return qdrant.Distance_Cosine
	case vectordb.MetricDot:
		return qdrant.Distance_Dot
	default:
		return qdrant.Distance_Euclid
	}
}

// vectorDistance returns the distance configured for a named vector, or
// Distance_UnknownDistance when the collection info does not carry it.
func vectorDistance(info *qdrant.CollectionInfo, name string) qdrant.Distance {
	params := info.GetConfig().GetParams().GetVectorsConfig().GetParamsMap().GetMap()
	if p, ok := params[name]; ok {
		return p.GetDistance()
	}
	return qdrant.Distance_UnknownDistance
}
