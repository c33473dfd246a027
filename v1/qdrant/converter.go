package qdrant

import (
	"fmt"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// seqPayloadKey holds the insertion sequence of a point. Scan orders by it.
const seqPayloadKey = vectordb.ReservedPrefix + "_seq"

// ── Row → Point ──────────────────────────────────────────────────────────────

// buildPoint converts a conformed row into a point with a fresh UUID.
// Vector fields become named vectors, everything else goes to the payload.
// Missing non-vector fields are stored as explicit nulls so IS NULL matches them.
func buildPoint(schema vectordb.Schema, row vectordb.Row, seq int64) (*qdrant.PointStruct, error) {
	vectors := make(map[string]*qdrant.Vector)
	payload := make(map[string]any, len(schema.Fields)+1)

	for _, f := range schema.Fields {
		value, _ := row.Get(f.Name)
		if f.Type == vectordb.FieldTypeVector {
			if vec, ok := value.([]float32); ok {
				vectors[f.Name] = qdrant.NewVector(vec...)
			}
			continue
		}
		payload[f.Name] = toPayloadValue(value)
	}
	payload[seqPayloadKey] = seq

	values, err := qdrant.TryValueMap(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to convert row payload: %w", err)
	}

	return &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(uuid.NewString()),
		Vectors: qdrant.NewVectorsMap(vectors),
		Payload: values,
	}, nil
}

// toPayloadValue rewrites row values into types accepted by qdrant.TryValueMap.
func toPayloadValue(v any) any {
	switch val := v.(type) {
	case []float32:
		out := make([]any, len(val))
		for i, f := range val {
			out[i] = float64(f)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toPayloadValue(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = toPayloadValue(item)
		}
		return out
	default:
		return val
	}
}

// ── Point → Row ──────────────────────────────────────────────────────────────

// buildRow converts a point back into a row holding the given fields in order.
func buildRow(fields []vectordb.Field, payload map[string]*qdrant.Value, vectors *qdrant.VectorsOutput) (vectordb.Row, error) {
	named := vectors.GetVectors().GetVectors()
	row := vectordb.NewRow()

	for _, f := range fields {
		if f.Type == vectordb.FieldTypeVector {
			if out, ok := named[f.Name]; ok {
				row.Set(f.Name, vectorData(out))
			} else {
				row.Set(f.Name, nil)
			}
			continue
		}

		value, err := vectordb.CoerceValue(f, extractValue(payload[f.Name]))
		if err != nil {
			return vectordb.Row{}, fmt.Errorf("stored value does not match the schema: %w", err)
		}
		row.Set(f.Name, value)
	}
	return row, nil
}

// vectorData returns the dense values of a vector output.
func vectorData(v *qdrant.VectorOutput) []float32 {
	if dense := v.GetDense(); dense != nil {
		return dense.GetData()
	}
	return v.GetData()
}

// convertPayload converts Qdrant's protobuf payload to a generic map.
func convertPayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = extractValue(v)
	}
	return result
}

// extractValue recursively converts a Qdrant Value to a Go native type.
func extractValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return convertPayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = extractValue(item)
		}
		return items
	default:
		return nil
	}
}

// payloadSeq returns the insertion sequence stored on a point.
func payloadSeq(payload map[string]*qdrant.Value) int64 {
	return payload[seqPayloadKey].GetIntegerValue()
}

// payloadFloat reads a numeric payload value as float64.
func payloadFloat(payload map[string]*qdrant.Value, key string) float64 {
	switch v := extractValue(payload[key]).(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// distanceFromScore converts a Qdrant similarity score into a distance where
// smaller is closer. Euclid scores are plain L2 distances, squared to match the
// embedded engine.
func distanceFromScore(metric vectordb.Metric, score float32) float64 {
	s := float64(score)
	switch metric {
	case vectordb.MetricCosine, vectordb.MetricDot:
		return 1 - s
	default:
		return s * s
	}
}
