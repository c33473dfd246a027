package qdrant

import (
	"context"
	"fmt"
	"sort"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// metaCollection holds one point per table with its schema and index settings.
const metaCollection = vectordb.ReservedPrefix + "_tables"

// metaNamespace seeds the deterministic point IDs of metaCollection.
var metaNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("vectordb-api/tables"))

// tableMeta is the JSON document stored in the "meta" payload key.
type tableMeta struct {
	Schema vectordb.Schema `json:"schema"`

	// VectorIndexes maps a vector column to its index configuration.
	VectorIndexes map[string]vectordb.VectorIndexOptions `json:"vectorIndexes,omitempty"`

	// FullText is the full-text index configuration, nil when none exists.
	FullText *fullTextMeta `json:"fullText,omitempty"`
}

type fullTextMeta struct {
	Fields         []string `json:"fields"`
	OrderingFields []string `json:"orderingFields,omitempty"`
	Tokenizer      string   `json:"tokenizer"`
	WithPosition   bool     `json:"withPosition"`
}

// metric returns the metric configured for a vector column (L2 without an index).
func (m *tableMeta) metric(column string) vectordb.Metric {
	if idx, ok := m.VectorIndexes[column]; ok && idx.Metric != "" {
		return idx.Metric
	}
	return vectordb.MetricL2
}

func metaPointID(table string) *qdrant.PointId {
	return qdrant.NewIDUUID(uuid.NewSHA1(metaNamespace, []byte(table)).String())
}

// ensureMetaCollection creates metaCollection on first use.
func (a *Adapter) ensureMetaCollection(ctx context.Context) error {
	a.metaMu.Lock()
	defer a.metaMu.Unlock()
	if a.metaOK {
		return nil
	}

	exists, err := a.client.CollectionExists(ctx, metaCollection)
	if err != nil {
		return fmt.Errorf("failed to check metadata collection: %w", err)
	}
	if !exists {
		err := a.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: metaCollection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     1,
				Distance: qdrant.Distance_Dot,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create metadata collection: %w", err)
		}
		a.logInfo(ctx, "Created metadata collection", map[string]interface{}{"collection": metaCollection})
	}
	a.metaOK = true
	return nil
}

// loadMeta returns the metadata of a table, or an error wrapping ErrTableNotFound.
func (a *Adapter) loadMeta(ctx context.Context, table string) (*tableMeta, error) {
	if err := a.ensureMetaCollection(ctx); err != nil {
		return nil, err
	}

	points, err := a.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: metaCollection,
		Ids:            []*qdrant.PointId{metaPointID(table)},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata of table '%s': %w", table, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: '%s'", vectordb.ErrTableNotFound, table)
	}

	raw := points[0].GetPayload()["meta"].GetStringValue()
	var meta tableMeta
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("corrupt metadata for table '%s': %w", table, err)
	}
	return &meta, nil
}

func (a *Adapter) saveMeta(ctx context.Context, table string, meta *tableMeta) error {
	if err := a.ensureMetaCollection(ctx); err != nil {
		return err
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata of table '%s': %w", table, err)
	}

	_, err = a.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: metaCollection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      metaPointID(table),
			Vectors: qdrant.NewVectors(1),
			Payload: qdrant.NewValueMap(map[string]any{
				"name": table,
				"meta": string(raw),
			}),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to save metadata of table '%s': %w", table, err)
	}
	return nil
}

func (a *Adapter) deleteMeta(ctx context.Context, table string) error {
	_, err := a.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: metaCollection,
		Wait:           qdrant.PtrOf(true),
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{Ids: []*qdrant.PointId{metaPointID(table)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete metadata of table '%s': %w", table, err)
	}
	return nil
}

// listTableNames returns the names recorded in metaCollection, sorted.
func (a *Adapter) listTableNames(ctx context.Context) ([]string, error) {
	if err := a.ensureMetaCollection(ctx); err != nil {
		return nil, err
	}

	names := []string{}
	err := a.scrollAll(ctx, metaCollection, nil, false, func(p *qdrant.RetrievedPoint) error {
		if name := p.GetPayload()["name"].GetStringValue(); name != "" {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sort.Strings(names)
	return names, nil
}
