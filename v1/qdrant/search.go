package qdrant

import (
	"context"
	"fmt"
	"sort"
	"time"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// ── Vector search ────────────────────────────────────────────────────────────

// Search runs a nearest-neighbor query against one named vector.
// Results carry _distance derived from the Qdrant score and are ordered by it.
func (a *Adapter) Search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.Row, error) {
	start := time.Now()
	rows, err := a.search(ctx, req)
	a.observeOperation("search", req.Table, req.VectorColumn, time.Since(start), err, int64(len(rows)), map[string]interface{}{
		"limit":    req.Limit,
		"filtered": req.Where != "",
	})
	return rows, err
}

func (a *Adapter) search(ctx context.Context, req vectordb.SearchRequest) ([]vectordb.Row, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", vectordb.ErrInvalidArgument, req.Limit)
	}

	meta, err := a.loadMeta(ctx, req.Table)
	if err != nil {
		return nil, err
	}
	vecField, err := vectordb.ResolveVectorColumn(meta.Schema, req.VectorColumn)
	if err != nil {
		return nil, err
	}
	if len(req.Vector) != vecField.Dim {
		return nil, fmt.Errorf("%w: query vector has dimension %d but column '%s' has dimension %d",
			vectordb.ErrInvalidArgument, len(req.Vector), vecField.Name, vecField.Dim)
	}
	fields, err := vectordb.ProjectColumns(meta.Schema, req.Columns)
	if err != nil {
		return nil, err
	}
	filter, err := buildFilter(req.Where, meta.Schema)
	if err != nil {
		return nil, err
	}

	points, err := a.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: req.Table,
		Query:          qdrant.NewQuery(req.Vector...),
		Using:          qdrant.PtrOf(vecField.Name),
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(req.Limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(hasVector(fields)),
	})
	if err != nil {
		return nil, fmt.Errorf("vector search on table '%s' failed: %w", req.Table, err)
	}

	metric := meta.metric(vecField.Name)
	out := make([]vectordb.Row, 0, len(points))
	for _, p := range points {
		row, err := buildRow(fields, p.GetPayload(), p.GetVectors())
		if err != nil {
			return nil, fmt.Errorf("vector search on table '%s' failed: %w", req.Table, err)
		}
		row.Set(vectordb.DistanceColumn, distanceFromScore(metric, p.GetScore()))
		out = append(out, row)
	}
	return out, nil
}

// ── Full-text search ─────────────────────────────────────────────────────────

// SearchText scrolls the points whose indexed fields contain any query term and
// ranks them by the number of matched terms. Ties are broken by the first
// ordering field (descending), then by insertion order.
func (a *Adapter) SearchText(ctx context.Context, req vectordb.TextSearchRequest) ([]vectordb.Row, error) {
	start := time.Now()
	rows, err := a.searchText(ctx, req)
	a.observeOperation("search_text", req.Table, "", time.Since(start), err, int64(len(rows)), map[string]interface{}{
		"limit":    req.Limit,
		"filtered": req.Where != "",
	})
	return rows, err
}

func (a *Adapter) searchText(ctx context.Context, req vectordb.TextSearchRequest) ([]vectordb.Row, error) {
	if req.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", vectordb.ErrInvalidArgument, req.Limit)
	}

	meta, err := a.loadMeta(ctx, req.Table)
	if err != nil {
		return nil, err
	}
	if meta.FullText == nil {
		return nil, fmt.Errorf("%w: no full-text index exists on table '%s', create one with /create_fts_index",
			vectordb.ErrIndexMissing, req.Table)
	}
	fields, err := vectordb.ProjectColumns(meta.Schema, req.Columns)
	if err != nil {
		return nil, err
	}
	filter, err := buildFilter(req.Where, meta.Schema)
	if err != nil {
		return nil, err
	}

	terms := uniqueTerms(queryTerms(req.Query))
	if len(terms) == 0 {
		return []vectordb.Row{}, nil
	}

	text := textFilter(meta.FullText.Fields, terms)
	if filter == nil {
		filter = text
	} else {
		filter.Must = append(filter.Must, nested(text))
	}

	type hit struct {
		score float64
		order float64
		seq   int64
		row   vectordb.Row
	}
	var hits []hit

	withVectors := hasVector(fields)
	err = a.scrollAll(ctx, req.Table, filter, withVectors, func(p *qdrant.RetrievedPoint) error {
		payload := p.GetPayload()
		row, err := buildRow(fields, payload, p.GetVectors())
		if err != nil {
			return err
		}
		h := hit{
			score: termScore(payload, meta.FullText.Fields, terms),
			seq:   payloadSeq(payload),
			row:   row,
		}
		if len(meta.FullText.OrderingFields) > 0 {
			h.order = payloadFloat(payload, meta.FullText.OrderingFields[0])
		}
		hits = append(hits, h)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("full-text search on table '%s' failed: %w", req.Table, err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		if hits[i].order != hits[j].order {
			return hits[i].order > hits[j].order
		}
		return hits[i].seq < hits[j].seq
	})

	if len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	out := make([]vectordb.Row, len(hits))
	for i, h := range hits {
		h.row.Set(vectordb.ScoreColumn, h.score)
		out[i] = h.row
	}
	return out, nil
}

func hasVector(fields []vectordb.Field) bool {
	for _, f := range fields {
		if f.Type == vectordb.FieldTypeVector {
			return true
		}
	}
	return false
}
