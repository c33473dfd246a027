package qdrant

import (
	"context"
	"strings"
	"unicode"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// scrollAll pages through every point matching filter and calls fn for each one.
// Each page requests one extra point whose ID becomes the next offset.
func (a *Adapter) scrollAll(ctx context.Context, collection string, filter *qdrant.Filter, withVectors bool, fn func(*qdrant.RetrievedPoint) error) error {
	page := defaultScrollPageSize
	var offset *qdrant.PointId

	for {
		points, err := a.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: collection,
			Filter:         filter,
			Offset:         offset,
			Limit:          qdrant.PtrOf(uint32(page + 1)),
			WithPayload:    qdrant.NewWithPayload(true),
			WithVectors:    qdrant.NewWithVectors(withVectors),
		})
		if err != nil {
			return err
		}

		for i, p := range points {
			if i == page {
				break
			}
			if err := fn(p); err != nil {
				return err
			}
		}
		if len(points) <= page {
			return nil
		}
		offset = points[page].GetId()
	}
}

// queryTerms splits text into lowercase words of letters and digits.
func queryTerms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// uniqueTerms drops repeated terms, keeping the first occurrence.
func uniqueTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// termScore counts how many query terms occur in the given text fields.
func termScore(payload map[string]*qdrant.Value, fields, terms []string) float64 {
	words := make(map[string]struct{})
	for _, f := range fields {
		for _, w := range queryTerms(payload[f].GetStringValue()) {
			words[w] = struct{}{}
		}
	}

	var score float64
	for _, t := range terms {
		if _, ok := words[t]; ok {
			score++
		}
	}
	return score
}

// derefUint64 safely dereferences a *uint64 pointer.
// If the pointer is nil, it returns 0 instead of panicking.
func derefUint64(v *uint64) uint64 {
	if v != nil {
		return *v
	}
	return 0
}
