package qdrant

import (
	"fmt"
	"math"
	"strings"

	qdrant "github.com/qdrant/go-client/qdrant"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// filterBuilder translates a parsed where expression into a Qdrant filter over
// the payload of one table.
type filterBuilder struct {
	schema vectordb.Schema
}

// buildFilter parses a where expression and converts it. An empty expression
// yields a nil filter.
func buildFilter(where string, schema vectordb.Schema) (*qdrant.Filter, error) {
	expr, err := vectordb.ParseWhere(where)
	if err != nil || expr == nil {
		return nil, err
	}
	b := &filterBuilder{schema: schema}
	cond, err := b.condition(expr)
	if err != nil {
		return nil, err
	}
	return &qdrant.Filter{Must: []*qdrant.Condition{cond}}, nil
}

func (b *filterBuilder) condition(expr vectordb.FilterExpr) (*qdrant.Condition, error) {
	switch e := expr.(type) {
	case *vectordb.Comparison:
		key, fieldType, err := b.key(e.Field)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case vectordb.OpEq:
			return b.match(key, fieldType, e.Value)
		case vectordb.OpNe:
			cond, err := b.match(key, fieldType, e.Value)
			if err != nil {
				return nil, err
			}
			return nested(&qdrant.Filter{MustNot: []*qdrant.Condition{cond}}), nil
		case vectordb.OpLt, vectordb.OpLte, vectordb.OpGt, vectordb.OpGte:
			return b.rangeCondition(key, e.Op, e.Value)
		default:
			return nil, fmt.Errorf("%w: operator %s is not supported by the qdrant engine", vectordb.ErrInvalidFilter, e.Op)
		}

	case *vectordb.InList:
		key, fieldType, err := b.key(e.Field)
		if err != nil {
			return nil, err
		}
		cond, err := b.matchAny(key, fieldType, e.Values)
		if err != nil {
			return nil, err
		}
		if e.Negate {
			return nested(&qdrant.Filter{MustNot: []*qdrant.Condition{cond}}), nil
		}
		return cond, nil

	case *vectordb.NullCheck:
		key, _, err := b.key(e.Field)
		if err != nil {
			return nil, err
		}
		if e.Negate {
			return nested(&qdrant.Filter{MustNot: []*qdrant.Condition{qdrant.NewIsNull(key)}}), nil
		}
		return qdrant.NewIsNull(key), nil

	case *vectordb.And:
		l, r, err := b.pair(e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return nested(&qdrant.Filter{Must: []*qdrant.Condition{l, r}}), nil

	case *vectordb.Or:
		l, r, err := b.pair(e.Left, e.Right)
		if err != nil {
			return nil, err
		}
		return nested(&qdrant.Filter{Should: []*qdrant.Condition{l, r}}), nil

	case *vectordb.Not:
		inner, err := b.condition(e.Expr)
		if err != nil {
			return nil, err
		}
		return nested(&qdrant.Filter{MustNot: []*qdrant.Condition{inner}}), nil

	default:
		return nil, fmt.Errorf("%w: unsupported expression %T", vectordb.ErrInvalidFilter, expr)
	}
}

func (b *filterBuilder) pair(left, right vectordb.FilterExpr) (*qdrant.Condition, *qdrant.Condition, error) {
	l, err := b.condition(left)
	if err != nil {
		return nil, nil, err
	}
	r, err := b.condition(right)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// key resolves a field path to a payload key. Nested paths are only valid on
// json columns and address the nested object directly ("meta.author").
func (b *filterBuilder) key(path vectordb.FieldPath) (string, vectordb.FieldType, error) {
	field, ok := b.schema.Field(path.Column())
	if !ok {
		return "", "", fmt.Errorf("%w: column '%s' referenced in where is not in the table schema",
			vectordb.ErrColumnNotFound, path.Column())
	}
	if field.Type == vectordb.FieldTypeVector {
		return "", "", fmt.Errorf("%w: vector column '%s' cannot be used in where", vectordb.ErrInvalidFilter, field.Name)
	}
	if len(path.Nested()) > 0 && field.Type != vectordb.FieldTypeJSON {
		return "", "", fmt.Errorf("%w: '%s' is not a json column, cannot select '%s'",
			vectordb.ErrInvalidFilter, field.Name, path)
	}
	return strings.Join(path, "."), field.Type, nil
}

// match builds an equality condition. Float columns and fractional literals use a
// closed range because Qdrant only matches keywords, integers and bools exactly.
func (b *filterBuilder) match(key string, fieldType vectordb.FieldType, value any) (*qdrant.Condition, error) {
	switch v := value.(type) {
	case string:
		if fieldType != vectordb.FieldTypeString && fieldType != vectordb.FieldTypeJSON {
			return nil, fmt.Errorf("%w: cannot compare %s column '%s' with a string", vectordb.ErrInvalidFilter, fieldType, key)
		}
		return qdrant.NewMatch(key, v), nil
	case bool:
		if fieldType != vectordb.FieldTypeBool && fieldType != vectordb.FieldTypeJSON {
			return nil, fmt.Errorf("%w: cannot compare %s column '%s' with a bool", vectordb.ErrInvalidFilter, fieldType, key)
		}
		return qdrant.NewMatchBool(key, v), nil
	case int64:
		if fieldType == vectordb.FieldTypeFloat64 {
			return equalRange(key, float64(v)), nil
		}
		return qdrant.NewMatchInt(key, v), nil
	case float64:
		if fieldType != vectordb.FieldTypeFloat64 && v == math.Trunc(v) {
			return qdrant.NewMatchInt(key, int64(v)), nil
		}
		return equalRange(key, v), nil
	default:
		return nil, fmt.Errorf("%w: unsupported literal %v", vectordb.ErrInvalidFilter, value)
	}
}

// matchAny builds an IN condition, using a single keyword or integer match when
// the literals allow it and a disjunction of equalities otherwise.
func (b *filterBuilder) matchAny(key string, fieldType vectordb.FieldType, values []any) (*qdrant.Condition, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: IN list on '%s' is empty", vectordb.ErrInvalidFilter, key)
	}

	if keywords, ok := allStrings(values); ok && fieldType != vectordb.FieldTypeBool {
		return qdrant.NewMatchKeywords(key, keywords...), nil
	}
	if ints, ok := allInts(values); ok && fieldType != vectordb.FieldTypeFloat64 {
		return qdrant.NewMatchInts(key, ints...), nil
	}

	should := make([]*qdrant.Condition, 0, len(values))
	for _, v := range values {
		cond, err := b.match(key, fieldType, v)
		if err != nil {
			return nil, err
		}
		should = append(should, cond)
	}
	return nested(&qdrant.Filter{Should: should}), nil
}

func (b *filterBuilder) rangeCondition(key string, op vectordb.CompareOp, value any) (*qdrant.Condition, error) {
	var f float64
	switch v := value.(type) {
	case int64:
		f = float64(v)
	case float64:
		f = v
	default:
		return nil, fmt.Errorf("%w: operator %s on '%s' requires a numeric literal", vectordb.ErrInvalidFilter, op, key)
	}

	r := &qdrant.Range{}
	switch op {
	case vectordb.OpLt:
		r.Lt = &f
	case vectordb.OpLte:
		r.Lte = &f
	case vectordb.OpGt:
		r.Gt = &f
	case vectordb.OpGte:
		r.Gte = &f
	}
	return qdrant.NewRange(key, r), nil
}

func equalRange(key string, v float64) *qdrant.Condition {
	return qdrant.NewRange(key, &qdrant.Range{Gte: &v, Lte: &v})
}

// nested wraps a filter as a condition of an outer filter.
func nested(f *qdrant.Filter) *qdrant.Condition {
	return &qdrant.Condition{ConditionOneOf: &qdrant.Condition_Filter{Filter: f}}
}

func allStrings(values []any) ([]string, bool) {
	out := make([]string, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		out[i] = s
	}
	return out, true
}

func allInts(values []any) ([]int64, bool) {
	out := make([]int64, len(values))
	for i, v := range values {
		switch n := v.(type) {
		case int64:
			out[i] = n
		case float64:
			if n != math.Trunc(n) {
				return nil, false
			}
			out[i] = int64(n)
		default:
			return nil, false
		}
	}
	return out, true
}

// textFilter matches points where any indexed field contains any of the terms.
func textFilter(fields, terms []string) *qdrant.Filter {
	should := make([]*qdrant.Condition, 0, len(fields)*len(terms))
	for _, field := range fields {
		for _, term := range terms {
			should = append(should, &qdrant.Condition{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key:   field,
						Match: &qdrant.Match{MatchValue: &qdrant.Match_Text{Text: term}},
					},
				},
			})
		}
	}
	return &qdrant.Filter{Should: should}
}
