package vectordb

import (
	"bytes"
	"fmt"

	json "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Pair is a single field of a Row, used to build rows in a fixed order.
type Pair struct {
	Key   string
	Value any
}

// Row is an ordered mapping from field name to value.
//
// Field order is the order in which fields were first set: the key order of the JSON
// object a row was decoded from, or the schema order for rows produced by an engine.
// Values are restricted to nil, bool, int64, float64, string, []float32, []any and
// map[string]any; Set normalizes other numeric types into that set.
//
// The zero value is an empty row ready to use.
type Row struct {
	fields *orderedmap.OrderedMap[string, any]

	// Row must not be pointer-shaped: goccy/go-json encodes a nil pointer-shaped
	// value as null without calling MarshalJSON, and the zero Row encodes as {}.
	_ struct{}
}

// NewRow creates a row holding the given pairs in order.
func NewRow(pairs ...Pair) Row {
	r := Row{fields: orderedmap.New[string, any](orderedmap.WithCapacity[string, any](len(pairs)))}
	for _, p := range pairs {
		r.Set(p.Key, p.Value)
	}
	return r
}

func (r *Row) init() {
	if r.fields == nil {
		r.fields = orderedmap.New[string, any]()
	}
}

// Set stores a value, keeping the original position of an existing key.
func (r *Row) Set(key string, value any) {
	r.init()
	r.fields.Set(key, NormalizeValue(value))
}

// Get returns the value stored under key.
func (r *Row) Get(key string) (any, bool) {
	if r.fields == nil {
		return nil, false
	}
	return r.fields.Get(key)
}

// Has reports whether the row contains key.
func (r *Row) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Delete removes key from the row. Deleting a missing key is a no-op.
func (r *Row) Delete(key string) {
	if r.fields == nil {
		return
	}
	r.fields.Delete(key)
}

// Len returns the number of fields.
func (r *Row) Len() int {
	if r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// Keys returns the field names in order.
func (r *Row) Keys() []string {
	keys := make([]string, 0, r.Len())
	r.Range(func(key string, _ any) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// Range calls fn for each field in order until fn returns false.
func (r *Row) Range(fn func(key string, value any) bool) {
	if r.fields == nil {
		return
	}
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Clone returns a shallow copy of the row.
func (r *Row) Clone() Row {
	out := Row{fields: orderedmap.New[string, any](orderedmap.WithCapacity[string, any](r.Len()))}
	r.Range(func(key string, value any) bool {
		out.fields.Set(key, value)
		return true
	})
	return out
}

// ToMap returns the row as an unordered map.
func (r *Row) ToMap() map[string]any {
	m := make(map[string]any, r.Len())
	r.Range(func(key string, value any) bool {
		m[key] = value
		return true
	})
	return m
}

// MarshalJSON encodes the row as a JSON object preserving field order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	var encErr error
	r.Range(func(key string, value any) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		k, err := json.Marshal(key)
		if err != nil {
			encErr = err
			return false
		}
		buf.Write(k)
		buf.WriteByte(':')

		v, err := json.Marshal(value)
		if err != nil {
			encErr = fmt.Errorf("field %q: %w", key, err)
			return false
		}
		buf.Write(v)
		return true
	})
	if encErr != nil {
		return nil, encErr
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// rawValue captures an undecoded JSON value without relying on a specific
// RawMessage implementation.
type rawValue []byte

func (v *rawValue) UnmarshalJSON(data []byte) error {
	*v = append((*v)[:0], data...)
	return nil
}

// UnmarshalJSON decodes a JSON object preserving key order. Integral numbers decode
// to int64 and other numbers to float64.
func (r *Row) UnmarshalJSON(data []byte) error {
	raw := orderedmap.New[string, rawValue]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}

	r.fields = orderedmap.New[string, any](orderedmap.WithCapacity[string, any](raw.Len()))
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		value, err := DecodeValue(pair.Value)
		if err != nil {
			return fmt.Errorf("field %q: %w", pair.Key, err)
		}
		r.fields.Set(pair.Key, value)
	}
	return nil
}

// DecodeValue decodes a single JSON value into the normalized value set.
func DecodeValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return NormalizeValue(v), nil
}
