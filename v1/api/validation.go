package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// readJSON reads the request body and checks that it is a single valid JSON value.
func (s *Server) readJSON(w http.ResponseWriter, r *http.Request) (gjson.Result, error) {
	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return gjson.Result{}, &HTTPError{Status: http.StatusRequestEntityTooLarge, Detail: msgBodyTooLarge}
		}
		return gjson.Result{}, badRequest(msgInvalidJSON)
	}
	if len(bytes.TrimSpace(data)) == 0 || !gjson.ValidBytes(data) {
		return gjson.Result{}, badRequest(msgInvalidJSON)
	}
	return gjson.ParseBytes(data), nil
}

// readObject is readJSON for routes whose body must be a JSON object.
func (s *Server) readObject(w http.ResponseWriter, r *http.Request) (gjson.Result, error) {
	body, err := s.readJSON(w, r)
	if err != nil {
		return body, err
	}
	if !body.IsObject() {
		return body, badRequest(msgExpectedObject)
	}
	return body, nil
}

// member returns the value stored under key in obj. Keys are matched literally
// and a repeated key resolves to its last occurrence, as in row decoding.
func member(obj gjson.Result, key string) gjson.Result {
	var out gjson.Result
	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			out = v
		}
		return true
	})
	return out
}

// truthy applies JSON truthiness: null, false, 0, "", [] and {} are false.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null:
		return false
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		if v.IsArray() {
			return len(v.Array()) > 0
		}
		return len(v.Map()) > 0
	default:
		return false
	}
}

// boolOption reads an optional flag, returning def when the key is absent.
func boolOption(obj gjson.Result, key string, def bool) bool {
	v := member(obj, key)
	if !v.Exists() {
		return def
	}
	return truthy(v)
}

// intOption reads an optional integer, returning def when the key is absent.
// Fractional numbers are truncated; bools count as 0 and 1; strings must hold an integer.
func intOption(obj gjson.Result, key string, def int) (int, error) {
	v := member(obj, key)
	if !v.Exists() {
		return def, nil
	}
	n, err := toInt(v)
	if err != nil {
		return 0, fmt.Errorf("invalid value for '%s': %w", key, err)
	}
	return n, nil
}

func toInt(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Number:
		if math.IsInf(v.Num, 0) || math.IsNaN(v.Num) || math.Abs(v.Num) > math.MaxInt64 {
			return 0, fmt.Errorf("cannot convert %s to an integer", v.Raw)
		}
		if v.Num == math.Trunc(v.Num) {
			return int(v.Int()), nil
		}
		return int(v.Num), nil
	case gjson.True:
		return 1, nil
	case gjson.False:
		return 0, nil
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, fmt.Errorf("invalid literal for an integer: %q", v.Str)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected an integer, got %s", describe(v))
	}
}

// stringOption reads an optional string. Absent and null keys return def.
func stringOption(obj gjson.Result, key, def string) (string, error) {
	v := member(obj, key)
	switch v.Type {
	case gjson.Null:
		return def, nil
	case gjson.String:
		return v.Str, nil
	default:
		return "", fmt.Errorf("'%s' must be a string, got %s", key, describe(v))
	}
}

// stringList reads a list of strings. A single string is a one-element list;
// absent and null keys return nil.
func stringList(obj gjson.Result, key string) ([]string, error) {
	v := member(obj, key)
	switch {
	case v.Type == gjson.Null:
		return nil, nil
	case v.Type == gjson.String:
		return []string{v.Str}, nil
	case v.IsArray():
		items := v.Array()
		out := make([]string, 0, len(items))
		for _, item := range items {
			if item.Type != gjson.String {
				return nil, fmt.Errorf("'%s' must contain only strings, got %s", key, describe(item))
			}
			out = append(out, item.Str)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("'%s' must be a string or a list of strings, got %s", key, describe(v))
	}
}

// floatVector coerces every element of a JSON array to float32. Numbers,
// bools and numeric strings are accepted.
func floatVector(v gjson.Result) ([]float32, error) {
	items := v.Array()
	out := make([]float32, 0, len(items))
	for i, item := range items {
		var f float64
		switch item.Type {
		case gjson.Number:
			f = item.Num
		case gjson.True:
			f = 1
		case gjson.False:
			f = 0
		case gjson.String:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(item.Str), 64)
			if err != nil {
				return nil, fmt.Errorf("could not convert string to float: %q (vector element %d)", item.Str, i)
			}
			f = parsed
		default:
			return nil, fmt.Errorf("vector element %d must be a number, got %s", i, describe(item))
		}
		out = append(out, float32(f))
	}
	return out, nil
}

// decodeRows turns a JSON array of objects into rows.
func decodeRows(items []gjson.Result) ([]vectordb.Row, error) {
	rows := make([]vectordb.Row, 0, len(items))
	for _, item := range items {
		row, err := decodeRow(item)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeRow(item gjson.Result) (vectordb.Row, error) {
	var row vectordb.Row
	if err := row.UnmarshalJSON([]byte(item.Raw)); err != nil {
		return vectordb.Row{}, fmt.Errorf("invalid item: %w", err)
	}
	return row, nil
}

// schemaOption reads an optional list of {"name", "type", "dim"} objects.
func schemaOption(obj gjson.Result, key string) (*vectordb.Schema, error) {
	v := member(obj, key)
	if v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsArray() {
		return nil, fmt.Errorf("'%s' must be a list of fields, got %s", key, describe(v))
	}

	var schema vectordb.Schema
	for i, f := range v.Array() {
		if !f.IsObject() {
			return nil, fmt.Errorf("'%s' entry %d must be an object", key, i)
		}
		ft, err := vectordb.ParseFieldType(member(f, "type").String())
		if err != nil {
			return nil, fmt.Errorf("'%s' entry %d: %w", key, i, err)
		}
		field := vectordb.Field{Name: member(f, "name").String(), Type: ft}
		if dim := member(f, "dim"); dim.Exists() {
			n, err := toInt(dim)
			if err != nil {
				return nil, fmt.Errorf("'%s' entry %d: dim: %w", key, i, err)
			}
			field.Dim = n
		}
		schema.Fields = append(schema.Fields, field)
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return &schema, nil
}

func describe(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return "a bool"
	case gjson.Number:
		return "a number"
	case gjson.String:
		return "a string"
	default:
		if v.IsArray() {
			return "a list"
		}
		return "an object"
	}
}
