package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/Aleph-Alpha/vectordb-api/v1/repository"
	"github.com/Aleph-Alpha/vectordb-api/v1/sqlite"
)

func newSQLiteHandler(t *testing.T) http.Handler {
	t.Helper()
	engine, err := sqlite.NewEngine(context.Background(), sqlite.Config{InMemory: true}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = engine.Close() })

	return NewServer(Config{}, repository.NewRepository(engine)).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	d := gjson.Get(rec.Body.String(), "detail")
	require.True(t, d.Exists(), "no detail in %s", rec.Body.String())
	return d.String()
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return gjson.Get(rec.Body.String(), "message").String()
}

func TestInvalidJSONBody(t *testing.T) {
	h := newSQLiteHandler(t)
	paths := []string{
		"/docs/search",
		"/docs/search_text",
		"/docs/create_fts_index",
		"/docs/create_vector_index",
		"/create_table",
		"/docs/items",
		"/docs/bulk_items",
	}

	for _, path := range paths {
		for _, body := range []string{"", "{not json", `{"a":1} trailing`} {
			t.Run(path, func(t *testing.T) {
				rec := do(t, h, http.MethodPost, path, body)
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, "Invalid JSON body", detail(t, rec))
			})
		}
	}
}

func TestObjectRoutesRejectNonObjects(t *testing.T) {
	h := newSQLiteHandler(t)
	for _, path := range []string{"/docs/search", "/docs/items", "/create_table"} {
		rec := do(t, h, http.MethodPost, path, `[1, 2]`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Expected a JSON object in the JSON body", detail(t, rec))
	}
}

func TestMissingRequiredFields(t *testing.T) {
	h := newSQLiteHandler(t)
	tests := []struct {
		path string
		body string
		want string
	}{
		{"/docs/search", `{}`, "Missing 'vector' in JSON body"},
		{"/docs/search", `{"vector": []}`, "Missing 'vector' in JSON body"},
		{"/docs/search", `{"vector": null}`, "Missing 'vector' in JSON body"},
		{"/docs/search", `{"vector": "not-a-list"}`, "The 'vector' must be provided as a list of numbers"},
		{"/docs/search", `{"vector": {"x": 1}}`, "The 'vector' must be provided as a list of numbers"},
		{"/docs/search_text", `{}`, "Missing 'query' in JSON body"},
		{"/docs/search_text", `{"query": ""}`, "Missing 'query' in JSON body"},
		{"/docs/create_fts_index", `{}`, "Missing 'field_names' in JSON body"},
		{"/docs/create_fts_index", `{"field_names": []}`, "Missing 'field_names' in JSON body"},
		{"/docs/bulk_items", `{"vector": [1]}`, "Expected a list of items in the JSON body"},
		{"/docs/bulk_items", `[{"vector": [1]}, 3]`, "Each item in the JSON body must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.path+" "+tt.body, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, detail(t, rec))
		})
	}
}

func TestInsertCreatesTableAndRoundTrips(t *testing.T) {
	h := newSQLiteHandler(t)

	rec := do(t, h, http.MethodPost, "/t1/items", `{"vector": [0.1, 0.2], "text": "hello"}`)
	assert.Equal(t, "Table 't1' created and item inserted successfully", message(t, rec))

	rec = do(t, h, http.MethodGet, "/t1/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := gjson.Parse(rec.Body.String()).Array()
	require.Len(t, items, 1)
	vec := items[0].Get("vector").Array()
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.1, vec[0].Float(), 1e-6)
	assert.InDelta(t, 0.2, vec[1].Float(), 1e-6)
	assert.Equal(t, "hello", items[0].Get("text").String())

	// Field order follows the submitted object.
	var keys []string
	items[0].ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	assert.Equal(t, []string{"vector", "text"}, keys)

	rec = do(t, h, http.MethodPost, "/t1/items", `{"vector": [1, 2], "text": "again"}`)
	assert.Equal(t, "Item inserted successfully", message(t, rec))

	first := do(t, h, http.MethodGet, "/t1/items", "").Body.String()
	second := do(t, h, http.MethodGet, "/t1/items", "").Body.String()
	assert.JSONEq(t, first, second)
	assert.Len(t, gjson.Parse(first).Array(), 2)
}

func TestGetItemsMissingTable(t *testing.T) {
	h := newSQLiteHandler(t)
	rec := do(t, h, http.MethodGet, "/nope/items", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "nope")
}

func TestBulkInsert(t *testing.T) {
	h := newSQLiteHandler(t)

	rec := do(t, h, http.MethodPost, "/t/bulk_items", `[{"vector": [1, 0]}, {"vector": [0, 1]}]`)
	assert.Equal(t, "Table 't' created and bulk insert completed successfully", message(t, rec))

	rec = do(t, h, http.MethodPost, "/t/bulk_items", `[{"vector": [1, 1]}]`)
	assert.Equal(t, "Bulk insert completed successfully", message(t, rec))

	rec = do(t, h, http.MethodGet, "/t/items", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := gjson.Parse(rec.Body.String()).Array()
	require.Len(t, items, 3)
	assert.Equal(t, 1.0, items[0].Get("vector.0").Float())
	assert.Equal(t, 1.0, items[1].Get("vector.1").Float())
}

func seedDocs(t *testing.T, h http.Handler) {
	t.Helper()
	body := `[
		{"vector": [1, 0], "text": "hello world", "kind": "a", "rank": 1},
		{"vector": [0, 1], "text": "hello hello there", "kind": "b", "rank": 2},
		{"vector": [0.9, 0.1], "text": "goodbye world", "kind": "a", "rank": 3}
	]`
	rec := do(t, h, http.MethodPost, "/docs/bulk_items", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSearch(t *testing.T) {
	h := newSQLiteHandler(t)
	seedDocs(t, h)

	rec := do(t, h, http.MethodPost, "/docs/search", `{"vector": [1, 0]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results := gjson.Parse(rec.Body.String()).Array()
	require.Len(t, results, 3)
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].Get("_distance").Float(), results[i].Get("_distance").Float())
	}
	assert.Equal(t, "hello world", results[0].Get("text").String())
	assert.True(t, results[0].Get("vector").Exists())

	rec = do(t, h, http.MethodPost, "/docs/search", `{"vector": ["1", true], "limit": "1", "returnVector": false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results = gjson.Parse(rec.Body.String()).Array()
	require.Len(t, results, 1)
	assert.False(t, results[0].Get("vector").Exists())

	rec = do(t, h, http.MethodPost, "/docs/search", `{"vector": [1, 0], "where": "kind = 'b'", "columns": ["text"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results = gjson.Parse(rec.Body.String()).Array()
	require.Len(t, results, 1)
	assert.Equal(t, "hello hello there", results[0].Get("text").String())
	assert.True(t, results[0].Get("_distance").Exists())
	assert.False(t, results[0].Get("kind").Exists())
}

func TestSearchCoercionFailuresAre500(t *testing.T) {
	h := newSQLiteHandler(t)
	seedDocs(t, h)

	for _, body := range []string{
		`{"vector": [1, "abc"]}`,
		`{"vector": [1, null]}`,
		`{"vector": [1, 0], "limit": "ten"}`,
		`{"vector": [1, 0], "limit": null}`,
	} {
		rec := do(t, h, http.MethodPost, "/docs/search", body)
		assert.Equal(t, http.StatusInternalServerError, rec.Code, body)
		assert.NotEmpty(t, detail(t, rec))
	}
}

func TestSearchText(t *testing.T) {
	h := newSQLiteHandler(t)
	seedDocs(t, h)

	rec := do(t, h, http.MethodPost, "/docs/search_text", `{"query": "hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "no full-text index exists on table 'docs'")

	rec = do(t, h, http.MethodPost, "/docs/create_fts_index", `{"field_names": "text"}`)
	assert.Equal(t, "Full-text search index created on table 'docs'", message(t, rec))

	rec = do(t, h, http.MethodPost, "/docs/create_fts_index", `{"field_names": ["text"], "replace": false}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "already exists")

	rec = do(t, h, http.MethodPost, "/docs/create_fts_index", `{"field_names": ["text"], "replace": true}`)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/docs/search_text", `{"query": "hello world"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	results := gjson.Parse(rec.Body.String()).Array()
	require.NotEmpty(t, results)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Get("_score").Float(), results[i].Get("_score").Float())
	}

	rec = do(t, h, http.MethodPost, "/docs/search_text", `{"query": "world", "where": "kind = 'a'", "limit": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, gjson.Parse(rec.Body.String()).Array(), 1)
}

func TestSearchTextNgramWithoutPositions(t *testing.T) {
	h := newSQLiteHandler(t)
	seedDocs(t, h)

	rec := do(t, h, http.MethodPost, "/docs/create_fts_index", `{"field_names": "text", "tokenizer_name": "ngram", "with_position": false}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/docs/search_text", `{"query": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, gjson.Parse(rec.Body.String()).Array(), 2)
}

func TestSearchLimitOption(t *testing.T) {
	h := newSQLiteHandler(t)
	seedDocs(t, h)

	rec := do(t, h, http.MethodPost, "/docs/search", `{"vector": [1, 0], "limit": 0}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "limit must be positive")

	rec = do(t, h, http.MethodPost, "/docs/search", `{"vector": [1, 0], "limit": 1, "limit": 2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, gjson.Parse(rec.Body.String()).Array(), 2)
}

func TestCreateTable(t *testing.T) {
	h := newSQLiteHandler(t)

	rec := do(t, h, http.MethodPost, "/create_table", `{"data": [{"vector": [1, 2], "text": "a"}]}`)
	assert.Equal(t, "Table 'chunks' created successfully", message(t, rec))

	rec = do(t, h, http.MethodPost, "/create_table", `{"data": [{"vector": [1, 2]}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "already exists")

	rec = do(t, h, http.MethodPost, "/create_table", `{"table_name": "chunks", "mode": "overwrite", "data": [{"vector": [3, 4]}]}`)
	assert.Equal(t, "Table 'chunks' created successfully", message(t, rec))
	items := gjson.Parse(do(t, h, http.MethodGet, "/chunks/items", "").Body.String()).Array()
	require.Len(t, items, 1)
	assert.Equal(t, 3.0, items[0].Get("vector.0").Float())

	rec = do(t, h, http.MethodPost, "/create_table", `{"table_name": "x", "mode": "append", "data": [{"a": 1}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "append")

	rec = do(t, h, http.MethodPost, "/create_table", `{"table_name": "typed", "schema": [
		{"name": "vector", "type": "vector", "dim": 3},
		{"name": "title", "type": "string"}
	]}`)
	assert.Equal(t, "Table 'typed' created successfully", message(t, rec))
	rec = do(t, h, http.MethodPost, "/typed/items", `{"vector": [1, 2, 3], "title": "t"}`)
	assert.Equal(t, "Item inserted successfully", message(t, rec))

	rec = do(t, h, http.MethodPost, "/create_table", `{"table_name": "empty"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCreateVectorIndexValidation(t *testing.T) {
	h := newSQLiteHandler(t)
	seedDocs(t, h)

	rec := do(t, h, http.MethodPost, "/docs/create_vector_index", `{"metric": "manhattan"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "manhattan")

	rec = do(t, h, http.MethodPost, "/docs/create_vector_index", `{"index_type": "HNSW"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "HNSW")

	rec = do(t, h, http.MethodPost, "/docs/create_vector_index", `{"num_partitions": [1]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "num_partitions")
}

func TestOperationalRoutes(t *testing.T) {
	h := newSQLiteHandler(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/a/b/c", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", detail(t, rec))

	rec = do(t, h, http.MethodDelete, "/docs/items", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "Method Not Allowed", detail(t, rec))

	rec = do(t, h, http.MethodGet, "/docs/search", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
