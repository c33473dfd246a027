package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/Aleph-Alpha/vectordb-api/v1/repository"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, messageResponse{Message: msg})
}

func writeRows(w http.ResponseWriter, rows []vectordb.Row) {
	if rows == nil {
		rows = []vectordb.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

// ── Operational ──────────────────────────────────────────────────────────────

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) error {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) error {
	if err := s.repo.Ping(r.Context()); err != nil {
		return &HTTPError{Status: http.StatusServiceUnavailable, Detail: err.Error()}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	return nil
}

// ── Reads ────────────────────────────────────────────────────────────────────

func (s *Server) handleGetItems(w http.ResponseWriter, r *http.Request) error {
	rows, err := s.repo.GetAll(r.Context(), r.PathValue("table"))
	if err != nil {
		return err
	}
	writeRows(w, rows)
	return nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) error {
	body, err := s.readObject(w, r)
	if err != nil {
		return err
	}

	vector := member(body, "vector")
	if !truthy(vector) {
		return badRequest(msgMissingVector)
	}
	if !vector.IsArray() {
		return badRequest(msgVectorNotList)
	}

	q := repository.SearchQuery{Table: r.PathValue("table")}
	if q.Vector, err = floatVector(vector); err != nil {
		return err
	}
	if q.Where, err = stringOption(body, "where", ""); err != nil {
		return err
	}
	if q.Columns, err = stringList(body, "columns"); err != nil {
		return err
	}
	if q.VectorColumn, err = stringOption(body, "vector_column_name", ""); err != nil {
		return err
	}
	if q.Limit, err = intOption(body, "limit", repository.DefaultLimit); err != nil {
		return err
	}
	returnVector := boolOption(body, "returnVector", true)

	rows, err := s.repo.Search(r.Context(), q)
	if err != nil {
		return err
	}
	if !returnVector {
		for i := range rows {
			rows[i].Delete(vectordb.DefaultVectorColumn)
		}
	}
	writeRows(w, rows)
	return nil
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) error {
	body, err := s.readObject(w, r)
	if err != nil {
		return err
	}

	query := member(body, "query")
	if !truthy(query) {
		return badRequest(msgMissingQuery)
	}

	q := repository.TextSearchQuery{Table: r.PathValue("table")}
	if q.Query, err = stringOption(body, "query", ""); err != nil {
		return err
	}
	if q.Where, err = stringOption(body, "where", ""); err != nil {
		return err
	}
	if q.Columns, err = stringList(body, "columns"); err != nil {
		return err
	}
	if q.Limit, err = intOption(body, "limit", repository.DefaultLimit); err != nil {
		return err
	}

	rows, err := s.repo.SearchText(r.Context(), q)
	if err != nil {
		return err
	}
	writeRows(w, rows)
	return nil
}

// ── Indexes ──────────────────────────────────────────────────────────────────

func (s *Server) handleCreateFullTextIndex(w http.ResponseWriter, r *http.Request) error {
	body, err := s.readObject(w, r)
	if err != nil {
		return err
	}
	if !truthy(member(body, "field_names")) {
		return badRequest(msgMissingFields)
	}

	table := r.PathValue("table")
	opts := repository.DefaultFullTextIndexOptions()
	if opts.FieldNames, err = stringList(body, "field_names"); err != nil {
		return err
	}
	if opts.OrderingFieldNames, err = stringList(body, "ordering_field_names"); err != nil {
		return err
	}
	if opts.TokenizerName, err = stringOption(body, "tokenizer_name", ""); err != nil {
		return err
	}
	heap, err := intOption(body, "writer_heap_size", repository.DefaultWriterHeapSize)
	if err != nil {
		return err
	}
	opts.WriterHeapSize = int64(heap)
	opts.Replace = boolOption(body, "replace", opts.Replace)
	opts.UseTantivy = boolOption(body, "use_tantivy", opts.UseTantivy)
	opts.WithPosition = boolOption(body, "with_position", opts.WithPosition)

	if err := s.repo.CreateFullTextIndex(r.Context(), table, opts); err != nil {
		return err
	}
	writeMessage(w, fmt.Sprintf("Full-text search index created on table '%s'", table))
	return nil
}

func (s *Server) handleCreateVectorIndex(w http.ResponseWriter, r *http.Request) error {
	body, err := s.readObject(w, r)
	if err != nil {
		return err
	}

	table := r.PathValue("table")
	opts := repository.DefaultVectorIndexOptions()
	if opts.VectorColumn, err = stringOption(body, "vector_column_name", ""); err != nil {
		return err
	}
	opts.Replace = boolOption(body, "replace", opts.Replace)

	metric, err := stringOption(body, "metric", string(opts.Metric))
	if err != nil {
		return err
	}
	if opts.Metric, err = vectordb.ParseMetric(metric); err != nil {
		return err
	}
	indexType, err := stringOption(body, "index_type", string(opts.IndexType))
	if err != nil {
		return err
	}
	if opts.IndexType, err = vectordb.ParseIndexType(indexType); err != nil {
		return err
	}
	if opts.NumPartitions, err = intOption(body, "num_partitions", opts.NumPartitions); err != nil {
		return err
	}
	if opts.NumSubVectors, err = intOption(body, "num_sub_vectors", opts.NumSubVectors); err != nil {
		return err
	}
	if opts.NumBits, err = intOption(body, "num_bits", opts.NumBits); err != nil {
		return err
	}

	if err := s.repo.CreateVectorIndex(r.Context(), table, opts); err != nil {
		return err
	}
	writeMessage(w, fmt.Sprintf("Vector index created on table '%s'", table))
	return nil
}

// ── Writes ───────────────────────────────────────────────────────────────────

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) error {
	body, err := s.readObject(w, r)
	if err != nil {
		return err
	}

	name, err := stringOption(body, "table_name", repository.DefaultTableName)
	if err != nil {
		return err
	}
	mode, err := stringOption(body, "mode", string(vectordb.CreateModeCreate))
	if err != nil {
		return err
	}
	schema, err := schemaOption(body, "schema")
	if err != nil {
		return err
	}

	var data []vectordb.Row
	if d := member(body, "data"); d.Type != gjson.Null {
		if !d.IsArray() {
			return fmt.Errorf("'data' must be a list of objects, got %s", describe(d))
		}
		items := d.Array()
		for i, item := range items {
			if !item.IsObject() {
				return fmt.Errorf("'data' entry %d must be an object, got %s", i, describe(item))
			}
		}
		if data, err = decodeRows(items); err != nil {
			return err
		}
	}

	if err := s.repo.CreateTable(r.Context(), name, schema, data, vectordb.CreateMode(mode)); err != nil {
		return err
	}
	writeMessage(w, fmt.Sprintf("Table '%s' created successfully", name))
	return nil
}

func (s *Server) handleInsertItem(w http.ResponseWriter, r *http.Request) error {
	body, err := s.readObject(w, r)
	if err != nil {
		return err
	}
	row, err := decodeRow(body)
	if err != nil {
		return err
	}

	table := r.PathValue("table")
	created, err := s.insertOrCreate(r, table, []vectordb.Row{row}, s.repo.Insert)
	if err != nil {
		return err
	}
	if created {
		writeMessage(w, fmt.Sprintf("Table '%s' created and item inserted successfully", table))
		return nil
	}
	writeMessage(w, "Item inserted successfully")
	return nil
}

func (s *Server) handleBulkInsert(w http.ResponseWriter, r *http.Request) error {
	body, err := s.readJSON(w, r)
	if err != nil {
		return err
	}
	if !body.IsArray() {
		return badRequest(msgExpectedList)
	}
	items := body.Array()
	for _, item := range items {
		if !item.IsObject() {
			return badRequest(msgItemNotObject)
		}
	}
	rows, err := decodeRows(items)
	if err != nil {
		return err
	}

	table := r.PathValue("table")
	created, err := s.insertOrCreate(r, table, rows, s.repo.BulkInsert)
	if err != nil {
		return err
	}
	if created {
		writeMessage(w, fmt.Sprintf("Table '%s' created and bulk insert completed successfully", table))
		return nil
	}
	writeMessage(w, "Bulk insert completed successfully")
	return nil
}

type insertFunc func(ctx context.Context, name string, rows []vectordb.Row) error

// insertOrCreate appends rows when the table exists and otherwise creates it
// from them. Only a missing table triggers creation; other probe failures are returned.
func (s *Server) insertOrCreate(r *http.Request, table string, rows []vectordb.Row, insert insertFunc) (bool, error) {
	ctx := r.Context()
	_, err := s.repo.GetTable(ctx, table)
	switch {
	case err == nil:
		return false, insert(ctx, table, rows)
	case vectordb.IsTableNotFound(err):
		return true, s.repo.CreateTable(ctx, table, nil, rows, vectordb.CreateModeCreate)
	default:
		return false, err
	}
}
