// Package vectordb provides the engine-agnostic contract of the vector database API.
//
// # Overview
//
// This package defines the [Service] interface implemented by the engine adapters
// (the embedded SQLite engine and the remote Qdrant engine) together with the types
// that flow between the HTTP layer and the engines: [Row], [Schema], the request
// and index option structs, the where-expression tree and the sentinel errors.
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                 api (HTTP router + handlers)                │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	                           ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│             repository.Repository (façade)                  │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	                           ▼
//	┌─────────────────────────────────────────────────────────────┐
//	│                    vectordb.Service                         │
//	│          (common interface + engine-agnostic types)         │
//	└──────────────────────────┬──────────────────────────────────┘
//	                           │
//	              ┌────────────┴────────────┐
//	              ▼                         ▼
//	      ┌───────────────┐         ┌───────────────┐
//	      │ sqlite.Engine │         │qdrant.Adapter │
//	      └───────────────┘         └───────────────┘
//
// # Rows
//
// A [Row] keeps the key order of the JSON object it was decoded from, so responses
// list fields in the order clients sent them:
//
//	var row vectordb.Row
//	_ = json.Unmarshal([]byte(`{"text":"hello","vector":[0.1,0.2]}`), &row)
//	row.Keys() // ["text", "vector"]
//
// Integral JSON numbers decode to int64 and other numbers to float64.
//
// # Where expressions
//
// Filters are SQL-like strings parsed once by [ParseWhere] and translated by each
// engine:
//
//	expr, err := vectordb.ParseWhere("category = 'news' AND year >= 2020")
//	if err != nil {
//	    // err wraps ErrInvalidFilter
//	}
//
// # Errors
//
// Engines wrap the sentinel errors ([ErrTableNotFound], [ErrIndexMissing], ...) with
// a human readable message. Use the Is* helpers to branch:
//
//	if _, err := db.OpenTable(ctx, "docs"); vectordb.IsTableNotFound(err) {
//	    // create the table
//	}
//
// # Testing
//
// [MockService] is a gomock mock of [Service]:
//
//	ctrl := gomock.NewController(t)
//	db := vectordb.NewMockService(ctrl)
//	db.EXPECT().Scan(gomock.Any(), "docs").Return(nil, nil)
package vectordb
