// Package qdrant provides the remote vector database engine on top of Qdrant.
//
// The package offers a clean, testable abstraction over the official Go client:
// QdrantClient owns the gRPC connection, and Adapter implements the
// database-agnostic [vectordb.Service] interface so the HTTP layer runs unchanged
// against Qdrant or the embedded SQLite engine.
//
// # Core Features
//
//   - Managed Qdrant client lifecycle with Fx integration
//   - Automatic health check on client initialization
//   - One collection per table, vector fields stored as named vectors (Euclid)
//   - Batched upserts with bounded concurrency
//   - Where expressions translated into Qdrant payload filters
//   - Full-text search over payload text indexes
//   - Vector index options mapped onto HNSW and quantization settings
//
// # Basic Usage
//
//	qc, err := qdrant.NewQdrantClient(qdrant.FromEndpoint("localhost").WithPort(6334), log)
//	if err != nil {
//	    return err
//	}
//	defer qc.Close()
//
//	var db vectordb.Service = qdrant.NewAdapter(qc.Client()).WithLogger(log)
//
//	_, err = db.CreateTable(ctx, vectordb.CreateTableRequest{
//	    Name: "docs",
//	    Data: []vectordb.Row{
//	        vectordb.NewRow(vectordb.Pair{Key: "text", Value: "hello"}, vectordb.Pair{Key: "vector", Value: []float32{0.1, 0.2}}),
//	    },
//	})
//
//	rows, err := db.Search(ctx, vectordb.SearchRequest{
//	    Table:  "docs",
//	    Vector: []float32{0.1, 0.2},
//	    Limit:  10,
//	    Where:  "text = 'hello'",
//	})
//
// # Storage Layout
//
// Table schemas and index settings are kept in the reserved "_vectordb_tables"
// collection, one point per table. Every data point carries a hidden
// "_vectordb_seq" payload key recording insertion order, which Scan sorts by.
// Missing fields are stored as explicit nulls so that IS NULL filters match them.
//
// # Distances and Scores
//
// Qdrant reports the Euclid distance as the score; the adapter squares it so that
// _distance agrees with the embedded engine. Full-text hits are scored by the
// number of distinct query terms found in the indexed fields.
//
// # Filter Translation
//
//   - "=" and IN become keyword, integer or bool matches (floats use a closed range)
//   - "<", "<=", ">", ">=" become Range conditions
//   - "!=" and NOT IN wrap the match in MustNot
//   - IS NULL becomes IsNull
//   - AND, OR and NOT become nested filters
//   - LIKE is rejected with vectordb.ErrInvalidFilter
//
// # FX Module Integration
//
//	app := fx.New(
//	    qdrant.FXModule, // Provides *QdrantClient, *Adapter and vectordb.Service
//	    fx.Provide(func() *qdrant.Config {
//	        return qdrant.FromEndpoint("localhost")
//	    }),
//	)
//
// # Thread Safety
//
// Adapter methods are safe for concurrent use. Qdrant itself does not offer
// multi-request transactions, so CreateTable in overwrite mode is not atomic.
package qdrant
