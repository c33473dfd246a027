// Package sqlite implements vectordb.Service on an embedded SQLite database
// (modernc.org/sqlite, no cgo).
//
// Every vectordb table is a SQLite table. Vectors are stored as little-endian
// float32 BLOBs and compared with the scalar functions vdb_l2, vdb_cosine and
// vdb_dot, which are registered with the driver once per process. Search is an
// exact scan ordered by distance. Vector index options are validated and stored;
// their metric applies to later searches on the column.
//
// Full-text indexes are FTS5 external-content tables named with the reserved
// "_vectordb" prefix. An insert trigger keeps them current and results are ranked
// by bm25.
//
// # Usage
//
//	engine, err := sqlite.NewEngine(ctx, sqlite.Config{Path: "/data/vectordb.sqlite"}, snapshotter)
//	if err != nil {
//		return err
//	}
//	defer engine.Close()
//
//	rows, err := engine.Search(ctx, vectordb.SearchRequest{
//		Table:  "chunks",
//		Vector: []float32{0.1, 0.2},
//		Limit:  10,
//		Where:  "kind = 'doc'",
//	})
//
// # Snapshots
//
// A Snapshotter (see the minio package) makes a file-backed database durable
// beyond the local disk: the latest snapshot is restored before the file is opened
// and a new one is written with VACUUM INTO after every mutation and on Close.
// In-memory databases never snapshot.
//
// # Concurrency
//
// The engine uses a single connection. Mutations and their snapshot are
// serialised by a mutex; reads queue on the connection pool.
package sqlite
