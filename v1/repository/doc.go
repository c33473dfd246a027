// Package repository is the façade the HTTP layer calls.
//
// A Repository wraps one vectordb.Service and forwards every request almost
// unchanged: it fills in the default limit, parses the create mode and wraps
// each call in a repository.<operation> span, a debug log entry and an
// observability notification (component "repository").
//
// Basic usage:
//
//	repo := repository.NewRepository(engine).
//		WithTracer(t).
//		WithLogger(log).
//		WithObserver(obs)
//
//	rows, err := repo.Search(ctx, repository.SearchQuery{
//		Table:  "chunks",
//		Vector: []float32{0.1, 0.2},
//		Where:  "source = 'wiki'",
//		Limit:  repository.DefaultLimit,
//	})
//
// Errors come straight from the engine, so callers branch with the
// vectordb.Is* helpers (vectordb.IsTableNotFound for the insert-or-create flow).
package repository
