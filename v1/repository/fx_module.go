package repository

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
	"github.com/Aleph-Alpha/vectordb-api/v1/tracer"
	"github.com/Aleph-Alpha/vectordb-api/v1/vectordb"
)

// FXModule provides *Repository on top of whichever vectordb.Service the
// application wires in.
//
// Dependencies required by this module:
// - A vectordb.Service (sqlite.FXModule or qdrant.FXModule provide one)
// - *tracer.Tracer, Logger and observability.Observer are optional
var FXModule = fx.Module("repository",
	fx.Provide(NewRepositoryWithDI),
)

// RepositoryParams groups the dependencies of NewRepositoryWithDI.
type RepositoryParams struct {
	fx.In

	Engine   vectordb.Service
	Tracer   *tracer.Tracer         `optional:"true"`
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewRepositoryWithDI creates a Repository with injected dependencies.
func NewRepositoryWithDI(p RepositoryParams) *Repository {
	repo := NewRepository(p.Engine).WithLogger(p.Logger).WithObserver(p.Observer)
	if p.Tracer != nil {
		repo.WithTracer(p.Tracer)
	}
	return repo
}
