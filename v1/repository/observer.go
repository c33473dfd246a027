package repository

import (
	"time"

	"github.com/Aleph-Alpha/vectordb-api/v1/observability"
)

func (r *Repository) observeOperation(operation, table string, duration time.Duration, err error, size int64, metadata map[string]interface{}) {
	if r == nil || r.observer == nil {
		return
	}

	r.observer.ObserveOperation(observability.OperationContext{
		Component: "repository",
		Operation: operation,
		Resource:  table,
		Duration:  duration,
		Error:     err,
		Size:      size,
		Metadata:  metadata,
	})
}
