package observability

import "time"

// Observer receives a notification after every instrumented operation.
// Implementations must be safe for concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// OperationContext describes a completed operation.
type OperationContext struct {
	// Component is the emitting package, for example "sqlite", "qdrant", "minio" or "repository".
	Component string

	// Operation is the operation name, for example "search" or "create_table".
	Operation string

	// Resource is the primary resource (a table, collection or bucket).
	Resource string

	// SubResource is an optional secondary resource (a column or object key).
	SubResource string

	// Duration is the wall time of the operation.
	Duration time.Duration

	// Error is the returned error, nil on success.
	Error error

	// Size is the number of rows or bytes involved, when known.
	Size int64

	// Metadata carries operation-specific details.
	Metadata map[string]interface{}
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx OperationContext)

// ObserveOperation calls f(ctx).
func (f ObserverFunc) ObserveOperation(ctx OperationContext) {
	f(ctx)
}

// Multi fans a notification out to several observers. Nil observers are skipped.
func Multi(observers ...Observer) Observer {
	var out multiObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	return out
}

type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}
