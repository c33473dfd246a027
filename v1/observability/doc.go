// Package observability defines the operation hook shared by the engine adapters,
// the snapshot store and the repository façade.
//
// Components call Observer.ObserveOperation once per completed operation with an
// OperationContext (component, operation, resource, duration, error, size).
// MetricsObserver converts the notifications into Prometheus metrics and
// LoggingObserver into debug log entries; Multi combines several observers.
//
//	obs := observability.Multi(
//	    observability.NewMetricsObserver(m),
//	    observability.NewLoggingObserver(log),
//	)
//	engine = engine.WithObserver(obs)
package observability
