package observability

import "go.uber.org/fx"

// FXModule provides an Observer that records operation metrics and, when a
// Logger is available, writes a debug entry per operation.
//
// Dependencies required by this module:
// - An OperationRecorder (metrics.MetricsCollector satisfies it)
// - A Logger is optional
var FXModule = fx.Module("observability",
	fx.Provide(NewObserverWithDI),
)

// ObserverParams groups the dependencies of NewObserverWithDI.
type ObserverParams struct {
	fx.In

	Recorder OperationRecorder `optional:"true"`
	Logger   Logger            `optional:"true"`
}

// NewObserverWithDI combines the metrics and logging observers.
func NewObserverWithDI(p ObserverParams) Observer {
	var observers []Observer
	if p.Recorder != nil {
		observers = append(observers, NewMetricsObserver(p.Recorder))
	}
	if p.Logger != nil {
		observers = append(observers, NewLoggingObserver(p.Logger))
	}
	return Multi(observers...)
}
