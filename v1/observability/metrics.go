package observability

import "time"

// OperationRecorder is the subset of metrics.MetricsCollector used by MetricsObserver.
type OperationRecorder interface {
	RecordOperation(component, operation string, duration time.Duration, err error)
}

// MetricsObserver turns operation notifications into Prometheus operation metrics.
type MetricsObserver struct {
	recorder OperationRecorder
}

// NewMetricsObserver creates an observer that records every operation with recorder.
func NewMetricsObserver(recorder OperationRecorder) *MetricsObserver {
	return &MetricsObserver{recorder: recorder}
}

// ObserveOperation implements Observer.
func (o *MetricsObserver) ObserveOperation(ctx OperationContext) {
	if o == nil || o.recorder == nil {
		return
	}
	o.recorder.RecordOperation(ctx.Component, ctx.Operation, ctx.Duration, ctx.Error)
}
