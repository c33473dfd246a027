package observability

import "context"

// Logger is the subset of logger.Logger used by LoggingObserver.
type Logger interface {
	DebugWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// LoggingObserver writes one debug entry per operation.
type LoggingObserver struct {
	logger Logger
}

// NewLoggingObserver creates an observer that logs through logger.
func NewLoggingObserver(logger Logger) *LoggingObserver {
	return &LoggingObserver{logger: logger}
}

// ObserveOperation implements Observer.
func (o *LoggingObserver) ObserveOperation(op OperationContext) {
	if o == nil || o.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"component":   op.Component,
		"operation":   op.Operation,
		"resource":    op.Resource,
		"duration_ms": op.Duration.Milliseconds(),
	}
	if op.SubResource != "" {
		fields["sub_resource"] = op.SubResource
	}
	if op.Size > 0 {
		fields["size"] = op.Size
	}
	for k, v := range op.Metadata {
		fields[k] = v
	}
	o.logger.DebugWithContext(context.Background(), "operation completed", op.Error, fields)
}
