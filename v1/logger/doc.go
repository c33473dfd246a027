// Package logger provides structured logging for the vector database API.
//
// The package wraps Uber's zap with a small, map-based API that the rest of the
// module logs through, plus context-aware variants that correlate log entries
// with OpenTelemetry traces.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - Logger interface: Defines the contract for logging operations
//   - LoggerClient struct: Concrete implementation of the Logger interface
//   - NewLoggerClient constructor: Returns *LoggerClient (concrete type)
//   - FX module: Provides both *LoggerClient and Logger interface for dependency injection
//
// Consumers such as the sqlite, minio and qdrant packages declare their own narrow
// Logger interfaces (usually just the *WithContext methods), which *LoggerClient
// satisfies without adapters.
//
// # Direct Usage (Without FX)
//
//	log, err := logger.NewLoggerClient(logger.Config{
//		Level:         "info",
//		EnableTracing: true,
//		ServiceName:   "vectordb-api",
//	})
//	if err != nil {
//		return err
//	}
//
//	log.Info("Table created", nil, map[string]interface{}{
//		"table": "chunks",
//	})
//
//	// Includes trace_id and span_id when ctx carries a span
//	log.InfoWithContext(ctx, "Processing request", nil, map[string]interface{}{
//		"route": "/{table}/search",
//	})
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule, // Provides *LoggerClient and logger.Logger
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: "info"}
//		}),
//	)
//
// # Configuration
//
// The logger can be configured via environment variables:
//
//	ZAP_LOGGER_LEVEL=debug          # Log level (debug, info, warning, error)
//	LOGGER_ENABLE_TRACING=true      # Enable distributed tracing integration
//	SERVICE_NAME=vectordb-api       # Value of the "service" field
//
// # Thread Safety
//
// All methods on the Logger interface are safe for concurrent use by multiple
// goroutines.
package logger
