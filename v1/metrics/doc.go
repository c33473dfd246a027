// Package metrics provides Prometheus-based monitoring and metrics collection
// for the vector database API.
//
// # Architecture
//
// This package follows the "accept interfaces, return structs" design pattern:
//   - MetricsCollector interface: Defines the contract for metrics operations
//   - Metrics struct: Concrete implementation of the MetricsCollector interface
//   - NewMetrics constructor: Returns *Metrics (concrete type)
//   - FX module: Provides both *Metrics and MetricsCollector interface for dependency injection
//
// Core Features:
//   - Exposes a configurable /metrics endpoint for Prometheus scraping
//   - HTTP request counters and latency histograms labelled by route pattern
//   - Operation counters and latency histograms fed by observability.MetricsObserver
//   - Automatic registration of Go runtime and process-level metrics
//   - Graceful startup and shutdown via Fx lifecycle hooks
//
// # Direct Usage (Without FX)
//
//	m := metrics.NewMetrics(metrics.Config{
//		Address:                 ":9090",
//		EnableDefaultCollectors: true,
//		ServiceName:             "vectordb-api",
//	})
//	go m.Server.ListenAndServe()
//
//	m.IncrementRequests("/{table}/search", "POST", "200")
//	defer m.RecordRequestDuration(time.Now(), "/{table}/search", "POST")
//
// # FX Module Integration
//
//	app := fx.New(
//		metrics.FXModule, // Provides *Metrics and MetricsCollector
//		fx.Provide(func() metrics.Config {
//			return metrics.Config{Address: ":9090", ServiceName: "vectordb-api"}
//		}),
//	)
//
// # Configuration
//
//	METRICS_ADDRESS=:9090
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//	METRICS_NAMESPACE=vectordb
//	METRICS_SERVICE_NAME=vectordb-api
//
// # Exposed metrics
//
//	http_requests_total{route, method, status}
//	http_request_duration_seconds{route, method}
//	operations_total{component, operation, status}
//	operation_duration_seconds{component, operation}
//
// Every metric carries the constant service label.
package metrics
