// Package observability groups logging, metrics and tracing.
//
// Subpackages:
//   - logging: slog construction and context propagation
//   - metrics: Prometheus collectors and Record* helpers
//   - tracing: the OpenTelemetry tracer used for pipeline spans
package observability
