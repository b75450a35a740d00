package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies spans created by this application.
const TracerName = "card-news"

// GetTracer returns the tracer from the current global provider.
// It is resolved on every call so providers installed later (tests, main) take effect.
func GetTracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
