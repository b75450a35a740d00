// Package tracing exposes the OpenTelemetry tracer for the card news pipeline.
//
// The pipeline opens a "pipeline.Run" span per run and a "pipeline.ProcessItem"
// span per feed item. No exporter is installed here; with the default global
// provider spans are no-ops until the binary registers one.
//
//	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.Run")
//	defer span.End()
package tracing
