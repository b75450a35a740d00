// Package metrics provides the Prometheus metrics of the card news pipeline.
//
// Metrics are registered with the default registry through promauto and are
// exposed by the worker's /metrics endpoint. Callers use the Record* helpers
// rather than touching the collectors directly.
//
// Example usage:
//
//	start := time.Now()
//	items, err := router.Fetch(ctx, src)
//	metrics.RecordFeedFetch(src.SourceKind(), time.Since(start), err)
//	metrics.RecordPipelineItems(metrics.StageFetched, len(items))
package metrics
