package summarizer

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoryMetricsRecorder defines the interface for recording story-building metrics.
// This interface abstracts the metrics implementation, enabling:
//   - Mocking in unit tests (inject a recording fake instead of Prometheus)
//   - Running the heuristics without any metrics backend (NoopStoryMetrics)
//
// Example usage:
//
//	h := summarizer.NewHeuristic(summarizer.NewPrometheusStoryMetrics())
//	story := h.BuildStory(item)
type StoryMetricsRecorder interface {
	// RecordFieldLength records the rune length of a generated story field.
	RecordFieldLength(field string, length int)

	// RecordSentences records how many usable sentences the input produced.
	RecordSentences(count int)

	// RecordFallback increments the counter when a slot used its fallback strategy.
	RecordFallback(slot string)

	// RecordDuration records the time taken to build one story.
	RecordDuration(duration time.Duration)
}

// PrometheusStoryMetrics implements StoryMetricsRecorder using Prometheus metrics.
type PrometheusStoryMetrics struct {
	fieldLength       *prometheus.HistogramVec
	sentenceHistogram prometheus.Histogram
	fallbackCounter   *prometheus.CounterVec
	durationHistogram prometheus.Histogram
}

var (
	prometheusMetricsInstance *PrometheusStoryMetrics
	prometheusMetricsOnce     sync.Once
)

// getOrCreateHistogram gets an existing histogram or creates a new one if it doesn't exist
func getOrCreateHistogram(opts prometheus.HistogramOpts) prometheus.Histogram {
	h := prometheus.NewHistogram(opts)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(prometheus.Histogram)
		}
		return promauto.NewHistogram(opts)
	}
	return h
}

// getOrCreateHistogramVec gets an existing histogram vector or creates a new one
func getOrCreateHistogramVec(opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	h := prometheus.NewHistogramVec(opts, labels)
	if err := prometheus.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.HistogramVec)
		}
		return promauto.NewHistogramVec(opts, labels)
	}
	return h
}

// getOrCreateCounterVec gets an existing counter vector or creates a new one
func getOrCreateCounterVec(opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(opts, labels)
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(*prometheus.CounterVec)
		}
		return promauto.NewCounterVec(opts, labels)
	}
	return c
}

// NewPrometheusStoryMetrics creates a Prometheus-based metrics recorder.
// Uses singleton pattern to avoid duplicate metric registration in tests.
func NewPrometheusStoryMetrics() *PrometheusStoryMetrics {
	prometheusMetricsOnce.Do(func() {
		prometheusMetricsInstance = &PrometheusStoryMetrics{
			fieldLength: getOrCreateHistogramVec(prometheus.HistogramOpts{
				Name:    "story_field_length_runes",
				Help:    "Distribution of story field lengths in Unicode runes",
				Buckets: []float64{20, 60, 120, 200, 300, 400, 500},
			}, []string{"field"}),
			sentenceHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "story_input_sentences",
				Help:    "Number of usable sentences extracted from a feed item",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32, 64},
			}),
			fallbackCounter: getOrCreateCounterVec(prometheus.CounterOpts{
				Name: "story_slot_fallback_total",
				Help: "Total number of story slots filled by their fallback strategy",
			}, []string{"slot"}),
			durationHistogram: getOrCreateHistogram(prometheus.HistogramOpts{
				Name:    "story_build_duration_seconds",
				Help:    "Time taken to build a story from a feed item",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
			}),
		}
	})
	return prometheusMetricsInstance
}

// RecordFieldLength implements StoryMetricsRecorder.RecordFieldLength
func (p *PrometheusStoryMetrics) RecordFieldLength(field string, length int) {
	p.fieldLength.WithLabelValues(field).Observe(float64(length))
}

// RecordSentences implements StoryMetricsRecorder.RecordSentences
func (p *PrometheusStoryMetrics) RecordSentences(count int) {
	p.sentenceHistogram.Observe(float64(count))
}

// RecordFallback implements StoryMetricsRecorder.RecordFallback
func (p *PrometheusStoryMetrics) RecordFallback(slot string) {
	p.fallbackCounter.WithLabelValues(slot).Inc()
}

// RecordDuration implements StoryMetricsRecorder.RecordDuration
func (p *PrometheusStoryMetrics) RecordDuration(duration time.Duration) {
	p.durationHistogram.Observe(duration.Seconds())
}

// NoopStoryMetrics discards every measurement.
type NoopStoryMetrics struct{}

func (NoopStoryMetrics) RecordFieldLength(string, int) {}
func (NoopStoryMetrics) RecordSentences(int)           {}
func (NoopStoryMetrics) RecordFallback(string)         {}
func (NoopStoryMetrics) RecordDuration(time.Duration)  {}
