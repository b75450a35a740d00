// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline stages counted by PipelineItemsTotal.
const (
	StageFetched          = "fetched"
	StageDuplicate        = "duplicate"
	StageAlreadyPublished = "already_published"
	StageProcessed        = "processed"
	StageFailed           = "failed"
)

// Feed metrics track source fetching
var (
	// FeedsFetchedTotal counts feed fetches by source kind and result
	FeedsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feeds_fetched_total",
			Help: "Total number of feed fetches",
		},
		[]string{"kind", "result"}, // result: success, failure
	)

	// FeedFetchDuration measures time to fetch and parse one feed
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time taken to fetch and parse a feed",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"kind"},
	)
)

// Pipeline metrics track items through a run
var (
	// PipelineItemsTotal counts feed items per pipeline stage
	PipelineItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_items_total",
			Help: "Total number of feed items seen per pipeline stage",
		},
		[]string{"stage"},
	)

	// PipelineRunDuration measures a full pipeline run
	PipelineRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_seconds",
			Help:    "Time taken by a full pipeline run",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
		[]string{"status"},
	)

	// StoryPipelineDuration measures building, sanitizing and packaging one story
	StoryPipelineDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pipeline_item_duration_seconds",
			Help:    "Time taken to turn one feed item into a packaged post",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		},
	)

	// PackagesWrittenTotal counts output folders written
	PackagesWrittenTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "packages_written_total",
			Help: "Total number of card news output folders written",
		},
	)

	// CautionAppliedTotal counts stories that received the caution prefix
	CautionAppliedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "safety_caution_applied_total",
			Help: "Total number of stories prefixed with a reporting caution",
		},
	)
)

// Content fetch metrics track full-text enhancement
var (
	// ContentFetchAttemptsTotal counts content fetch attempts by result
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure, skipped
	)

	// ContentFetchDuration measures time to fetch article content
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch article content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// ContentFetchSize measures fetched article text in runes
	ContentFetchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_size_runes",
			Help:    "Fetched article text length in runes",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10),
		},
	)
)

// Storage and delivery metrics
var (
	// HistoryOperationsTotal counts publish history operations
	HistoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_operations_total",
			Help: "Total number of publish history operations",
		},
		[]string{"operation", "result"},
	)

	// PublishedEventsTotal counts story events sent to publishers
	PublishedEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "story_events_published_total",
			Help: "Total number of story events sent to publishers",
		},
		[]string{"publisher", "result"},
	)
)

// Resilience metrics
var (
	// CircuitBreakerState reports each breaker's state: 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"circuit"},
	)

	// RetryAttemptsTotal counts retried calls by outcome
	RetryAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts after a failed call",
		},
		[]string{"operation"},
	)
)
