package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"card-news/internal/pkg/config"
)

// Job run statuses.
const (
	StatusStarted = "started"
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Metrics are the worker's scheduling metrics plus its config-load metrics.
type Metrics struct {
	Config *config.Metrics

	JobRunsTotal         *prometheus.CounterVec
	JobDurationSeconds   prometheus.Histogram
	PostsGeneratedTotal  prometheus.Counter
	LastSuccessTimestamp prometheus.Gauge
}

// NewMetrics registers the worker metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Config: config.NewMetrics("worker", reg),

		JobRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total card-news job runs by status",
		}, []string{"status"}),

		JobDurationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of card-news job runs in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		PostsGeneratedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "worker_posts_generated_total",
			Help: "Total card-news posts generated by scheduled runs",
		}),

		LastSuccessTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful job run",
		}),
	}
}

func (m *Metrics) recordRun(status string) {
	m.JobRunsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) recordSuccess(seconds float64, posts int) {
	m.recordRun(StatusSuccess)
	m.JobDurationSeconds.Observe(seconds)
	m.PostsGeneratedTotal.Add(float64(posts))
	m.LastSuccessTimestamp.SetToCurrentTime()
}

func (m *Metrics) recordFailure(seconds float64) {
	m.recordRun(StatusFailure)
	m.JobDurationSeconds.Observe(seconds)
}
