package config

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks configuration loads for one component:
//
//   - {component}_config_load_timestamp: Unix time of the last load
//   - {component}_config_validation_errors_total{field}
//   - {component}_config_fallbacks_total{field,reason}
//   - {component}_config_fallback_active: 1 while any field runs on its default
type Metrics struct {
	LoadTimestamp         prometheus.Gauge
	ValidationErrorsTotal *prometheus.CounterVec
	FallbacksTotal        *prometheus.CounterVec
	FallbackActive        prometheus.Gauge
}

// NewMetrics registers the config metrics for component on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(component string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		LoadTimestamp: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_load_timestamp",
			Help: "Unix timestamp of the last configuration load",
		}),
		ValidationErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_validation_errors_total",
			Help: "Total configuration validation errors by field",
		}, []string{"field"}),
		FallbacksTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: component + "_config_fallbacks_total",
			Help: "Total configuration fallbacks by field",
		}, []string{"field", "reason"}),
		FallbackActive: f.NewGauge(prometheus.GaugeOpts{
			Name: component + "_config_fallback_active",
			Help: "1 if any configuration field fell back to its default",
		}),
	}
}

// Tracker collects the outcome of several loads and reports fallbacks.
// A nil Metrics or logger is allowed.
type Tracker struct {
	metrics  *Metrics
	logger   *slog.Logger
	fellBack bool
}

// NewTracker returns a Tracker that logs fallbacks to logger and counts them
// on m.
func NewTracker(m *Metrics, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{metrics: m, logger: logger}
}

// Use returns r.Value, recording a fallback under field when one happened.
func Use[T any](t *Tracker, field string, r Result[T]) T {
	if r.FallbackApplied {
		t.fellBack = true
		t.logger.Warn("configuration fallback applied",
			slog.String("field", field),
			slog.String("env_key", r.Key),
			slog.String("warning", r.Warning))
		if t.metrics != nil {
			t.metrics.ValidationErrorsTotal.WithLabelValues(field).Inc()
			t.metrics.FallbacksTotal.WithLabelValues(field, "default").Inc()
		}
	}
	return r.Value
}

// Done publishes the load timestamp and the fallback-active gauge.
// It reports whether any field fell back.
func (t *Tracker) Done() bool {
	if t.metrics != nil {
		t.metrics.LoadTimestamp.SetToCurrentTime()
		if t.fellBack {
			t.metrics.FallbackActive.Set(1)
		} else {
			t.metrics.FallbackActive.Set(0)
		}
	}
	return t.fellBack
}
