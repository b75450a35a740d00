package worker

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"card-news/internal/pkg/config"
)

// Config controls the scheduled card-news worker.
type Config struct {
	// CronSchedule is a five-field cron expression. Default "0 9,18 * * *".
	CronSchedule string

	// Timezone is the IANA zone the schedule is evaluated in. Default "Asia/Seoul".
	Timezone string

	// NotifyMaxConcurrent bounds concurrent notification sends (1-50).
	NotifyMaxConcurrent int

	// RunTimeout caps a single pipeline run (1m-4h).
	RunTimeout time.Duration

	// HealthPort serves /health and /health/ready.
	HealthPort int

	// MetricsPort serves /metrics and /health/channels.
	MetricsPort int

	// RunOnStart triggers one run as soon as the worker starts.
	RunOnStart bool
}

// DefaultConfig returns the worker defaults: two runs a day, Seoul time.
func DefaultConfig() Config {
	return Config{
		CronSchedule:        "0 9,18 * * *",
		Timezone:            "Asia/Seoul",
		NotifyMaxConcurrent: 10,
		RunTimeout:          30 * time.Minute,
		HealthPort:          9091,
		MetricsPort:         9090,
		RunOnStart:          true,
	}
}

// Validate returns every invalid field joined into one error.
func (c Config) Validate() error {
	var errs []error
	if err := config.ValidateCronSchedule(c.CronSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cron schedule: %w", err))
	}
	if err := config.ValidateTimezone(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	if err := config.ValidateIntRange(c.NotifyMaxConcurrent, 1, 50); err != nil {
		errs = append(errs, fmt.Errorf("notify max concurrent: %w", err))
	}
	if err := config.ValidateDuration(c.RunTimeout, time.Minute, 4*time.Hour); err != nil {
		errs = append(errs, fmt.Errorf("run timeout: %w", err))
	}
	if err := config.ValidatePort(c.HealthPort); err != nil {
		errs = append(errs, fmt.Errorf("health port: %w", err))
	}
	if err := config.ValidatePort(c.MetricsPort); err != nil {
		errs = append(errs, fmt.Errorf("metrics port: %w", err))
	}
	if c.HealthPort == c.MetricsPort {
		errs = append(errs, fmt.Errorf("health port and metrics port must differ (both %d)", c.HealthPort))
	}
	return errors.Join(errs...)
}

// LoadConfigFromEnv reads the worker configuration. It never fails: an invalid
// variable falls back to its default, is logged, and is counted on metrics.
//
// Environment variables:
//   - CRON_SCHEDULE
//   - WORKER_TIMEZONE
//   - NOTIFY_MAX_CONCURRENT
//   - RUN_TIMEOUT
//   - WORKER_HEALTH_PORT
//   - METRICS_PORT
//   - WORKER_RUN_ON_START
func LoadConfigFromEnv(logger *slog.Logger, metrics *Metrics) Config {
	var cm *config.Metrics
	if metrics != nil {
		cm = metrics.Config
	}
	tr := config.NewTracker(cm, logger)
	def := DefaultConfig()

	cfg := Config{
		CronSchedule:        config.Use(tr, "cron_schedule", config.LoadString("CRON_SCHEDULE", def.CronSchedule, config.ValidateCronSchedule)),
		Timezone:            config.Use(tr, "timezone", config.LoadString("WORKER_TIMEZONE", def.Timezone, config.ValidateTimezone)),
		NotifyMaxConcurrent: config.Use(tr, "notify_max_concurrent", config.LoadInt("NOTIFY_MAX_CONCURRENT", def.NotifyMaxConcurrent, config.IntRange(1, 50))),
		RunTimeout:          config.Use(tr, "run_timeout", config.LoadDuration("RUN_TIMEOUT", def.RunTimeout, config.DurationRange(time.Minute, 4*time.Hour))),
		HealthPort:          config.Use(tr, "health_port", config.LoadInt("WORKER_HEALTH_PORT", def.HealthPort, config.ValidatePort)),
		MetricsPort:         config.Use(tr, "metrics_port", config.LoadInt("METRICS_PORT", def.MetricsPort, config.ValidatePort)),
		RunOnStart:          config.Use(tr, "run_on_start", config.LoadBool("WORKER_RUN_ON_START", def.RunOnStart)),
	}
	tr.Done()

	return cfg
}
