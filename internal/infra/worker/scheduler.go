package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrJobRunning is returned by RunOnce when the previous run has not finished.
var ErrJobRunning = errors.New("job already running")

// RunFunc performs one card-news run and returns the number of posts generated.
type RunFunc func(ctx context.Context) (int, error)

// Scheduler runs a RunFunc on a cron schedule. Runs never overlap: a trigger
// that fires while a run is in progress is skipped.
type Scheduler struct {
	cfg     Config
	run     RunFunc
	metrics *Metrics
	logger  *slog.Logger
	cron    *cron.Cron

	running atomic.Bool
	baseCtx context.Context
}

// NewScheduler validates the schedule and timezone and prepares the cron.
// metrics may be nil.
func NewScheduler(cfg Config, run RunFunc, metrics *Metrics, logger *slog.Logger) (*Scheduler, error) {
	if run == nil {
		return nil, errors.New("run func is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelWarn))
	s := &Scheduler{
		cfg:     cfg,
		run:     run,
		metrics: metrics,
		logger:  logger,
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.Recover(cronLogger))),
		baseCtx: context.Background(),
	}

	if _, err := s.cron.AddFunc(cfg.CronSchedule, func() { _ = s.RunOnce(s.baseCtx) }); err != nil {
		return nil, fmt.Errorf("add cron job %q: %w", cfg.CronSchedule, err)
	}
	return s, nil
}

// Start begins scheduling. Runs derive their context from ctx, so cancelling
// it aborts an in-flight run. With RunOnStart one run is triggered right away.
func (s *Scheduler) Start(ctx context.Context) {
	s.baseCtx = ctx
	s.cron.Start()
	s.logger.Info("worker scheduler started",
		slog.String("schedule", s.cfg.CronSchedule),
		slog.String("timezone", s.cfg.Timezone))

	if s.cfg.RunOnStart {
		go func() { _ = s.RunOnce(ctx) }()
	}
}

// Stop stops the cron and returns a context that is done once running jobs
// triggered by cron have completed.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next returns the next scheduled activation, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunOnce executes one run bounded by the configured timeout.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Warn("previous run still in progress, skipping")
		if s.metrics != nil {
			s.metrics.recordRun(StatusSkipped)
		}
		return ErrJobRunning
	}
	defer s.running.Store(false)

	if s.metrics != nil {
		s.metrics.recordRun(StatusStarted)
	}
	start := time.Now()
	s.logger.Info("card news run started")

	runCtx, cancel := context.WithTimeout(ctx, s.cfg.RunTimeout)
	defer cancel()

	posts, err := s.run(runCtx)
	elapsed := time.Since(start)
	if err != nil {
		if s.metrics != nil {
			s.metrics.recordFailure(elapsed.Seconds())
		}
		s.logger.Error("card news run failed",
			slog.Duration("duration", elapsed),
			slog.Any("error", err))
		return err
	}

	if s.metrics != nil {
		s.metrics.recordSuccess(elapsed.Seconds(), posts)
	}
	s.logger.Info("card news run completed",
		slog.Int("posts", posts),
		slog.Duration("duration", elapsed))
	return nil
}
