// Package main runs the scheduled card news worker.
//
// The worker generates card news on a cron schedule and exposes two HTTP
// servers: liveness/readiness on WORKER_HEALTH_PORT and Prometheus metrics
// with notification channel health on METRICS_PORT.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"card-news/internal/bootstrap"
	"card-news/internal/config"
	workerPkg "card-news/internal/infra/worker"
	"card-news/internal/observability/logging"
	"card-news/internal/usecase/notify"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", slog.Any("error", err))
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("worker exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Fail-open: invalid values fall back to defaults and are reported via metrics.
	workerMetrics := workerPkg.NewMetrics(prometheus.DefaultRegisterer)
	workerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("notify_max_concurrent", workerConfig.NotifyMaxConcurrent),
		slog.Duration("run_timeout", workerConfig.RunTimeout),
		slog.Int("health_port", workerConfig.HealthPort),
		slog.Int("metrics_port", workerConfig.MetricsPort))

	settings, err := config.LoadSettings(config.Overrides{})
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if len(settings.Feeds) == 0 {
		logger.Warn("no feeds configured, runs will fail until NEWS_RSS_FEEDS or NEWS_FEEDS_FILE is set")
	}

	app, err := bootstrap.Build(ctx, settings, logger, bootstrap.Options{
		NotifyMaxConcurrent: workerConfig.NotifyMaxConcurrent,
	})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}
	defer closeApp(logger, app)

	scheduler, err := workerPkg.NewScheduler(workerConfig, generateJob(app, settings), workerMetrics, logger)
	if err != nil {
		return err
	}

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", workerConfig.HealthPort), logger)
	metricsServer := workerPkg.NewMetricsServer(
		fmt.Sprintf(":%d", workerConfig.MetricsPort),
		prometheus.DefaultGatherer,
		channelHealth(app.Notify),
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.Start(gctx) })
	g.Go(func() error { return metricsServer.Start(gctx) })

	scheduler.Start(gctx)
	healthServer.SetReady(true)
	logger.Info("worker started", slog.Time("next_run", scheduler.Next()))

	<-gctx.Done()
	logger.Info("shutting down worker")
	healthServer.SetReady(false)

	select {
	case <-scheduler.Stop().Done():
	case <-time.After(shutdownTimeout):
		logger.Warn("timed out waiting for running job")
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("worker stopped")
	return nil
}

// generateJob runs the pipeline once and reports the number of posts.
func generateJob(app *bootstrap.App, settings *config.Settings) workerPkg.RunFunc {
	return func(ctx context.Context) (int, error) {
		result, err := app.Pipeline.Run(ctx, bootstrap.RunOptions(settings))
		if err != nil {
			return 0, err
		}
		return len(result.Posts), nil
	}
}

// channelHealth adapts the notification service to the metrics server.
// It returns nil when notifications are disabled.
func channelHealth(svc notify.Service) workerPkg.ChannelHealthFunc {
	if svc == nil {
		return nil
	}
	return func() []workerPkg.ChannelStatus {
		statuses := svc.GetChannelHealth()
		out := make([]workerPkg.ChannelStatus, 0, len(statuses))
		for _, st := range statuses {
			out = append(out, workerPkg.ChannelStatus{
				Name:               st.Name,
				Enabled:            st.Enabled,
				CircuitBreakerOpen: st.CircuitBreakerOpen,
				DisabledUntil:      st.DisabledUntil,
			})
		}
		return out
	}
}

func closeApp(logger *slog.Logger, app *bootstrap.App) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		logger.Error("failed to release resources", slog.Any("error", err))
	}
}
