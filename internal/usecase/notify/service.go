package notify

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"card-news/internal/domain/entity"
	"card-news/internal/observability/logging"
)

// Circuit breaker constants
const (
	circuitBreakerThreshold = 5                // Number of consecutive failures before opening
	circuitBreakerTimeout   = 5 * time.Minute  // Duration to keep circuit breaker open
	workerPoolTimeout       = 5 * time.Second  // Timeout for acquiring worker slot
	notificationTimeout     = 30 * time.Second // Timeout for individual notification
)

// Service dispatches post announcements to every enabled channel.
type Service interface {
	// NotifyNewPost announces a packaged post on all enabled channels.
	//
	// This method is non-blocking and returns immediately. Each channel is
	// sent to in a background goroutine; failures are logged and counted but
	// never returned to the caller.
	//
	// Parameters:
	//   - ctx: Context carrying the run logger (not propagated to goroutines)
	//   - post: The packaged post (nil is ignored)
	//
	// Returns:
	//   - nil (always succeeds, errors are handled internally)
	NotifyNewPost(ctx context.Context, post *entity.Post) error

	// GetChannelHealth returns the circuit state of every channel.
	GetChannelHealth() []ChannelHealthStatus

	// Shutdown cancels in-flight sends and waits for their goroutines,
	// up to the context deadline.
	Shutdown(ctx context.Context) error
}

// ChannelHealthStatus represents the health status of a notification channel.
type ChannelHealthStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	CircuitBreakerOpen bool       `json:"circuit_breaker_open"`
	DisabledUntil      *time.Time `json:"disabled_until,omitempty"`
}

type service struct {
	channels       []Channel
	workerPool     chan struct{}             // Semaphore for limiting concurrent notifications
	channelHealth  map[string]*channelHealth // Circuit breaker state per channel
	wg             sync.WaitGroup
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	now            func() time.Time
}

// channelHealth tracks circuit breaker state for a channel
type channelHealth struct {
	mu                  sync.Mutex
	consecutiveFailures int
	disabledUntil       time.Time
}

// NewService creates a new notification service with the given channels.
//
// Parameters:
//   - channels: Notification channels (Slack, Discord)
//   - maxConcurrent: Maximum concurrent sends across all channels
//
// Returns:
//   - Service: Configured notification service
func NewService(channels []Channel, maxConcurrent int) Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	svc := &service{
		channels:       channels,
		workerPool:     make(chan struct{}, maxConcurrent),
		channelHealth:  make(map[string]*channelHealth, len(channels)),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
		now:            time.Now,
	}

	enabled := 0
	for _, ch := range channels {
		svc.channelHealth[ch.Name()] = &channelHealth{}
		if ch.IsEnabled() {
			enabled++
		}
	}
	enabledChannels.Set(float64(enabled))

	return svc
}

// NotifyNewPost implements Service.NotifyNewPost.
func (s *service) NotifyNewPost(ctx context.Context, post *entity.Post) error {
	logger := logging.FromContext(ctx)

	if post == nil {
		logger.Warn("ignoring notification for nil post")
		return nil
	}

	var enabled []Channel
	for _, ch := range s.channels {
		if ch.IsEnabled() {
			enabled = append(enabled, ch)
		}
	}
	if len(enabled) == 0 {
		logger.Debug("no notification channels enabled",
			slog.String("output_dir", post.OutputDir))
		return nil
	}

	logger.Info("dispatching post notification",
		slog.String("output_dir", post.OutputDir),
		slog.String("url", post.Story.SourceURL),
		slog.Int("enabled_channels", len(enabled)))

	for _, ch := range enabled {
		s.wg.Add(1)
		go s.notifyChannel(logger, ch, post)
	}

	return nil
}

// notifyChannel sends one post to one channel. It runs in its own goroutine.
func (s *service) notifyChannel(logger *slog.Logger, channel Channel, post *entity.Post) {
	defer s.wg.Done()

	inFlightSends.Inc()
	defer inFlightSends.Dec()

	logger = logger.With(slog.String("channel", channel.Name()))

	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in notification channel",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	timer := time.NewTimer(workerPoolTimeout)
	defer timer.Stop()
	select {
	case s.workerPool <- struct{}{}:
		defer func() { <-s.workerPool }()
	case <-timer.C:
		logger.Warn("notification dropped: worker pool full")
		recordDropped(channel.Name(), dropPoolFull)
		return
	}

	health := s.channelHealth[channel.Name()]
	if until, open := s.circuitOpen(health); open {
		logger.Warn("channel temporarily disabled due to circuit breaker",
			slog.Time("disabled_until", until))
		recordDropped(channel.Name(), dropCircuitOpen)
		return
	}

	ctx, cancel := context.WithTimeout(s.shutdownCtx, notificationTimeout)
	defer cancel()

	start := time.Now()
	err := channel.Send(ctx, post)
	duration := time.Since(start)

	recordSend(channel.Name(), duration, err)
	s.recordResult(logger, channel.Name(), health, err)

	if err != nil {
		logger.Warn("channel notification failed",
			slog.String("output_dir", post.OutputDir),
			slog.String("url", post.Story.SourceURL),
			slog.Duration("send_duration", duration),
			slog.Any("error", err))
		return
	}
	logger.Info("channel notification sent",
		slog.String("title", post.Story.HookTitle),
		slog.Duration("send_duration", duration))
}

func (s *service) circuitOpen(health *channelHealth) (time.Time, bool) {
	health.mu.Lock()
	defer health.mu.Unlock()
	return health.disabledUntil, s.now().Before(health.disabledUntil)
}

// recordResult updates the consecutive failure count. The threshold-th failure
// in a row disables the channel for circuitBreakerTimeout.
func (s *service) recordResult(logger *slog.Logger, name string, health *channelHealth, err error) {
	health.mu.Lock()
	defer health.mu.Unlock()

	if err == nil {
		health.consecutiveFailures = 0
		return
	}

	health.consecutiveFailures++
	if health.consecutiveFailures >= circuitBreakerThreshold {
		health.disabledUntil = s.now().Add(circuitBreakerTimeout)
		health.consecutiveFailures = 0
		logger.Error("circuit breaker opened for channel",
			slog.Int("threshold", circuitBreakerThreshold),
			slog.Time("disabled_until", health.disabledUntil))
		recordCircuitOpened(name)
	}
}

// GetChannelHealth implements Service.GetChannelHealth.
func (s *service) GetChannelHealth() []ChannelHealthStatus {
	statuses := make([]ChannelHealthStatus, 0, len(s.channels))

	for _, ch := range s.channels {
		status := ChannelHealthStatus{Name: ch.Name(), Enabled: ch.IsEnabled()}
		if until, open := s.circuitOpen(s.channelHealth[ch.Name()]); open {
			status.CircuitBreakerOpen = true
			status.DisabledUntil = &until
		}
		statuses = append(statuses, status)
	}

	return statuses
}

// Shutdown implements Service.Shutdown.
func (s *service) Shutdown(ctx context.Context) error {
	slog.Info("shutting down notification service")

	s.shutdownCancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("notification service shutdown complete")
		return nil
	case <-ctx.Done():
		slog.Warn("notification service shutdown timeout")
		return ctx.Err()
	}
}
