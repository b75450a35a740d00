package worker

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ChannelStatus is the health of one notification channel.
type ChannelStatus struct {
	Name               string     `json:"name"`
	Enabled            bool       `json:"enabled"`
	CircuitBreakerOpen bool       `json:"circuit_breaker_open"`
	DisabledUntil      *time.Time `json:"disabled_until,omitempty"`
}

// ChannelHealthResponse is the body of GET /health/channels.
type ChannelHealthResponse struct {
	Healthy  bool            `json:"healthy"`
	Channels []ChannelStatus `json:"channels"`
}

// ChannelHealthFunc reports the current notification channel health.
type ChannelHealthFunc func() []ChannelStatus

// MetricsServer exposes:
//   - GET /metrics: Prometheus exposition for gatherer
//   - GET /health: liveness
//   - GET /health/channels: 200 when no enabled channel has its circuit open, 503 otherwise
type MetricsServer struct {
	addr     string
	gatherer prometheus.Gatherer
	channels ChannelHealthFunc
	logger   *slog.Logger
}

// NewMetricsServer creates a metrics server. channels may be nil when
// notifications are not configured.
func NewMetricsServer(addr string, gatherer prometheus.Gatherer, channels ChannelHealthFunc, logger *slog.Logger) *MetricsServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsServer{addr: addr, gatherer: gatherer, channels: channels, logger: logger}
}

// Handler returns the metrics and channel health routes.
func (s *MetricsServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, s.logger, http.StatusOK, healthResponse{Status: "healthy"})
	})
	mux.HandleFunc("GET /health/channels", s.handleChannels)
	return mux
}

// Start serves until ctx is cancelled.
func (s *MetricsServer) Start(ctx context.Context) error {
	return serve(ctx, "metrics", s.addr, s.Handler(), s.logger)
}

func (s *MetricsServer) handleChannels(w http.ResponseWriter, r *http.Request) {
	if s.channels == nil {
		writeJSON(w, s.logger, http.StatusServiceUnavailable, map[string]string{
			"error": "notification service not initialized",
		})
		return
	}

	resp := ChannelHealthResponse{Healthy: true, Channels: s.channels()}
	if resp.Channels == nil {
		resp.Channels = []ChannelStatus{}
	}
	for _, ch := range resp.Channels {
		if ch.Enabled && ch.CircuitBreakerOpen {
			resp.Healthy = false
		}
	}

	status := http.StatusOK
	if !resp.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, s.logger, status, resp)
}
