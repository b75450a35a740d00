package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons a post announcement is dropped without being sent.
const (
	dropPoolFull    = "pool_full"
	dropCircuitOpen = "circuit_open"
)

var (
	announcementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_news_notification_sent_total",
			Help: "Post announcements by channel and outcome",
		},
		[]string{"channel", "status"}, // success, failure
	)

	announcementDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "card_news_notification_duration_seconds",
			Help:    "Time spent sending one post announcement",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"channel"},
	)

	announcementsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_news_notification_dropped_total",
			Help: "Post announcements dropped before sending",
		},
		[]string{"channel", "reason"},
	)

	channelCircuitOpened = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "card_news_notification_circuit_breaker_open_total",
			Help: "Times a channel was disabled after consecutive failures",
		},
		[]string{"channel"},
	)

	inFlightSends = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "card_news_notification_active_goroutines",
			Help: "Announcement goroutines currently running",
		},
	)

	enabledChannels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "card_news_notification_channels_enabled",
			Help: "Enabled notification channels",
		},
	)
)

func recordSend(channel string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	announcementsTotal.WithLabelValues(channel, status).Inc()
	announcementDuration.WithLabelValues(channel).Observe(d.Seconds())
}

func recordDropped(channel, reason string) {
	announcementsDropped.WithLabelValues(channel, reason).Inc()
}

func recordCircuitOpened(channel string) {
	channelCircuitOpened.WithLabelValues(channel).Inc()
}
