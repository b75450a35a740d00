package bootstrap

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"card-news/internal/infra/notifier"
	"card-news/internal/usecase/notify"
	envconfig "card-news/pkg/config"
)

const webhookTimeout = 30 * time.Second

// webhookRule describes what a valid incoming webhook URL looks like.
type webhookRule struct {
	service    string
	host       string
	pathPrefix string
}

var (
	slackWebhook   = webhookRule{service: "Slack", host: "hooks.slack.com", pathPrefix: "/services/"}
	discordWebhook = webhookRule{service: "Discord", host: "discord.com", pathPrefix: "/api/webhooks/"}
)

// validWebhookURL checks raw against rule, logging why it was rejected.
func validWebhookURL(logger *slog.Logger, rule webhookRule, raw string) bool {
	if raw == "" {
		logger.Warn(rule.service + " webhook URL is empty, disabling notifications")
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		logger.Warn("invalid "+rule.service+" webhook URL format, disabling notifications", slog.Any("error", err))
		return false
	}
	if u.Scheme != "https" {
		logger.Warn(rule.service + " webhook URL must use HTTPS, disabling notifications")
		return false
	}
	if u.Host != rule.host {
		logger.Warn("invalid "+rule.service+" webhook host, disabling notifications", slog.String("host", u.Host))
		return false
	}
	if !strings.HasPrefix(u.Path, rule.pathPrefix) {
		logger.Warn("invalid "+rule.service+" webhook path, disabling notifications", slog.String("path", u.Path))
		return false
	}
	return true
}

// LoadSlackConfig reads SLACK_ENABLED and SLACK_WEBHOOK_URL. An invalid URL
// disables the channel instead of failing startup.
func LoadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	if !envconfig.GetEnvBool("SLACK_ENABLED", false) {
		return notifier.SlackConfig{}
	}
	webhookURL := strings.TrimSpace(envconfig.GetEnvString("SLACK_WEBHOOK_URL", ""))
	if !validWebhookURL(logger, slackWebhook, webhookURL) {
		return notifier.SlackConfig{}
	}
	return notifier.SlackConfig{Enabled: true, WebhookURL: webhookURL, Timeout: webhookTimeout}
}

// LoadDiscordConfig reads DISCORD_ENABLED and DISCORD_WEBHOOK_URL.
func LoadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	if !envconfig.GetEnvBool("DISCORD_ENABLED", false) {
		return notifier.DiscordConfig{}
	}
	webhookURL := strings.TrimSpace(envconfig.GetEnvString("DISCORD_WEBHOOK_URL", ""))
	if !validWebhookURL(logger, discordWebhook, webhookURL) {
		return notifier.DiscordConfig{}
	}
	return notifier.DiscordConfig{Enabled: true, WebhookURL: webhookURL, Timeout: webhookTimeout}
}

// NotificationChannels returns the enabled Slack and Discord channels.
func NotificationChannels(logger *slog.Logger) []notify.Channel {
	var channels []notify.Channel
	if cfg := LoadSlackConfig(logger); cfg.Enabled {
		channels = append(channels, notify.NewSlackChannel(cfg))
		logger.Info("slack channel initialized")
	}
	if cfg := LoadDiscordConfig(logger); cfg.Enabled {
		channels = append(channels, notify.NewDiscordChannel(cfg))
		logger.Info("discord channel initialized")
	}
	return channels
}
