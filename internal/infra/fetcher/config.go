package fetcher

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	envconfig "card-news/internal/pkg/config"
)

// ContentFetchConfig controls article body fetching. Items whose feed
// summary is shorter than Threshold get their body fetched before the story
// is built.
type ContentFetchConfig struct {
	// Enabled turns fetching on. When false, stories use the feed summary only.
	Enabled bool

	// Threshold is the summary length in runes below which the body is fetched.
	Threshold int

	// Timeout bounds a single request.
	Timeout time.Duration

	// Parallelism is the number of concurrent fetches per run.
	Parallelism int

	// MaxBodySize is enforced while reading, not from Content-Length.
	MaxBodySize int64

	// MaxRedirects bounds the redirect chain. Every hop is validated.
	MaxRedirects int

	// DenyPrivateIPs rejects URLs resolving to private, loopback or
	// link-local addresses.
	DenyPrivateIPs bool
}

// DefaultConfig fetches bodies for summaries under 1500 runes, five at a
// time, with SSRF protection on.
func DefaultConfig() ContentFetchConfig {
	return ContentFetchConfig{
		Enabled:        true,
		Threshold:      1500,
		Timeout:        15 * time.Second,
		Parallelism:    5,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

// Validate checks the limits:
//   - Threshold: >= 0 (0 always fetches)
//   - Timeout: > 0
//   - Parallelism: 1-50
//   - MaxBodySize: 1KB-100MB
//   - MaxRedirects: 0-10
func (c *ContentFetchConfig) Validate() error {
	if c.Threshold < 0 {
		return fmt.Errorf("threshold must be non-negative, got %d", c.Threshold)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	if err := envconfig.ValidateIntRange(c.Parallelism, 1, 50); err != nil {
		return fmt.Errorf("parallelism: %w", err)
	}

	minBodySize := int64(1024)              // 1KB
	maxBodySize := int64(100 * 1024 * 1024) // 100MB
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if err := envconfig.ValidateIntRange(c.MaxRedirects, 0, 10); err != nil {
		return fmt.Errorf("max redirects: %w", err)
	}

	return nil
}

// LoadConfigFromEnv reads CONTENT_FETCH_* variables over DefaultConfig.
// Unlike the worker settings it does not fall back silently: any unparsable
// value or a configuration that fails Validate is returned as an error, and
// the caller disables content fetching.
//
// Environment variables:
//   - CONTENT_FETCH_ENABLED: boolean (default: true)
//   - CONTENT_FETCH_THRESHOLD: runes (default: 1500)
//   - CONTENT_FETCH_TIMEOUT: duration such as "10s" (default: 15s)
//   - CONTENT_FETCH_PARALLELISM: integer (default: 5)
//   - CONTENT_FETCH_MAX_BODY_SIZE: bytes (default: 10485760)
//   - CONTENT_FETCH_MAX_REDIRECTS: integer (default: 5)
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: boolean (default: true)
func LoadConfigFromEnv() (ContentFetchConfig, error) {
	def := DefaultConfig()
	var errs []error
	take := func(warning string, fallback bool) {
		if fallback {
			errs = append(errs, errors.New(warning))
		}
	}

	enabled := envconfig.LoadBool("CONTENT_FETCH_ENABLED", def.Enabled)
	threshold := envconfig.LoadInt("CONTENT_FETCH_THRESHOLD", def.Threshold, nil)
	timeout := envconfig.LoadDuration("CONTENT_FETCH_TIMEOUT", def.Timeout, nil)
	parallelism := envconfig.LoadInt("CONTENT_FETCH_PARALLELISM", def.Parallelism, nil)
	bodySize := envconfig.Load("CONTENT_FETCH_MAX_BODY_SIZE", def.MaxBodySize, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	}, nil)
	redirects := envconfig.LoadInt("CONTENT_FETCH_MAX_REDIRECTS", def.MaxRedirects, nil)
	denyPrivate := envconfig.LoadBool("CONTENT_FETCH_DENY_PRIVATE_IPS", def.DenyPrivateIPs)

	take(enabled.Warning, enabled.FallbackApplied)
	take(threshold.Warning, threshold.FallbackApplied)
	take(timeout.Warning, timeout.FallbackApplied)
	take(parallelism.Warning, parallelism.FallbackApplied)
	take(bodySize.Warning, bodySize.FallbackApplied)
	take(redirects.Warning, redirects.FallbackApplied)
	take(denyPrivate.Warning, denyPrivate.FallbackApplied)

	cfg := ContentFetchConfig{
		Enabled:        enabled.Value,
		Threshold:      threshold.Value,
		Timeout:        timeout.Value,
		Parallelism:    parallelism.Value,
		MaxBodySize:    bodySize.Value,
		MaxRedirects:   redirects.Value,
		DenyPrivateIPs: denyPrivate.Value,
	}
	if len(errs) > 0 {
		return cfg, fmt.Errorf("content fetch configuration: %w", errors.Join(errs...))
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}
