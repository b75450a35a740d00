// Package config reads plain environment settings for the CLI and shared
// wiring. Invalid values log a warning and yield the default; use
// internal/pkg/config directly when fallbacks must also be counted.
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	loader "card-news/internal/pkg/config"
)

func value[T any](r loader.Result[T]) T {
	if r.FallbackApplied {
		slog.Warn("invalid environment variable, using default",
			slog.String("key", r.Key),
			slog.String("warning", r.Warning))
	}
	return r.Value
}

// GetEnvString returns the trimmed value of key, or defaultValue when unset or blank.
//
// Example:
//
//	outputDir := GetEnvString("NEWS_OUTPUT_DIR", "./output")
func GetEnvString(key, defaultValue string) string {
	return value(loader.LoadString(key, defaultValue, nil))
}

// GetEnvInt returns key parsed as a base-10 integer.
//
// Parameters:
//   - key: Environment variable name
//   - defaultValue: Value to return when unset or unparsable
//
// Returns:
//   - int: The parsed value or defaultValue
func GetEnvInt(key string, defaultValue int) int {
	return value(loader.LoadInt(key, defaultValue, nil))
}

// GetEnvBool returns key as a boolean. Values are matched case-insensitively:
// "1", "t", "true", "yes", "y", "on" and "0", "f", "false", "no", "n", "off".
//
// Example:
//
//	enabled := GetEnvBool("NEWS_SAFETY_ENABLED", true)
func GetEnvBool(key string, defaultValue bool) bool {
	return value(loader.LoadBool(key, defaultValue))
}

// GetEnvDuration returns key parsed by time.ParseDuration ("30s", "1h30m").
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	return value(loader.LoadDuration(key, defaultValue, nil))
}

// GetEnvStringList splits key on commas, trimming entries and dropping
// empty ones. defaultValue is returned when nothing remains.
//
// Example:
//
//	feeds := GetEnvStringList("NEWS_RSS_FEEDS", nil)
//	// NEWS_RSS_FEEDS="https://a.example/rss, https://b.example/rss"
//	// Result: ["https://a.example/rss", "https://b.example/rss"]
func GetEnvStringList(key string, defaultValue []string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
