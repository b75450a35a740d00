// Package config loads the card news application settings from the environment
// and from the optional feeds YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"card-news/internal/domain/entity"
	envconfig "card-news/pkg/config"
)

// History backends.
const (
	HistoryBackendFile     = "file"
	HistoryBackendBolt     = "bolt"
	HistoryBackendPostgres = "postgres"
	HistoryBackendSQLite   = "sqlite"
)

// Defaults applied when the environment leaves a setting unset.
const (
	DefaultOutputDir   = "./output"
	DefaultMaxItems    = 10
	DefaultBrandName   = "Card News"
	DefaultBrandHandle = "@cardnews"
	DefaultKeepOutputs = 5
)

// ErrUnknownHistoryBackend is returned for an unsupported NEWS_HISTORY_BACKEND value.
var ErrUnknownHistoryBackend = errors.New("unknown history backend")

// Settings holds everything a pipeline run needs to know.
type Settings struct {
	// Feeds are the enabled sources, from NEWS_RSS_FEEDS and NEWS_FEEDS_FILE
	// (or from the --feeds override alone).
	Feeds []entity.FeedSource

	OutputDir     string
	SafetyEnabled bool
	MaxItems      int
	DryRun        bool
	KeepOutputs   int

	BrandName   string
	BrandHandle string

	// HistoryBackend is one of file, bolt, postgres or sqlite.
	HistoryBackend string
	// HistoryPath is the file location for the file, bolt and sqlite backends.
	HistoryPath string
	// DatabaseURL is the postgres DSN (DATABASE_URL).
	DatabaseURL string

	// PublishersFile is the optional story event publisher registry.
	PublishersFile string
}

// Overrides carries CLI flags. Zero values leave the environment setting in place.
type Overrides struct {
	Feeds     []string
	OutputDir string
	Limit     int
	DryRun    bool
}

// LoadSettings builds Settings from NEWS_* environment variables, then applies
// the overrides. A feeds override replaces both NEWS_RSS_FEEDS and the feeds file.
//
// Example:
//
//	settings, err := config.LoadSettings(config.Overrides{Limit: 3, DryRun: true})
//	if err != nil {
//	    return err
//	}
func LoadSettings(ov Overrides) (*Settings, error) {
	s := &Settings{
		OutputDir:      envconfig.GetEnvString("NEWS_OUTPUT_DIR", DefaultOutputDir),
		SafetyEnabled:  envconfig.GetEnvBool("NEWS_SAFETY_ENABLED", true),
		MaxItems:       envconfig.GetEnvInt("NEWS_MAX_ITEMS", DefaultMaxItems),
		KeepOutputs:    envconfig.GetEnvInt("NEWS_KEEP_OUTPUTS", DefaultKeepOutputs),
		BrandName:      envconfig.GetEnvString("NEWS_BRAND_NAME", DefaultBrandName),
		BrandHandle:    envconfig.GetEnvString("NEWS_BRAND_HANDLE", DefaultBrandHandle),
		HistoryBackend: strings.ToLower(envconfig.GetEnvString("NEWS_HISTORY_BACKEND", HistoryBackendFile)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		PublishersFile: os.Getenv("NEWS_PUBLISHERS_FILE"),
		DryRun:         ov.DryRun,
	}

	if err := validateBackend(s.HistoryBackend); err != nil {
		return nil, err
	}
	s.HistoryPath = expandHome(envconfig.GetEnvString("NEWS_HISTORY_PATH", defaultHistoryPath(s.HistoryBackend)))

	if len(ov.Feeds) > 0 {
		s.Feeds = entity.RSSSources(ov.Feeds)
	} else {
		feeds, err := loadFeedsFromEnv()
		if err != nil {
			return nil, err
		}
		s.Feeds = feeds
	}

	if ov.OutputDir != "" {
		s.OutputDir = ov.OutputDir
	}
	if ov.Limit > 0 {
		s.MaxItems = ov.Limit
	}
	if s.MaxItems < 0 {
		s.MaxItems = 0
	}
	if s.KeepOutputs < 0 {
		s.KeepOutputs = DefaultKeepOutputs
	}

	return s, nil
}

func loadFeedsFromEnv() ([]entity.FeedSource, error) {
	feeds := entity.RSSSources(envconfig.GetEnvStringList("NEWS_RSS_FEEDS", nil))

	if path := os.Getenv("NEWS_FEEDS_FILE"); path != "" {
		fromFile, err := LoadFeedsFile(expandHome(path))
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, fromFile...)
	}
	return feeds, nil
}

func validateBackend(backend string) error {
	switch backend {
	case HistoryBackendFile, HistoryBackendBolt, HistoryBackendPostgres, HistoryBackendSQLite:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownHistoryBackend, backend)
	}
}

func defaultHistoryPath(backend string) string {
	name := "publish_history.json"
	switch backend {
	case HistoryBackendBolt:
		name = "publish_history.db"
	case HistoryBackendSQLite:
		name = "publish_history.sqlite"
	}
	return filepath.Join("~", ".card-news", name)
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
