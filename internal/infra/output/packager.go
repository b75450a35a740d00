// Package output writes packaged posts to disk: one timestamped folder per story
// holding the caption, the card texts for the renderer and a metadata file.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"card-news/internal/domain/entity"
	"card-news/internal/utils/text"
)

// File names inside a post folder.
const (
	CaptionFile  = "caption.txt"
	CardsFile    = "cards.json"
	MetadataFile = "metadata.json"
)

const (
	folderTimeLayout = "20060102_150405"
	slugMaxRunes     = 40
)

// Packager writes posts below a base directory.
type Packager struct {
	baseDir string
	now     func() time.Time
}

// Option configures a Packager.
type Option func(*Packager)

// WithClock replaces the clock used for folder names and generated_at.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) {
		p.now = now
	}
}

// NewPackager creates a Packager rooted at baseDir.
func NewPackager(baseDir string, opts ...Option) *Packager {
	p := &Packager{baseDir: baseDir, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BaseDir returns the directory posts are written to.
func (p *Packager) BaseDir() string {
	return p.baseDir
}

// FolderName returns "{UTC yyyyMMdd_HHmmss}_{slug}" for a story title.
//
// Example:
//
//	FolderName("Seoul Subway Resumes", t) // "20240501_090000_seoul-subway-resumes"
func FolderName(title string, at time.Time) string {
	return at.UTC().Format(folderTimeLayout) + "_" + text.Slugify(title, slugMaxRunes)
}

// CardFileNames lists the image names the card renderer writes for n cards.
func CardFileNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("card_%02d.png", i+1)
	}
	return names
}

// Package writes caption.txt, cards.json and metadata.json for a story and
// returns the resulting Post.
func (p *Packager) Package(story entity.Story, cards []entity.Card, caption string) (*entity.Post, error) {
	now := p.now().UTC().Truncate(time.Second)
	dir := filepath.Join(p.baseDir, FolderName(story.HookTitle, now))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("Package: MkdirAll: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, CaptionFile), []byte(caption), 0o600); err != nil {
		return nil, fmt.Errorf("Package: write caption: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, CardsFile), cards); err != nil {
		return nil, fmt.Errorf("Package: write cards: %w", err)
	}

	tags := story.Tags
	if tags == nil {
		tags = []string{}
	}
	meta := entity.PostMetadata{
		Title:         story.HookTitle,
		SourceDomain:  story.SourceDomain,
		SourceURL:     story.SourceURL,
		PublishedAt:   story.PublishedAt,
		Tags:          tags,
		NumCards:      len(cards),
		CardFiles:     CardFileNames(len(cards)),
		CaptionLength: text.CountRunes(caption),
		GeneratedAt:   now,
	}
	if err := writeJSON(filepath.Join(dir, MetadataFile), meta); err != nil {
		return nil, fmt.Errorf("Package: write metadata: %w", err)
	}

	return &entity.Post{
		Story:     story,
		Cards:     cards,
		Caption:   caption,
		OutputDir: dir,
		Metadata:  meta,
	}, nil
}

// Cleanup keeps the newest keep post folders and removes the rest. Folders are
// ordered by name, which starts with the timestamp. Names beginning with "_" are
// never touched. It returns the removed folder names.
func (p *Packager) Cleanup(keep int) ([]string, error) {
	entries, err := os.ReadDir(p.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Cleanup: ReadDir: %w", err)
	}

	var dirs []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), "_") {
			dirs = append(dirs, e.Name())
		}
	}
	if keep < 0 {
		keep = 0
	}
	if len(dirs) <= keep {
		return nil, nil
	}
	sort.Strings(dirs)

	var removed []string
	for _, name := range dirs[:len(dirs)-keep] {
		if err := os.RemoveAll(filepath.Join(p.baseDir, name)); err != nil {
			slog.Warn("failed to remove old output",
				slog.String("dir", name),
				slog.Any("error", err))
			continue
		}
		slog.Info("cleaned up old output", slog.String("dir", name))
		removed = append(removed, name)
	}
	return removed, nil
}

// writeJSON writes v indented by two spaces, keeping non-ASCII text and HTML characters as-is.
func writeJSON(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o600)
}
