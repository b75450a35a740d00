// Package history stores the URLs of articles that were already published,
// so later runs skip them.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"card-news/internal/domain/entity"
	"card-news/internal/repository"
)

// fileDocument is the on-disk layout of the history file.
type fileDocument struct {
	URLs map[string]string `json:"urls"`
}

// FileStore keeps publish history in a single JSON file:
//
//	{"urls": {"https://example.com/a": "2024-05-01T00:30:15Z"}}
//
// A missing file is an empty history. A corrupted file is logged and treated as
// empty; the next write replaces it.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

var _ repository.HistoryRepository = (*FileStore)(nil)

// Path returns the history file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the set of published URLs.
func (s *FileStore) Load(_ context.Context) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	set := make(map[string]struct{}, len(doc.URLs))
	for u := range doc.URLs {
		set[u] = struct{}{}
	}
	return set, nil
}

// MarkPublished adds url to the history and rewrites the file.
func (s *FileStore) MarkPublished(_ context.Context, url string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return fmt.Errorf("MarkPublished: %w", err)
	}
	doc.URLs[entity.NormalizeURL(url)] = at.UTC().Format(time.RFC3339)

	if err := s.write(doc); err != nil {
		return fmt.Errorf("MarkPublished: %w", err)
	}
	return nil
}

// Count returns the number of published URLs.
func (s *FileStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return len(doc.URLs), nil
}

// read loads the document. Callers hold s.mu.
func (s *FileStore) read() (fileDocument, error) {
	doc := fileDocument{URLs: map[string]string{}}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read history file: %w", err)
	}
	if len(data) == 0 {
		return doc, nil
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		slog.Warn("history file is corrupted, starting with empty history",
			slog.String("path", s.path),
			slog.Any("error", err))
		return fileDocument{URLs: map[string]string{}}, nil
	}
	if doc.URLs == nil {
		doc.URLs = map[string]string{}
	}
	return doc, nil
}

// write replaces the file contents. Callers hold s.mu.
func (s *FileStore) write(doc fileDocument) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create history dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}
