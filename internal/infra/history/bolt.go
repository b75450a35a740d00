package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"card-news/internal/domain/entity"
	"card-news/internal/repository"

	bolt "go.etcd.io/bbolt"
)

var publishedBucket = []byte("published")

// BoltStore keeps publish history in a bbolt database. Each key in the
// "published" bucket is a normalized URL; the value is an RFC3339 timestamp.
type BoltStore struct {
	db *bolt.DB
}

var _ repository.HistoryRepository = (*BoltStore)(nil)

// OpenBoltStore opens (or creates) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("OpenBoltStore: create dir: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("OpenBoltStore: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(publishedBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("OpenBoltStore: create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close releases the database file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) Load(_ context.Context) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(publishedBucket).ForEach(func(k, _ []byte) error {
			set[string(k)] = struct{}{}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	return set, nil
}

func (s *BoltStore) MarkPublished(_ context.Context, url string, at time.Time) error {
	key := []byte(entity.NormalizeURL(url))
	value := []byte(at.UTC().Format(time.RFC3339))

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(publishedBucket).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("MarkPublished: %w", err)
	}
	return nil
}

func (s *BoltStore) Count(_ context.Context) (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(publishedBucket).ForEach(func(_, _ []byte) error {
			n++
			return nil
		})
	})
	if err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return n, nil
}

// PublishedAt returns when url was recorded, or the zero time if it never was.
func (s *BoltStore) PublishedAt(url string) (time.Time, error) {
	var at time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(publishedBucket).Get([]byte(entity.NormalizeURL(url)))
		if v == nil {
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, string(v))
		if err != nil {
			return err
		}
		at = parsed
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("PublishedAt: %w", err)
	}
	return at, nil
}
