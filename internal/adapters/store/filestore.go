package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore implements Store on a single JSON file. Writes go through a
// temp file and rename so a crash never leaves a half-written record.
type FileStore struct {
	path string

	mu     sync.Mutex
	cached *Record
}

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithPath sets the backing file path.
func WithPath(path string) Option {
	return func(s *FileStore) {
		if path != "" {
			s.path = path
		}
	}
}

// NewFileStore creates a file-backed store.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		path: "strava_subscription.json",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns the current record, reading the file on first use.
func (s *FileStore) Load(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached != nil {
		return *s.cached, nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.cached = &Record{}
		return Record{}, nil
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	s.cached = &rec
	return rec, nil
}

// Save replaces the whole record on disk and in the cache.
func (s *FileStore) Save(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".strava-record-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %w", ErrSave, err)
	}

	s.cached = &rec
	return nil
}
