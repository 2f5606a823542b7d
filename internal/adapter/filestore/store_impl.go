package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/facility-scraper/internal/repository"
)

// StoreImpl provides a concrete implementation for the DocumentStore
// interface using one indented JSON file per key under a data directory.
// This is the default backend; the files are the run's published artifacts.
type StoreImpl struct {
	dir string
}

// NewStore creates a file-backed document store rooted at dir.
func NewStore(dir string) *StoreImpl {
	return &StoreImpl{dir: dir}
}

func (s *StoreImpl) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read unmarshals the document stored under key into v.
func (s *StoreImpl) Read(_ context.Context, key string, v any) error {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return repository.ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("read document %q: %w", key, err)
	}
	return json.Unmarshal(data, v)
}

// Write marshals v under key. The write goes through a temp file and rename
// so a crash mid-write never leaves a truncated document.
func (s *StoreImpl) Write(_ context.Context, key string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}

	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write document %q: %w", key, err)
	}
	return os.Rename(tmp, s.path(key))
}
