package stores

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/colonyops/tether/internal/core/todo"
)

// FileStore implements todo.Store on a pretty-printed JSON file. Writes go
// through a temp file and rename so a crash never leaves a half-written
// collection behind.
type FileStore struct {
	path string
}

var _ todo.Store = (*FileStore)(nil)

// NewFileStore creates a store persisting to path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the collection. A missing file loads as an empty collection.
func (s *FileStore) Load(_ context.Context) ([]todo.Item, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var items []todo.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	return items, nil
}

// Save atomically replaces the file with the given collection.
func (s *FileStore) Save(_ context.Context, items []todo.Item) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".todos-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	return nil
}

// DeleteAll removes the file. Deleting an absent file is not an error.
func (s *FileStore) DeleteAll(_ context.Context) error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("remove %s: %w", s.path, err)
	}
	return nil
}
