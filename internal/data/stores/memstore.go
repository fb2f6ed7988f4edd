// Package stores provides item store adapters for the reconciliation core.
package stores

import (
	"context"
	"slices"
	"sync"

	"github.com/colonyops/tether/internal/core/todo"
)

// MemoryStore implements todo.Store in memory. Used for tests and the
// "memory" storage backend.
type MemoryStore struct {
	mu    sync.RWMutex
	items []todo.Item
}

var _ todo.Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored collection.
func (s *MemoryStore) Load(_ context.Context) ([]todo.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items), nil
}

// Save replaces the stored collection with a copy of items.
func (s *MemoryStore) Save(_ context.Context, items []todo.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	return nil
}

// DeleteAll removes every stored item.
func (s *MemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return nil
}
