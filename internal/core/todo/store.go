package todo

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a todo item does not exist.
var ErrNotFound = errors.New("todo item not found")

// Store defines the interface for todo item persistence.
//
// The contract is whole-collection only: every Save overwrites the entire
// collection and there are no partial-item operations. Callers must
// read-modify-write through a single owner or concurrent writes can be lost.
type Store interface {
	// Load returns all items in insertion order.
	Load(ctx context.Context) ([]Item, error)

	// Save replaces the stored collection with items.
	Save(ctx context.Context, items []Item) error

	// DeleteAll removes every stored item.
	DeleteAll(ctx context.Context) error
}
