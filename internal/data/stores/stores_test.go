package stores

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/data/db"
)

func testItems() []todo.Item {
	now := time.Now()
	return []todo.Item{
		{
			ID:        "a",
			Title:     "first",
			Detail:    "with detail",
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:        "b",
			Title:     "second",
			Done:      true,
			IssueURL:  "https://github.com/octo/hello/issues/2",
			CreatedAt: now.Add(time.Second),
			UpdatedAt: now.Add(time.Second),
		},
	}
}

// storeUnderTest runs the shared todo.Store contract against an implementation.
func storeUnderTest(t *testing.T, store todo.Store) {
	ctx := context.Background()

	t.Run("empty load", func(t *testing.T) {
		items, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("got %d items, want 0", len(items))
		}
	})

	t.Run("save and load round trip", func(t *testing.T) {
		want := testItems()
		if err := store.Save(ctx, want); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("got %d items, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].ID != want[i].ID {
				t.Errorf("item %d: got id %q, want %q (order must be preserved)", i, got[i].ID, want[i].ID)
			}
			if got[i].Done != want[i].Done || got[i].IssueURL != want[i].IssueURL {
				t.Errorf("item %d: got %+v, want %+v", i, got[i], want[i])
			}
			if !got[i].CreatedAt.Equal(want[i].CreatedAt) {
				t.Errorf("item %d: got created_at %v, want %v", i, got[i].CreatedAt, want[i].CreatedAt)
			}
		}
	})

	t.Run("save replaces the collection", func(t *testing.T) {
		if err := store.Save(ctx, testItems()[:1]); err != nil {
			t.Fatalf("Save: %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("got %d items, want 1", len(got))
		}
	})

	t.Run("delete all", func(t *testing.T) {
		if err := store.Save(ctx, testItems()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if err := store.DeleteAll(ctx); err != nil {
			t.Fatalf("DeleteAll: %v", err)
		}

		got, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d items after DeleteAll, want 0", len(got))
		}
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	storeUnderTest(t, NewFileStore(filepath.Join(t.TempDir(), "todos.json")))
}

func TestSQLiteStore(t *testing.T) {
	database, err := db.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = database.Close() }()

	storeUnderTest(t, NewSQLiteStore(database))
}

func TestFileStoreDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file loads empty", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "missing", "todos.json"))

		items, err := store.Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if items != nil {
			t.Errorf("got %v, want nil", items)
		}
	})

	t.Run("save creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "todos.json")
		store := NewFileStore(path)

		if err := store.Save(ctx, testItems()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Stat: %v", err)
		}
	})

	t.Run("corrupt file fails load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "todos.json")
		if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
			t.Fatal(err)
		}

		if _, err := NewFileStore(path).Load(ctx); err == nil {
			t.Error("Load: expected error for corrupt file")
		}
	})

	t.Run("delete all tolerates missing file", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "todos.json"))
		if err := store.DeleteAll(ctx); err != nil {
			t.Errorf("DeleteAll: %v", err)
		}
	})
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	items := testItems()
	if err := store.Save(ctx, items); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Mutating the caller's slice must not leak into the store.
	items[0].Title = "mutated"

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got[0].Title != "first" {
		t.Errorf("got title %q, want %q", got[0].Title, "first")
	}
}
