package stores

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/colonyops/tether/internal/core/todo"
	"github.com/colonyops/tether/internal/data/db"
)

// SQLiteStore implements todo.Store on the tether SQLite database. Save is a
// single transaction replacing the whole collection, matching the store
// contract's whole-collection semantics.
type SQLiteStore struct {
	db *db.DB
}

var _ todo.Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a store over an open database.
func NewSQLiteStore(database *db.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

// Load returns all items ordered by their stored position.
func (s *SQLiteStore) Load(ctx context.Context) ([]todo.Item, error) {
	rows, err := s.db.Conn().QueryContext(ctx, `
		SELECT id, title, detail, done, issue_url, created_at, updated_at
		FROM todo_items
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query todo items: %w", err)
	}
	defer rows.Close()

	var items []todo.Item
	for rows.Next() {
		var (
			item      todo.Item
			done      int64
			issueURL  sql.NullString
			createdAt int64
			updatedAt int64
		)
		if err := rows.Scan(&item.ID, &item.Title, &item.Detail, &done, &issueURL, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan todo item: %w", err)
		}

		item.Done = done != 0
		item.IssueURL = issueURL.String
		item.CreatedAt = time.Unix(0, createdAt)
		item.UpdatedAt = time.Unix(0, updatedAt)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todo items: %w", err)
	}

	return items, nil
}

// Save replaces the stored collection in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, items []todo.Item) error {
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM todo_items`); err != nil {
		return fmt.Errorf("clear todo items: %w", err)
	}

	for i, item := range items {
		var issueURL sql.NullString
		if item.IssueURL != "" {
			issueURL = sql.NullString{String: item.IssueURL, Valid: true}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO todo_items (id, position, title, detail, done, issue_url, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID, i, item.Title, item.Detail, boolToInt(item.Done), issueURL,
			item.CreatedAt.UnixNano(), item.UpdatedAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert todo item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}

	return nil
}

// DeleteAll removes every stored item.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.Conn().ExecContext(ctx, `DELETE FROM todo_items`); err != nil {
		return fmt.Errorf("delete todo items: %w", err)
	}
	return nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
