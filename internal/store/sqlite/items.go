package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/erazemk/recyclehub/internal/model"
	"github.com/erazemk/recyclehub/internal/store"
)

const itemColumns = `id, owner_id, name, description, category, city, contact_number, image, status, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.Item, error) {
	item := &model.Item{}
	err := row.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Description, &item.Category,
		&item.City, &item.ContactNumber, &item.Image, &item.Status, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// CreateItem inserts a new item with a generated id.
func (s *Store) CreateItem(ctx context.Context, item *model.Item) error {
	id := uuid.NewString()
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, item.OwnerID, item.Name, item.Description, item.Category,
		item.City, item.ContactNumber, item.Image, item.Status, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	item.ID = id
	return nil
}

// GetItem returns an item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (*model.Item, error) {
	item, err := scanItem(s.DB.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns all items in insertion order.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY rowid`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItemStatus sets an item's status.
func (s *Store) UpdateItemStatus(ctx context.Context, id, status string) (*model.Item, error) {
	result, err := s.DB.ExecContext(ctx,
		`UPDATE items SET status = ? WHERE id = ?`, status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetItem(ctx, id)
}

// DeleteItem removes an item.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	result, err := s.DB.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
