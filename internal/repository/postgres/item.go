package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sourpow/tbucks-server/internal/model"
)

var _ model.ItemStore = (*ItemRepository)(nil)

type ItemRepository struct {
	db *Connection
}

func NewItemRepository(db *Connection) *ItemRepository {
	return &ItemRepository{
		db: db,
	}
}

func (r *ItemRepository) Create(ctx context.Context, item model.StoreItem) (model.StoreItem, error) {
	query := `INSERT INTO items (id, name, description, price, image_key, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id, name, description, price, image_key, created_at`

	var savedItem model.StoreItem
	err := r.db.QueryRow(ctx, query,
		item.ID, item.Name, item.Description, item.Price, item.ImageKey, item.CreatedAt,
	).Scan(
		&savedItem.ID, &savedItem.Name, &savedItem.Description, &savedItem.Price,
		&savedItem.ImageKey, &savedItem.CreatedAt,
	)
	if err != nil {
		return model.StoreItem{}, fmt.Errorf("failed to create item: %w", err)
	}

	return savedItem, nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (model.StoreItem, error) {
	var item model.StoreItem
	query := `SELECT id, name, description, price, image_key, created_at
			  FROM items WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.Name, &item.Description, &item.Price, &item.ImageKey, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.StoreItem{}, model.ErrNotFound
		}
		return model.StoreItem{}, fmt.Errorf("failed to get item by id: %w", err)
	}

	return item, nil
}

func (r *ItemRepository) List(ctx context.Context) ([]model.StoreItem, error) {
	query := `SELECT id, name, description, price, image_key, created_at
			  FROM items ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []model.StoreItem
	for rows.Next() {
		var item model.StoreItem
		err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &item.Price, &item.ImageKey, &item.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}
