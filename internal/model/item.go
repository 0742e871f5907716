package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ItemStore defines persistence operations for store items.
type ItemStore interface {
	Create(ctx context.Context, item StoreItem) (StoreItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (StoreItem, error)
	List(ctx context.Context) ([]StoreItem, error)
}

// StoreItem represents a catalog entry purchasable with T-Bucks.
// Items are created by administrators and never updated or deleted.
type StoreItem struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageKey    string    `json:"imageKey"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreateItemParams contains parameters to create a store item.
type CreateItemParams struct {
	Name        string
	Description string
	Price       int64
	ImageData   []byte
	ImageType   string
}
