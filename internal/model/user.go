package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, user User) (User, error)
	// AddBalance atomically increments the user's balance by amount and
	// returns the updated user. The increment is field-level, never a
	// record overwrite, so concurrent purchases and gifts cannot lose
	// updates.
	AddBalance(ctx context.Context, id uuid.UUID, amount int64) (User, error)
}

// User represents a stored user with their T-Bucks balance.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Balance      int64     `json:"tBucks"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
