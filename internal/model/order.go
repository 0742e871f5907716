package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderStore defines persistence operations for orders.
type OrderStore interface {
	// CreatePurchase decrements the buyer's balance by order.Price and
	// inserts the order in a single transaction. It returns
	// ErrInsufficientBalance, with no writes applied, when the buyer's
	// balance is below the price at commit time.
	CreatePurchase(ctx context.Context, order Order) (Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]Order, error)
	List(ctx context.Context) ([]Order, error)
	// UpdateStatus moves an order from one status to the next. The
	// expected current status is part of the predicate, so a stale
	// transition fails with ErrInvalidTransition instead of overwriting.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to OrderStatus, fulfillmentText *string) (Order, error)
}

// Order is an immutable-snapshot purchase record. Item name and price are
// copied at purchase time, not live references.
type Order struct {
	ID              uuid.UUID   `json:"id"`
	UserID          uuid.UUID   `json:"userId"`
	Username        string      `json:"username"`
	ItemID          uuid.UUID   `json:"itemId"`
	ItemName        string      `json:"itemName"`
	Price           int64       `json:"price"`
	Status          OrderStatus `json:"status"`
	FulfillmentText *string     `json:"fulfillmentText,omitempty"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderStatus enumerates the forward-only fulfillment lifecycle.
type OrderStatus string

const (
	// OrderStatusPlaced is the initial status of every order.
	OrderStatusPlaced OrderStatus = "placed"
	// OrderStatusSeen means an administrator has acknowledged the order.
	OrderStatusSeen OrderStatus = "seen"
	// OrderStatusShipped is terminal and carries the fulfillment note.
	OrderStatusShipped OrderStatus = "shipped"
)

// Valid reports whether s is a known order status.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusSeen, OrderStatusShipped:
		return true
	}
	return false
}

// Next returns the status that follows s in the lifecycle. The second
// return value is false for the terminal status.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderStatusPlaced:
		return OrderStatusSeen, true
	case OrderStatusSeen:
		return OrderStatusShipped, true
	}
	return "", false
}

// CanTransition reports whether moving from s to next is allowed.
// Transitions are strictly forward, one step at a time.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	n, ok := s.Next()
	return ok && n == next
}
