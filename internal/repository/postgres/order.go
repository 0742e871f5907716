package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/sourpow/tbucks-server/internal/model"
)

var _ model.OrderStore = (*OrderRepository)(nil)

type OrderRepository struct {
	db *Connection
}

func NewOrderRepository(db *Connection) *OrderRepository {
	return &OrderRepository{
		db: db,
	}
}

const orderColumns = `id, user_id, username, item_id, item_name, price, status, fulfillment_text, created_at, updated_at`

func scanOrder(row pgx.Row, order *model.Order) error {
	return row.Scan(
		&order.ID, &order.UserID, &order.Username, &order.ItemID, &order.ItemName,
		&order.Price, &order.Status, &order.FulfillmentText, &order.CreatedAt, &order.UpdatedAt,
	)
}

// CreatePurchase performs the balance decrement and the order insert as a
// single transaction. The decrement is conditional on the current balance,
// so an insufficient balance rolls back with no partial state.
func (r *OrderRepository) CreatePurchase(ctx context.Context, order model.Order) (model.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return model.Order{}, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	const debit = `UPDATE users SET balance = balance - $2, updated_at = NOW()
				   WHERE id = $1 AND balance >= $2`

	cmd, err := tx.Exec(ctx, debit, order.UserID, order.Price)
	if err != nil {
		return model.Order{}, fmt.Errorf("failed to debit balance: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, order.UserID).Scan(&exists); err != nil {
			return model.Order{}, fmt.Errorf("failed to check user existence: %w", err)
		}
		if !exists {
			return model.Order{}, model.ErrNotFound
		}
		return model.Order{}, model.ErrInsufficientBalance
	}

	const insert = `INSERT INTO orders (id, user_id, username, item_id, item_name, price, status, created_at, updated_at)
					VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
					RETURNING ` + orderColumns

	var savedOrder model.Order
	err = scanOrder(tx.QueryRow(ctx, insert,
		order.ID, order.UserID, order.Username, order.ItemID, order.ItemName,
		order.Price, string(order.Status),
	), &savedOrder)
	if err != nil {
		return model.Order{}, fmt.Errorf("failed to create order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Order{}, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return savedOrder, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	err := scanOrder(r.db.QueryRow(ctx, query, id), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Order{}, model.ErrNotFound
		}
		return model.Order{}, fmt.Errorf("failed to get order by id: %w", err)
	}

	return order, nil
}

func (r *OrderRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders
			  WHERE user_id = $1
			  ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by user id: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *OrderRepository) List(ctx context.Context) ([]model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

// UpdateStatus applies a single forward transition. The expected current
// status is part of the WHERE clause; a row that has already moved on is
// not overwritten.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus, fulfillmentText *string) (model.Order, error) {
	if !from.CanTransition(to) {
		return model.Order{}, model.ErrInvalidTransition
	}

	query := `UPDATE orders
			  SET status = $3, fulfillment_text = COALESCE($4, fulfillment_text), updated_at = NOW()
			  WHERE id = $1 AND status = $2
			  RETURNING ` + orderColumns

	var order model.Order
	err := scanOrder(r.db.QueryRow(ctx, query, id, string(from), string(to), fulfillmentText), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing order from a stale transition.
			if _, getErr := r.GetByID(ctx, id); errors.Is(getErr, model.ErrNotFound) {
				return model.Order{}, model.ErrNotFound
			}
			return model.Order{}, model.ErrInvalidTransition
		}
		return model.Order{}, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	var orders []model.Order
	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
