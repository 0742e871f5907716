package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

// Order handles the order history view and administrative fulfillment.
type Order struct {
	orderStore model.OrderStore
	publisher  model.EventPublisher
	logger     *logger.Logger
}

func NewOrder(orderStore model.OrderStore, publisher model.EventPublisher, logger *logger.Logger) *Order {
	return &Order{
		orderStore: orderStore,
		publisher:  publisher,
		logger:     logger,
	}
}

// MaskFulfillment strips the fulfillment note from orders that have not
// shipped yet; the note becomes visible to the owner only with the
// shipped status.
func MaskFulfillment(o model.Order) model.Order {
	if o.Status != model.OrderStatusShipped {
		o.FulfillmentText = nil
	}
	return o
}

// ListForUser returns only userID's orders, newest first.
func (s *Order) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	orders, err := s.orderStore.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders by user id: %w", err)
	}

	for i, o := range orders {
		orders[i] = MaskFulfillment(o)
	}
	return orders, nil
}

// ListAll returns every order, newest first. Admin only.
func (s *Order) ListAll(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// MarkSeen moves an order from placed to seen.
func (s *Order) MarkSeen(ctx context.Context, orderID uuid.UUID) (model.Order, error) {
	order, err := s.orderStore.UpdateStatus(ctx, orderID, model.OrderStatusPlaced, model.OrderStatusSeen, nil)
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Info("Order service: order seen", "order_id", order.ID)
	s.publishOrderSnapshots(ctx, order.UserID)

	return order, nil
}

// Ship moves an order from seen to shipped, persisting the fulfillment
// note together with the status change.
func (s *Order) Ship(ctx context.Context, orderID uuid.UUID, fulfillmentText string) (model.Order, error) {
	fulfillmentText = strings.TrimSpace(fulfillmentText)

	var note *string
	if fulfillmentText != "" {
		note = &fulfillmentText
	}

	order, err := s.orderStore.UpdateStatus(ctx, orderID, model.OrderStatusSeen, model.OrderStatusShipped, note)
	if err != nil {
		return model.Order{}, err
	}

	s.logger.Info("Order service: order shipped", "order_id", order.ID)
	s.publishOrderSnapshots(ctx, order.UserID)

	return order, nil
}

func (s *Order) publishOrderSnapshots(ctx context.Context, userID uuid.UUID) {
	all, err := s.orderStore.List(ctx)
	if err != nil {
		s.logger.Error("Order service: failed to load orders snapshot", "error", err.Error())
		return
	}
	s.publisher.Publish(model.Event{Topic: model.TopicOrders, Type: model.EventSnapshot, Data: all})

	own := make([]model.Order, 0, len(all))
	for _, o := range all {
		if o.UserID == userID {
			own = append(own, MaskFulfillment(o))
		}
	}
	s.publisher.Publish(model.Event{Topic: model.TopicUserOrders(userID), Type: model.EventSnapshot, Data: own})
}
