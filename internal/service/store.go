package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

// Store implements the storefront: catalog listing, item creation and
// the purchase flow.
type Store struct {
	itemStore  model.ItemStore
	userStore  model.UserStore
	orderStore model.OrderStore
	storage    model.Storage
	publisher  model.EventPublisher
	logger     *logger.Logger
}

func NewStore(
	itemStore model.ItemStore,
	userStore model.UserStore,
	orderStore model.OrderStore,
	storage model.Storage,
	publisher model.EventPublisher,
	logger *logger.Logger,
) *Store {
	return &Store{
		itemStore:  itemStore,
		userStore:  userStore,
		orderStore: orderStore,
		storage:    storage,
		publisher:  publisher,
		logger:     logger,
	}
}

// ListItems returns the full catalog.
func (s *Store) ListItems(ctx context.Context) ([]model.StoreItem, error) {
	items, err := s.itemStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// GetItemImage streams the stored image for an item.
func (s *Store) GetItemImage(ctx context.Context, itemID uuid.UUID) (io.ReadCloser, string, error) {
	item, err := s.itemStore.GetByID(ctx, itemID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get item by id: %w", err)
	}
	if item.ImageKey == "" {
		return nil, "", model.ErrNotFound
	}

	reader, contentType, err := s.storage.Download(ctx, item.ImageKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download item image: %w", err)
	}
	return reader, contentType, nil
}

// AddItem creates a catalog entry with its image. Admin only; the caller
// is verified by the API layer.
func (s *Store) AddItem(ctx context.Context, params model.CreateItemParams) (model.StoreItem, error) {
	params.Name = strings.TrimSpace(params.Name)
	params.Description = strings.TrimSpace(params.Description)
	if params.Name == "" || params.Description == "" || len(params.ImageData) == 0 {
		return model.StoreItem{}, fmt.Errorf("%w: name, description and image are required", model.ErrInvalidInput)
	}
	if params.Price <= 0 {
		return model.StoreItem{}, model.ErrAmountNotPositive
	}

	itemID := uuid.New()
	imageKey := "items/" + itemID.String()
	err := s.storage.Upload(ctx, imageKey, bytes.NewReader(params.ImageData), int64(len(params.ImageData)), params.ImageType)
	if err != nil {
		return model.StoreItem{}, fmt.Errorf("failed to upload item image: %w", err)
	}

	item, err := s.itemStore.Create(ctx, model.StoreItem{
		ID:          itemID,
		Name:        params.Name,
		Description: params.Description,
		Price:       params.Price,
		ImageKey:    imageKey,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		s.logger.Error("Store service: failed to create item",
			"name", params.Name,
			"error", err.Error())
		return model.StoreItem{}, fmt.Errorf("failed to create item: %w", err)
	}

	s.logger.Info("Store service: item added",
		"item_id", item.ID,
		"name", item.Name,
		"price", item.Price)

	s.publishItemsSnapshot(ctx)

	return item, nil
}

// Purchase places an order for the item on behalf of userID. The balance
// check-and-decrement and the order insert commit as one transaction, so
// a partial write is impossible. A cheap point read rejects an obviously
// insufficient balance before any write is attempted.
func (s *Store) Purchase(ctx context.Context, userID, itemID uuid.UUID) (model.Order, error) {
	item, err := s.itemStore.GetByID(ctx, itemID)
	if err != nil {
		return model.Order{}, fmt.Errorf("failed to get item by id: %w", err)
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.Order{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	if user.Balance < item.Price {
		return model.Order{}, model.ErrInsufficientBalance
	}

	order, err := s.orderStore.CreatePurchase(ctx, model.Order{
		ID:       uuid.New(),
		UserID:   user.ID,
		Username: user.Username,
		ItemID:   item.ID,
		ItemName: item.Name,
		Price:    item.Price,
		Status:   model.OrderStatusPlaced,
	})
	if errors.Is(err, model.ErrInsufficientBalance) {
		// The balance moved between the point read and the commit;
		// the transaction rolled back with nothing written.
		return model.Order{}, model.ErrInsufficientBalance
	}
	if err != nil {
		s.logger.Error("Store service: purchase failed",
			"user_id", userID,
			"item_id", itemID,
			"error", err.Error())
		return model.Order{}, fmt.Errorf("failed to create purchase: %w", err)
	}

	s.logger.Info("Store service: order placed",
		"order_id", order.ID,
		"user_id", userID,
		"item_name", order.ItemName,
		"price", order.Price)

	s.publishOrderSnapshots(ctx, userID)
	s.publishUserSnapshots(ctx, userID)

	return order, nil
}

// The original backend pushed a full snapshot of each watched collection
// on every change; the helpers below reproduce that contract. A failed
// snapshot read only costs a push, never the committed write.

func (s *Store) publishItemsSnapshot(ctx context.Context) {
	items, err := s.itemStore.List(ctx)
	if err != nil {
		s.logger.Error("Store service: failed to load items snapshot", "error", err.Error())
		return
	}
	s.publisher.Publish(model.Event{Topic: model.TopicItems, Type: model.EventSnapshot, Data: items})
}

func (s *Store) publishOrderSnapshots(ctx context.Context, userID uuid.UUID) {
	all, err := s.orderStore.List(ctx)
	if err != nil {
		s.logger.Error("Store service: failed to load orders snapshot", "error", err.Error())
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

func (s *Store) publishUserSnapshots(ctx context.Context, userID uuid.UUID) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("Store service: failed to load user snapshot", "error", err.Error())
		return
	}
	s.publisher.Publish(model.Event{Topic: model.TopicUser(userID), Type: model.EventSnapshot, Data: user})

	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("Store service: failed to load users snapshot", "error", err.Error())
		return
	}
	s.publisher.Publish(model.Event{Topic: model.TopicUsers, Type: model.EventSnapshot, Data: users})
}
