package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

// User provides profile lookups and administrative balance gifts.
type User struct {
	userStore model.UserStore
	publisher model.EventPublisher
	logger    *logger.Logger
}

func NewUser(userStore model.UserStore, publisher model.EventPublisher, logger *logger.Logger) *User {
	return &User{
		userStore: userStore,
		publisher: publisher,
		logger:    logger,
	}
}

// Get returns the user's own profile.
func (s *User) Get(ctx context.Context, userID uuid.UUID) (model.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

// List returns all users. Admin only.
func (s *User) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// Gift increments a user's balance by a positive amount. The increment
// is atomic, so it composes with a concurrent purchase without losing
// either update.
func (s *User) Gift(ctx context.Context, userID uuid.UUID, amount int64) (model.User, error) {
	if amount <= 0 {
		return model.User{}, model.ErrAmountNotPositive
	}

	user, err := s.userStore.AddBalance(ctx, userID, amount)
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("User service: balance gifted",
		"user_id", user.ID,
		"amount", amount,
		"balance", user.Balance)

	s.publisher.Publish(model.Event{Topic: model.TopicUser(user.ID), Type: model.EventSnapshot, Data: user})

	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("User service: failed to load users snapshot", "error", err.Error())
		return user, nil
	}
	s.publisher.Publish(model.Event{Topic: model.TopicUsers, Type: model.EventSnapshot, Data: users})

	return user, nil
}
