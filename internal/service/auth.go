package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
)

// Auth handles registration, login and session teardown.
type Auth struct {
	userStore      model.UserStore
	tokenService   *TokenService
	logger         *logger.Logger
	initialBalance int64
}

func NewAuth(
	userStore model.UserStore,
	tokenService *TokenService,
	logger *logger.Logger,
	initialBalance int64,
) *Auth {
	return &Auth{
		userStore:      userStore,
		tokenService:   tokenService,
		logger:         logger,
		initialBalance: initialBalance,
	}
}

// Session is an issued token pair together with the authenticated user.
type Session struct {
	User         model.User
	AccessToken  string
	RefreshToken string
}

// Register creates a user with the configured initial balance and issues
// a token pair.
func (a *Auth) Register(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, model.ErrInvalidCredentials
	}

	existing, err := a.userStore.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		a.logger.Error("Auth service: failed to get user by username",
			"username", username,
			"error", err.Error())
		return Session{}, fmt.Errorf("failed to get user by username: %w", err)
	}
	if existing.ID != uuid.Nil {
		a.logger.Info("Auth service: username already taken",
			"username", username)
		return Session{}, model.ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Balance:      a.initialBalance,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return Session{}, model.ErrUsernameTaken
		}
		a.logger.Error("Auth service: failed to create user",
			"username", username,
			"error", err.Error())
		return Session{}, fmt.Errorf("failed to create user: %w", err)
	}

	return a.issueSession(ctx, user)
}

// Login verifies credentials and issues a token pair.
func (a *Auth) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := a.userStore.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, model.ErrNotFound) {
		return Session{}, model.ErrInvalidCredentials
	}
	if err != nil {
		a.logger.Error("Auth service: failed to get user by username",
			"username", username,
			"error", err.Error())
		return Session{}, fmt.Errorf("failed to get user by username: %w", err)
	}

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)) != nil {
		return Session{}, model.ErrInvalidCredentials
	}

	return a.issueSession(ctx, user)
}

// Logout revokes the presented refresh token. The access token simply
// expires.
func (a *Auth) Logout(ctx context.Context, refreshToken string) error {
	return a.tokenService.RevokeByToken(ctx, refreshToken)
}

func (a *Auth) issueSession(ctx context.Context, user model.User) (Session, error) {
	access, refresh, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		a.logger.Error("Auth service: failed to issue tokens",
			"username", user.Username,
			"error", err.Error())
		return Session{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: session issued",
		"username", user.Username,
		"user_id", user.ID)

	return Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
