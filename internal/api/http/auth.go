// Package httpapi exposes the storefront over HTTP: a JSON API for
// authentication, the catalog, purchases and administration, plus a
// websocket endpoint for realtime snapshots.
package httpapi

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/sourpow/tbucks-server/internal/api/http/middleware"
	"github.com/sourpow/tbucks-server/internal/logger"
	"github.com/sourpow/tbucks-server/internal/model"
	"github.com/sourpow/tbucks-server/internal/service"
)

// AuthService is the authentication surface the handlers need.
type AuthService interface {
	Register(ctx context.Context, username, password string) (service.Session, error)
	Login(ctx context.Context, username, password string) (service.Session, error)
	Logout(ctx context.Context, refreshToken string) error
}

// TokenRefresher rotates refresh tokens.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (access string, refresh string, err error)
}

// UserService reads user records and applies balance gifts.
type UserService interface {
	Get(ctx context.Context, userID uuid.UUID) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Gift(ctx context.Context, userID uuid.UUID, amount int64) (model.User, error)
}

// AuthHandler serves registration, login, token refresh and logout.
type AuthHandler struct {
	auth   AuthService
	tokens TokenRefresher
	users  UserService
	logger *logger.Logger
}

func NewAuthHandler(auth AuthService, tokens TokenRefresher, users UserService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, tokens: tokens, users: users, logger: logger}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User         model.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.RefreshToken == "" {
		writeErrorMessage(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	access, refresh, err := h.tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: access, RefreshToken: refresh})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(h.logger, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the caller's own user record.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeErrorMessage(w, http.StatusUnauthorized, "missing identity")
		return
	}

	user, err := h.users.Get(r.Context(), identity.UserID)
	if err != nil {
		writeError(h.logger, w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
