package model

import "github.com/google/uuid"

// TokenManager generates and validates access/refresh tokens.
type TokenManager interface {
	GenerateAccessToken(userID uuid.UUID, isAdmin bool) (string, error)
	GenerateRefreshToken(userID uuid.UUID) (token string, jti string, err error)
	ParseAccessToken(token string) (Identity, error)
	ParseRefreshToken(token string) (userID uuid.UUID, jti string, err error)
}

// Identity is the authenticated caller resolved from an access token.
// IsAdmin is a server-verified claim, not client state.
type Identity struct {
	UserID  uuid.UUID
	IsAdmin bool
}
