package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sourpow/tbucks-server/internal/model"
	"github.com/sourpow/tbucks-server/internal/service"
	"github.com/sourpow/tbucks-server/internal/testutil"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, password string) (service.Session, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (service.Session, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(service.Session), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

// MockTokenRefresher mocks the TokenRefresher interface
type MockTokenRefresher struct {
	mock.Mock
}

func (m *MockTokenRefresher) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenRefresher) GetIdentity(ctx context.Context, token string) (model.Identity, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Identity), args.Error(1)
}

// MockUserService mocks the UserService interface
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Get(ctx context.Context, userID uuid.UUID) (model.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) Gift(ctx context.Context, userID uuid.UUID, amount int64) (model.User, error) {
	args := m.Called(ctx, userID, amount)
	return args.Get(0).(model.User), args.Error(1)
}

func newAuthHandler(auth *MockAuthService, tokens *MockTokenRefresher, users *MockUserService) *AuthHandler {
	return NewAuthHandler(auth, tokens, users, testutil.MakeNoopLogger())
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*MockAuthService)
		wantStatus int
	}{
		{
			name: "successful registration",
			body: `{"username":"lachlan","password":"hunter2"}`,
			mockSetup: func(auth *MockAuthService) {
				auth.On("Register", mock.Anything, "lachlan", "hunter2").Return(service.Session{
					User:         model.User{Username: "lachlan", Balance: 25},
					AccessToken:  "access-token",
					RefreshToken: "refresh-token",
				}, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "username taken",
			body: `{"username":"lachlan","password":"hunter2"}`,
			mockSetup: func(auth *MockAuthService) {
				auth.On("Register", mock.Anything, "lachlan", "hunter2").
					Return(service.Session{}, model.ErrUsernameTaken)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "malformed body",
			body:       `{"username":`,
			mockSetup:  func(*MockAuthService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &MockAuthService{}
			tt.mockSetup(auth)
			handler := newAuthHandler(auth, &MockTokenRefresher{}, &MockUserService{})

			r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.Register(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusCreated {
				body, _ := io.ReadAll(w.Body)
				assert.Contains(t, string(body), `"accessToken":"access-token"`)
				assert.Contains(t, string(body), `"tBucks":25`)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	auth := &MockAuthService{}
	auth.On("Login", mock.Anything, "lachlan", "wrong").
		Return(service.Session{}, model.ErrInvalidCredentials)
	handler := newAuthHandler(auth, &MockTokenRefresher{}, &MockUserService{})

	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"lachlan","password":"wrong"}`))
	w := httptest.NewRecorder()
	handler.Login(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Refresh(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		mockSetup  func(*MockTokenRefresher)
		wantStatus int
	}{
		{
			name: "successful rotation",
			body: `{"refreshToken":"old-refresh"}`,
			mockSetup: func(tokens *MockTokenRefresher) {
				tokens.On("Refresh", mock.Anything, "old-refresh").Return("new-access", "new-refresh", nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "revoked token",
			body: `{"refreshToken":"old-refresh"}`,
			mockSetup: func(tokens *MockTokenRefresher) {
				tokens.On("Refresh", mock.Anything, "old-refresh").Return("", "", model.ErrTokenRevoked)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "missing token",
			body:       `{}`,
			mockSetup:  func(*MockTokenRefresher) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := &MockTokenRefresher{}
			tt.mockSetup(tokens)
			handler := newAuthHandler(&MockAuthService{}, tokens, &MockUserService{})

			r := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			handler.Refresh(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestAuthHandler_Me(t *testing.T) {
	userID := uuid.New()

	users := &MockUserService{}
	users.On("Get", mock.Anything, userID).
		Return(model.User{ID: userID, Username: "lachlan", Balance: 40}, nil)
	handler := newAuthHandler(&MockAuthService{}, &MockTokenRefresher{}, users)

	r := requestWithIdentity(http.MethodGet, "/api/me", nil, model.Identity{UserID: userID})
	w := httptest.NewRecorder()
	handler.Me(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	body, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(body), `"tBucks":40`)
	assert.NotContains(t, string(body), "PasswordHash")
}
