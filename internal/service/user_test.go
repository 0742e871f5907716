package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sourpow/tbucks-server/internal/model"
	"github.com/sourpow/tbucks-server/internal/testutil"
)

func newUserService(userStore *MockUserStore, pub *RecordingPublisher) *User {
	return NewUser(userStore, pub, testutil.MakeNoopLogger())
}

func TestUser_Gift(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name      string
		amount    int64
		mockSetup func(*MockUserStore)
		wantErr   error
	}{
		{
			name:   "successful gift",
			amount: 50,
			mockSetup: func(userStore *MockUserStore) {
				userStore.On("AddBalance", mock.Anything, userID, int64(50)).
					Return(model.User{ID: userID, Balance: 150}, nil)
				userStore.On("List", mock.Anything).Return([]model.User{{ID: userID, Balance: 150}}, nil)
			},
		},
		{
			name:      "zero amount",
			amount:    0,
			mockSetup: func(*MockUserStore) {},
			wantErr:   model.ErrAmountNotPositive,
		},
		{
			name:      "negative amount",
			amount:    -10,
			mockSetup: func(*MockUserStore) {},
			wantErr:   model.ErrAmountNotPositive,
		},
		{
			name:   "unknown user",
			amount: 50,
			mockSetup: func(userStore *MockUserStore) {
				userStore.On("AddBalance", mock.Anything, userID, int64(50)).
					Return(model.User{}, model.ErrNotFound)
			},
			wantErr: model.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userStore := &MockUserStore{}
			pub := &RecordingPublisher{}
			tt.mockSetup(userStore)

			service := newUserService(userStore, pub)

			user, err := service.Gift(context.Background(), userID, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.events)
			} else {
				require.NoError(t, err)
				assert.Equal(t, int64(150), user.Balance)
				assert.Contains(t, pub.topics(), model.TopicUser(userID))
				assert.Contains(t, pub.topics(), model.TopicUsers)
			}

			userStore.AssertExpectations(t)
		})
	}
}

func TestUser_Get(t *testing.T) {
	userID := uuid.New()

	userStore := &MockUserStore{}
	userStore.On("GetByID", mock.Anything, userID).
		Return(model.User{ID: userID, Username: "lachlan", Balance: 40}, nil)

	service := newUserService(userStore, &RecordingPublisher{})

	user, err := service.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "lachlan", user.Username)
	assert.Equal(t, int64(40), user.Balance)
}

func TestUser_List(t *testing.T) {
	userStore := &MockUserStore{}
	userStore.On("List", mock.Anything).Return([]model.User{
		{Username: "lachlan"},
		{Username: "admin"},
	}, nil)

	service := newUserService(userStore, &RecordingPublisher{})

	users, err := service.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
