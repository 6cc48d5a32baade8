package application

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/societyos/laundry-api/internal/domains/identity/adapters/memory"
	"github.com/societyos/laundry-api/internal/domains/identity/domain"
	"github.com/societyos/laundry-api/internal/domains/identity/ports"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

func registerInput() ports.RegisterUserInput {
	return ports.RegisterUserInput{
		FullName:   gofakeit.Name(),
		Phone:      gofakeit.Phone(),
		Email:      gofakeit.Email(),
		UserType:   actor.RoleResident,
		SocietyID:  12,
		FlatNumber: "A-101",
	}
}

func TestRegisterUser(t *testing.T) {
	svc := NewService(memory.NewRepository())
	ctx := context.Background()
	input := registerInput()

	user, err := svc.RegisterUser(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, input.FullName, user.FullName)
	assert.True(t, user.IsActive)

	loaded, err := svc.GetUser(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, user.UserID, loaded.UserID)
	assert.Equal(t, input.Email, loaded.Email)
}

func TestRegisterUser_InvalidType(t *testing.T) {
	svc := NewService(memory.NewRepository())
	input := registerInput()
	input.UserType = actor.Role("GUEST")

	_, err := svc.RegisterUser(context.Background(), input)
	require.ErrorIs(t, err, domain.ErrInvalidUserType)
}

func TestDeviceTokenLifecycle(t *testing.T) {
	svc := NewService(memory.NewRepository())
	ctx := context.Background()
	user, err := svc.RegisterUser(ctx, registerInput())
	require.NoError(t, err)

	// No registered device resolves to empty, not an error.
	token, err := svc.DeviceToken(ctx, user.UserID)
	require.NoError(t, err)
	assert.Empty(t, token)

	_, err = svc.RegisterDeviceToken(ctx, user.UserID, "fcm-token-1")
	require.NoError(t, err)
	_, err = svc.RegisterDeviceToken(ctx, user.UserID, "fcm-token-2")
	require.NoError(t, err)

	token, err = svc.DeviceToken(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "fcm-token-2", token)

	_, err = svc.RemoveDeviceToken(ctx, user.UserID, "fcm-token-2")
	require.NoError(t, err)
	token, err = svc.DeviceToken(ctx, user.UserID)
	require.NoError(t, err)
	assert.Equal(t, "fcm-token-1", token)
}

func TestDeviceToken_UnknownUser(t *testing.T) {
	svc := NewService(memory.NewRepository())

	_, err := svc.DeviceToken(context.Background(), uuid.New())
	require.ErrorIs(t, err, ports.ErrUserNotFound)
}
