package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/identity/domain"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

var ErrUserNotFound = errors.New("user not found")

// Repository persists user accounts.
type Repository interface {
	Get(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	Save(ctx context.Context, user *domain.User) error
}

// RegisterUserInput carries a signup request.
type RegisterUserInput struct {
	FullName   string
	Phone      string
	Email      string
	UserType   actor.Role
	SocietyID  int64
	FlatNumber string
}

// Service exposes identity use cases to adapters and other contexts.
type Service interface {
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) (*domain.User, error)
	RemoveDeviceToken(ctx context.Context, userID uuid.UUID, token string) (*domain.User, error)

	// DeviceToken resolves the most recent FCM token for push delivery.
	// Returns an empty string without error when the user has no device.
	DeviceToken(ctx context.Context, userID uuid.UUID) (string, error)
}
