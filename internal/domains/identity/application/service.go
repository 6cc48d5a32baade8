// Package application implements the identity use cases over the
// repository port.
package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/identity/domain"
	"github.com/societyos/laundry-api/internal/domains/identity/ports"
)

var _ ports.Service = (*Service)(nil)

// Service implements the identity port.
type Service struct {
	repo ports.Repository
}

// NewService wires the identity application service.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

// RegisterUser creates an active account.
func (s *Service) RegisterUser(ctx context.Context, input ports.RegisterUserInput) (*domain.User, error) {
	user, err := domain.NewUser(input.FullName, input.Phone, input.UserType, input.SocietyID)
	if err != nil {
		return nil, err
	}
	user.Email = input.Email
	user.FlatNumber = input.FlatNumber
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// GetUser loads one account.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// RegisterDeviceToken records an FCM token against the account.
func (s *Service) RegisterDeviceToken(ctx context.Context, userID uuid.UUID, token string) (*domain.User, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.RegisterDeviceToken(token); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user %s: %w", userID, err)
	}
	return user, nil
}

// RemoveDeviceToken drops an FCM token from the account.
func (s *Service) RemoveDeviceToken(ctx context.Context, userID uuid.UUID, token string) (*domain.User, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.RemoveDeviceToken(token)
	if err := s.repo.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user %s: %w", userID, err)
	}
	return user, nil
}

// DeviceToken resolves the most recent FCM token for the account.
func (s *Service) DeviceToken(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.LatestDeviceToken(), nil
}
