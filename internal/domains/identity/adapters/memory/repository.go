// Package memory backs the identity repository with an in-process map for
// tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/identity/domain"
	"github.com/societyos/laundry-api/internal/domains/identity/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store.
type Repository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*domain.User
}

// NewRepository builds an empty store.
func NewRepository() *Repository {
	return &Repository{users: make(map[uuid.UUID]*domain.User)}
}

// Get loads one user.
func (r *Repository) Get(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[userID]
	if !ok {
		return nil, ports.ErrUserNotFound
	}
	return cloneUser(user), nil
}

// Save upserts the user.
func (r *Repository) Save(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := cloneUser(user)
	now := time.Now()
	if existing, ok := r.users[user.UserID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.users[user.UserID] = stored
	user.CreatedAt = stored.CreatedAt
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func cloneUser(user *domain.User) *domain.User {
	clone := *user
	clone.DeviceTokens = append([]string(nil), user.DeviceTokens...)
	return &clone
}
