// Package memory backs the payments repository with an in-process map for
// tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/payments/domain"
	"github.com/societyos/laundry-api/internal/domains/payments/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory payment store.
type Repository struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

// NewRepository builds an empty store.
func NewRepository() *Repository {
	return &Repository{payments: make(map[uuid.UUID]*domain.Payment)}
}

// Get loads one payment.
func (r *Repository) Get(_ context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	payment, ok := r.payments[paymentID]
	if !ok {
		return nil, ports.ErrPaymentNotFound
	}
	return clonePayment(payment), nil
}

// GetByOrder loads the most recent payment attached to an order.
func (r *Repository) GetByOrder(_ context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.Payment
	for _, payment := range r.payments {
		if payment.OrderID != orderID {
			continue
		}
		if latest == nil || payment.CreatedAt.After(latest.CreatedAt) {
			latest = payment
		}
	}
	if latest == nil {
		return nil, ports.ErrPaymentNotFound
	}
	return clonePayment(latest), nil
}

// Save upserts the payment.
func (r *Repository) Save(_ context.Context, payment *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := clonePayment(payment)
	now := time.Now()
	if existing, ok := r.payments[payment.PaymentID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	r.payments[payment.PaymentID] = stored
	payment.CreatedAt = stored.CreatedAt
	payment.UpdatedAt = stored.UpdatedAt
	return nil
}

func clonePayment(payment *domain.Payment) *domain.Payment {
	clone := *payment
	if payment.PaidAt != nil {
		paidAt := *payment.PaidAt
		clone.PaidAt = &paidAt
	}
	return &clone
}
