package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrConflict signals the compare-and-swap guard rejected a write
	// because the stored status no longer matches the expected one.
	ErrConflict = errors.New("order status changed concurrently")
)

// Filter narrows order listings.
type Filter struct {
	ResidentID *uuid.UUID
	VendorID   *uuid.UUID
	SocietyID  *int64
	Status     *domain.Status
}

// Page is a 1-based pagination window.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset for the window.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Repository persists the order aggregate with its items and per-service
// status rows.
type Repository interface {
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	List(ctx context.Context, filter Filter, page Page) ([]*domain.Order, int64, error)

	// UpdateTransition persists an already-advanced aggregate (status,
	// corrected items, service rows, stamps) guarded by the status the
	// caller observed before advancing. A mismatch yields ErrConflict and
	// leaves the stored aggregate untouched.
	UpdateTransition(ctx context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error)
}
