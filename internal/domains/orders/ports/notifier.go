package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
)

// StatusChange describes one committed transition for side-effect sinks.
type StatusChange struct {
	OrderID     uuid.UUID
	OrderNumber string
	ResidentID  uuid.UUID
	VendorID    uuid.UUID
	From        domain.Status
	To          domain.Status
	// ServiceID is set when the change was a per-service transition.
	ServiceID *int64
}

// Notifier pushes a best-effort notification about a committed transition.
// Implementations must not block order mutation; failures are logged and
// never returned to the transition caller.
type Notifier interface {
	StatusChanged(ctx context.Context, change StatusChange) error
}

// EventPublisher emits order lifecycle events to the message broker.
// Same contract as Notifier: at most one attempt, never on the mutation's
// critical path.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, change StatusChange) error
}
