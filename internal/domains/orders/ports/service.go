package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

// ItemInput is one requested order line. UnitPrice is optional: when absent
// the price resolves from the vendor's rate card.
type ItemInput struct {
	ServiceID int64
	ItemName  string
	Quantity  int
	UnitPrice *decimal.Decimal
}

// CreateOrderInput carries a resident's booking request.
type CreateOrderInput struct {
	ResidentID         uuid.UUID
	VendorID           uuid.UUID
	SocietyID          int64
	CategoryID         int64
	Items              []ItemInput
	PickupDatetime     time.Time
	ExpectedDelivery   time.Time
	PickupAddress      string
	DeliveryPreference domain.DeliveryPreference
}

// AdvanceOrderInput requests one aggregate status transition under the
// compare-and-swap discipline. Expected is the status the caller last
// observed; empty means take the currently stored one.
type AdvanceOrderInput struct {
	OrderID     uuid.UUID
	Expected    domain.Status
	Target      domain.Status
	Actor       actor.Role
	Corrections []domain.ItemCorrection
}

// AdvanceServiceInput requests one per-service transition on a
// PARTIAL-delivery order.
type AdvanceServiceInput struct {
	OrderID     uuid.UUID
	ServiceID   int64
	Expected    domain.Status
	Target      domain.Status
	Actor       actor.Role
	Corrections []domain.ItemCorrection
}

// Service exposes order use cases to adapters.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context, filter Filter, page Page) ([]*domain.Order, int64, error)
	AdvanceOrder(ctx context.Context, input AdvanceOrderInput) (*domain.Order, error)
	AdvanceServiceStatus(ctx context.Context, input AdvanceServiceInput) (*domain.Order, error)
}
