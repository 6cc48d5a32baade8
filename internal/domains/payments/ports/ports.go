package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/payments/domain"
)

var (
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrOrderNotBillable rejects payment initiation before the order has
	// been delivered.
	ErrOrderNotBillable = errors.New("order is not in a billable state")
	// ErrPaymentExists rejects a second open payment for the same order.
	ErrPaymentExists = errors.New("payment already exists for order")
)

// Repository persists payment records.
type Repository interface {
	Get(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
	Save(ctx context.Context, payment *domain.Payment) error
}

// InitiatePaymentInput opens a settlement for a delivered order.
type InitiatePaymentInput struct {
	OrderID uuid.UUID
	Method  domain.PaymentMethod
}

// GatewayCallbackInput carries the payment provider's webhook result.
type GatewayCallbackInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	Success          bool
}

// Service exposes payment use cases to adapters.
type Service interface {
	InitiatePayment(ctx context.Context, input InitiatePaymentInput) (*domain.Payment, error)
	HandleGatewayCallback(ctx context.Context, paymentID uuid.UUID, input GatewayCallbackInput) (*domain.Payment, error)
	RefundPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error)
}
