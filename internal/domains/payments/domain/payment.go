// Package domain models the financial settlement attached to an order. A
// payment is created when the order becomes billable and mutates only
// through gateway callbacks.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus moves PENDING to COMPLETED or FAILED; either settled state
// may be refunded.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
	PaymentRefunded  PaymentStatus = "REFUNDED"
)

// PaymentMethod enumerates supported settlement channels.
type PaymentMethod string

const (
	MethodCash       PaymentMethod = "CASH"
	MethodUPI        PaymentMethod = "UPI"
	MethodCard       PaymentMethod = "CARD"
	MethodNetBanking PaymentMethod = "NET_BANKING"
)

var (
	ErrInvalidPaymentTransition = errors.New("invalid payment status transition")
	ErrInvalidAmount            = errors.New("payment amount must be positive")
	ErrInvalidMethod            = errors.New("payment method is invalid")
	ErrEmptyGatewayReference    = errors.New("gateway payment reference is required")
)

// allowed enumerates the legal payment status edges.
var allowed = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed},
	PaymentCompleted: {PaymentRefunded},
	PaymentFailed:    {PaymentRefunded},
}

// ToMethod parses and validates a payment method string.
func ToMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch method {
	case MethodCash, MethodUPI, MethodCard, MethodNetBanking:
		return method, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, s)
	}
}

// Payment records one settlement attempt against an order.
type Payment struct {
	PaymentID uuid.UUID
	OrderID   uuid.UUID
	Amount    decimal.Decimal
	Method    PaymentMethod
	Status    PaymentStatus

	// Gateway references as returned by the payment provider.
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string

	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPayment opens a pending settlement for the given amount.
func NewPayment(orderID uuid.UUID, amount decimal.Decimal, method PaymentMethod) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, amount)
	}
	if _, err := ToMethod(string(method)); err != nil {
		return nil, err
	}
	return &Payment{
		PaymentID: uuid.New(),
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    PaymentPending,
	}, nil
}

// canTransition reports whether the edge is legal.
func (p *Payment) canTransition(target PaymentStatus) bool {
	for _, next := range allowed[p.Status] {
		if next == target {
			return true
		}
	}
	return false
}

// Complete settles the payment with the gateway's references.
func (p *Payment) Complete(gatewayPaymentID, gatewaySignature string, at time.Time) error {
	if !p.canTransition(PaymentCompleted) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, p.Status, PaymentCompleted)
	}
	if strings.TrimSpace(gatewayPaymentID) == "" {
		return ErrEmptyGatewayReference
	}
	p.Status = PaymentCompleted
	p.GatewayPaymentID = gatewayPaymentID
	p.GatewaySignature = gatewaySignature
	p.PaidAt = &at
	p.UpdatedAt = at
	return nil
}

// Fail marks the attempt as unsuccessful.
func (p *Payment) Fail(at time.Time) error {
	if !p.canTransition(PaymentFailed) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, p.Status, PaymentFailed)
	}
	p.Status = PaymentFailed
	p.UpdatedAt = at
	return nil
}

// Refund reverses a settled or failed-but-captured payment.
func (p *Payment) Refund(at time.Time) error {
	if !p.canTransition(PaymentRefunded) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidPaymentTransition, p.Status, PaymentRefunded)
	}
	p.Status = PaymentRefunded
	p.UpdatedAt = at
	return nil
}
