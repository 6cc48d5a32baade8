// Package application implements payment use cases. Settlement amounts come
// from the order aggregate; status changes come only from gateway callbacks.
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	ordersdomain "github.com/societyos/laundry-api/internal/domains/orders/domain"
	ordersports "github.com/societyos/laundry-api/internal/domains/orders/ports"
	"github.com/societyos/laundry-api/internal/domains/payments/domain"
	"github.com/societyos/laundry-api/internal/domains/payments/ports"
)

var _ ports.Service = (*Service)(nil)

// Service implements the payments port.
type Service struct {
	repo   ports.Repository
	orders ordersports.Service
	logger *slog.Logger
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService wires the payments application service.
func NewService(repo ports.Repository, orders ordersports.Service, opts ...Option) *Service {
	s := &Service{repo: repo, orders: orders, logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// InitiatePayment opens a pending settlement once the order is billable.
// The amount is the order's final price; delivered orders always carry one
// via the estimate fallback on completion, so the estimate covers the gap.
func (s *Service) InitiatePayment(ctx context.Context, input ports.InitiatePaymentInput) (*domain.Payment, error) {
	order, err := s.orders.GetOrder(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case ordersdomain.StatusDelivered, ordersdomain.StatusCompleted:
	default:
		return nil, fmt.Errorf("%w: order %s is %s", ports.ErrOrderNotBillable, order.OrderID, order.Status)
	}
	if existing, err := s.repo.GetByOrder(ctx, input.OrderID); err == nil {
		if existing.Status != domain.PaymentFailed {
			return nil, fmt.Errorf("%w: payment %s is %s", ports.ErrPaymentExists, existing.PaymentID, existing.Status)
		}
		// A failed attempt may be retried with a fresh payment.
	} else if !errors.Is(err, ports.ErrPaymentNotFound) {
		return nil, err
	}
	amount := order.EstimatedPrice
	if order.FinalPrice != nil {
		amount = *order.FinalPrice
	}
	payment, err := domain.NewPayment(order.OrderID, amount, input.Method)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment: %w", err)
	}
	s.logger.InfoContext(ctx, "payment initiated",
		slog.String("payment_id", payment.PaymentID.String()),
		slog.String("order_id", order.OrderID.String()),
		slog.String("amount", amount.StringFixed(2)))
	return payment, nil
}

// HandleGatewayCallback applies the provider's settlement result.
func (s *Service) HandleGatewayCallback(ctx context.Context, paymentID uuid.UUID, input ports.GatewayCallbackInput) (*domain.Payment, error) {
	payment, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	payment.GatewayOrderID = input.GatewayOrderID
	if input.Success {
		err = payment.Complete(input.GatewayPaymentID, input.GatewaySignature, now)
	} else {
		err = payment.Fail(now)
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment %s: %w", paymentID, err)
	}
	s.logger.InfoContext(ctx, "gateway callback applied",
		slog.String("payment_id", payment.PaymentID.String()),
		slog.String("status", string(payment.Status)))
	return payment, nil
}

// RefundPayment reverses a settled payment.
func (s *Service) RefundPayment(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	payment, err := s.repo.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if err := payment.Refund(time.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("save payment %s: %w", paymentID, err)
	}
	return payment, nil
}

// GetByOrder loads the settlement attached to an order.
func (s *Service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	return s.repo.GetByOrder(ctx, orderID)
}
