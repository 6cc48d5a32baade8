package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	catalogports "github.com/societyos/laundry-api/internal/domains/catalog/ports"
	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
)

// Service orchestrates the orders bounded context use cases.
type Service struct {
	repo     ports.Repository
	catalog  catalogports.Service
	policy   domain.TransitionPolicy
	notifier ports.Notifier
	events   ports.EventPublisher
	logger   *slog.Logger

	// sideEffectTimeout bounds the detached notification/event attempt.
	sideEffectTimeout time.Duration
}

// Option configures the orders service.
type Option func(*Service)

// WithTransitionPolicy overrides the default role table.
func WithTransitionPolicy(policy domain.TransitionPolicy) Option {
	return func(s *Service) {
		if policy != nil {
			s.policy = policy
		}
	}
}

// WithNotifier attaches a best-effort push notification sink.
func WithNotifier(notifier ports.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithEventPublisher attaches a best-effort broker event sink.
func WithEventPublisher(events ports.EventPublisher) Option {
	return func(s *Service) { s.events = events }
}

// WithLogger attaches structured logging for side-effect failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the orders service with its dependencies.
func NewService(repo ports.Repository, catalog catalogports.Service, opts ...Option) *Service {
	s := &Service{
		repo:              repo,
		catalog:           catalog,
		policy:            domain.DefaultTransitionPolicy(),
		logger:            slog.Default(),
		sideEffectTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CreateOrder validates vendor eligibility, prices every item against the
// rate card, and materializes the aggregate in BOOKING_CREATED.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	serviceIDs := lo.Map(input.Items, func(item ports.ItemInput, _ int) int64 { return item.ServiceID })
	if err := s.catalog.CheckEligibility(ctx, input.VendorID, serviceIDs); err != nil {
		return nil, err
	}
	quotes := lo.Map(input.Items, func(item ports.ItemInput, _ int) catalogports.ItemQuote {
		return catalogports.ItemQuote{
			ServiceID: item.ServiceID,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	})
	estimate, err := s.catalog.PriceEstimate(ctx, input.VendorID, quotes)
	if err != nil {
		return nil, err
	}
	items := make([]domain.OrderItem, 0, len(estimate.Items))
	for _, priced := range estimate.Items {
		item, err := domain.NewOrderItem(priced.ServiceID, priced.ItemName, priced.Quantity, priced.UnitPrice)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	order, err := domain.NewOrder(
		input.ResidentID, input.VendorID, input.SocietyID,
		input.PickupAddress, input.PickupDatetime, input.ExpectedDelivery,
		input.DeliveryPreference, items,
	)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, order)
}

// GetOrder loads one aggregate with its items and status rows.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

// ListOrders returns a page of orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.Filter, page ports.Page) ([]*domain.Order, int64, error) {
	return s.repo.List(ctx, filter, page)
}

// AdvanceOrder applies one aggregate transition under compare-and-swap and
// dispatches side effects off the mutation path.
func (s *Service) AdvanceOrder(ctx context.Context, input ports.AdvanceOrderInput) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	expected := input.Expected
	if expected == "" {
		expected = order.Status
	} else if order.Status != expected {
		return nil, fmt.Errorf("%w: expected %s, found %s", ports.ErrConflict, expected, order.Status)
	}
	from := order.Status
	err = order.Advance(domain.AdvanceRequest{
		Target:      input.Target,
		Actor:       input.Actor,
		Corrections: input.Corrections,
	}, s.policy)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.UpdateTransition(ctx, order, expected)
	if err != nil {
		return nil, err
	}
	s.dispatchSideEffects(ports.StatusChange{
		OrderID:     saved.OrderID,
		OrderNumber: saved.OrderNumber,
		ResidentID:  saved.ResidentID,
		VendorID:    saved.VendorID,
		From:        from,
		To:          saved.Status,
	})
	return saved, nil
}

// AdvanceServiceStatus applies one per-service transition on a PARTIAL
// order and re-derives the aggregate status from the merge rule.
func (s *Service) AdvanceServiceStatus(ctx context.Context, input ports.AdvanceServiceInput) (*domain.Order, error) {
	order, err := s.repo.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	row, err := order.ServiceStatus(input.ServiceID)
	if err != nil {
		return nil, err
	}
	if input.Expected != "" && row.Status != input.Expected {
		return nil, fmt.Errorf("%w: service %d expected %s, found %s", ports.ErrConflict, input.ServiceID, input.Expected, row.Status)
	}
	aggregateBefore := order.Status
	err = order.AdvanceService(input.ServiceID, domain.AdvanceRequest{
		Target:      input.Target,
		Actor:       input.Actor,
		Corrections: input.Corrections,
	}, s.policy)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.UpdateTransition(ctx, order, aggregateBefore)
	if err != nil {
		return nil, err
	}
	serviceID := input.ServiceID
	s.dispatchSideEffects(ports.StatusChange{
		OrderID:     saved.OrderID,
		OrderNumber: saved.OrderNumber,
		ResidentID:  saved.ResidentID,
		VendorID:    saved.VendorID,
		From:        aggregateBefore,
		To:          saved.Status,
		ServiceID:   &serviceID,
	})
	return saved, nil
}

// dispatchSideEffects notifies sinks about a committed transition. It runs
// detached from the caller: a sink failure is logged and never rolls back
// or delays the order mutation.
func (s *Service) dispatchSideEffects(change ports.StatusChange) {
	if s.notifier == nil && s.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sideEffectTimeout)
		defer cancel()
		if s.notifier != nil {
			if err := s.notifier.StatusChanged(ctx, change); err != nil {
				s.logger.Warn("order status notification failed",
					slog.String("order_id", change.OrderID.String()),
					slog.String("status", string(change.To)),
					slog.String("error", err.Error()))
			}
		}
		if s.events != nil {
			if err := s.events.PublishStatusChanged(ctx, change); err != nil {
				s.logger.Warn("order status event publish failed",
					slog.String("order_id", change.OrderID.String()),
					slog.String("status", string(change.To)),
					slog.String("error", err.Error()))
			}
		}
	}()
}

var _ ports.Service = (*Service)(nil)
