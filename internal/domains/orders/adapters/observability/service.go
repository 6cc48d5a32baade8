package observability

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
)

const tracerName = "github.com/societyos/laundry-api/internal/domains/orders/adapters/observability/service"

// Service decorates an orders application port with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// CreateOrder books a new order with instrumentation.
func (s *Service) CreateOrder(ctx context.Context, input ports.CreateOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.CreateOrder",
		attribute.String("order.resident_id", input.ResidentID.String()),
		attribute.String("order.vendor_id", input.VendorID.String()),
		attribute.Int("order.item_count", len(input.Items)),
	)
	defer span.End()

	s.logInfo(ctx, "creating order", slog.String("resident_id", input.ResidentID.String()), slog.String("vendor_id", input.VendorID.String()))
	result, err := s.inner.CreateOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create order", slog.String("vendor_id", input.VendorID.String()))
	}
	if result != nil {
		s.metrics.recordCreated(ctx, result.Status)
		span.SetAttributes(attribute.String("order.id", result.OrderID.String()))
		s.logInfo(ctx, "order created", slog.String("order_id", result.OrderID.String()), slog.String("order_number", result.OrderNumber))
	}
	return result, nil
}

// GetOrder loads a single order aggregate.
func (s *Service) GetOrder(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.GetOrder", attribute.String("order.id", orderID.String()))
	defer span.End()

	s.logInfo(ctx, "loading order", slog.String("order_id", orderID.String()))
	result, err := s.inner.GetOrder(ctx, orderID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load order", slog.String("order_id", orderID.String()))
	}
	if result != nil {
		s.logInfo(ctx, "order loaded", slog.String("order_id", result.OrderID.String()), slog.String("status", string(result.Status)))
	}
	return result, nil
}

// ListOrders returns a page of orders matching the filter.
func (s *Service) ListOrders(ctx context.Context, filter ports.Filter, page ports.Page) ([]*domain.Order, int64, error) {
	ctx, span := s.startSpan(ctx, "Service.ListOrders", attribute.Int("page.number", page.Number), attribute.Int("page.limit", page.Limit))
	defer span.End()

	s.logInfo(ctx, "listing orders", slog.Int("page", page.Number))
	result, total, err := s.inner.ListOrders(ctx, filter, page)
	if err != nil {
		return nil, 0, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)), attribute.Int64("order.result.total", total))
	s.logInfo(ctx, "listed orders", slog.Int("count", len(result)), slog.Int64("total", total))
	return result, total, nil
}

// AdvanceOrder moves the aggregate one step along its lifecycle.
func (s *Service) AdvanceOrder(ctx context.Context, input ports.AdvanceOrderInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.AdvanceOrder",
		attribute.String("order.id", input.OrderID.String()),
		attribute.String("order.status.target", string(input.Target)),
		attribute.String("actor.role", string(input.Actor)),
	)
	defer span.End()

	s.logInfo(ctx, "advancing order", slog.String("order_id", input.OrderID.String()), slog.String("target", string(input.Target)))
	result, err := s.inner.AdvanceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance order",
			slog.String("order_id", input.OrderID.String()), slog.String("target", string(input.Target)))
	}
	if result != nil {
		s.metrics.recordTransition(ctx, result.Status)
		s.logInfo(ctx, "order advanced", slog.String("order_id", result.OrderID.String()), slog.String("status", string(result.Status)))
	}
	return result, nil
}

// AdvanceServiceStatus moves one service row on a partial-delivery order.
func (s *Service) AdvanceServiceStatus(ctx context.Context, input ports.AdvanceServiceInput) (*domain.Order, error) {
	ctx, span := s.startSpan(ctx, "Service.AdvanceServiceStatus",
		attribute.String("order.id", input.OrderID.String()),
		attribute.Int64("order.service_id", input.ServiceID),
		attribute.String("order.status.target", string(input.Target)),
	)
	defer span.End()

	s.logInfo(ctx, "advancing service status",
		slog.String("order_id", input.OrderID.String()), slog.Int64("service_id", input.ServiceID), slog.String("target", string(input.Target)))
	result, err := s.inner.AdvanceServiceStatus(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to advance service status",
			slog.String("order_id", input.OrderID.String()), slog.Int64("service_id", input.ServiceID))
	}
	if result != nil {
		s.metrics.recordTransition(ctx, result.Status)
		s.logInfo(ctx, "service status advanced",
			slog.String("order_id", result.OrderID.String()), slog.String("aggregate_status", string(result.Status)))
	}
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersCreated    metric.Int64Counter
	orderTransitions metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	ordersCreated, _ := m.Int64Counter("orders.service.created", metric.WithDescription("Number of orders created"))
	orderTransitions, _ := m.Int64Counter("orders.service.transitions", metric.WithDescription("Number of committed status transitions"))
	return serviceMetrics{
		ordersCreated:    ordersCreated,
		orderTransitions: orderTransitions,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.ordersCreated, 1, attribute.String("order.status", string(status)))
}

func (m serviceMetrics) recordTransition(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.orderTransitions, 1, attribute.String("order.status", string(status)))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
