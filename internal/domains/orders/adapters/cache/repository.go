// Package cache wraps the orders repository with a Redis read-through cache.
// Order aggregates are cached by ID; every status write invalidates the entry
// so callers never observe a stale status after a committed transition.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
)

const defaultTTL = 5 * time.Minute

var _ ports.Repository = (*Repository)(nil)

// Repository decorates an orders repository with cache-aside reads.
type Repository struct {
	inner  ports.Repository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

type Option func(*Repository)

// WithTTL overrides the cache entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithLogger injects a slog logger for cache diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = logger
	}
}

// NewRepository wires the cache decorator around the given repository.
func NewRepository(inner ports.Repository, client *redis.Client, opts ...Option) *Repository {
	r := &Repository{
		inner:  inner,
		client: client,
		ttl:    defaultTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func orderKey(orderID uuid.UUID) string {
	return fmt.Sprintf("orders:order:%s", orderID)
}

// Create inserts through to the inner repository and primes the cache.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	created, err := r.inner.Create(ctx, order)
	if err != nil {
		return nil, err
	}
	r.set(ctx, created)
	return created, nil
}

// Get serves from Redis when possible and falls back to the inner repository.
// Cache failures degrade to a direct read, never to an error.
func (r *Repository) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	if r.client != nil {
		raw, err := r.client.Get(ctx, orderKey(orderID)).Bytes()
		switch {
		case err == nil:
			var order domain.Order
			if unmarshalErr := json.Unmarshal(raw, &order); unmarshalErr == nil {
				return &order, nil
			}
			r.logWarn(ctx, "dropping undecodable cache entry", orderID, err)
			r.invalidate(ctx, orderID)
		case !errors.Is(err, redis.Nil):
			r.logWarn(ctx, "cache read failed", orderID, err)
		}
	}
	order, err := r.inner.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	r.set(ctx, order)
	return order, nil
}

// List always hits the inner repository. Filtered windows are not worth
// caching next to per-order entries.
func (r *Repository) List(ctx context.Context, filter ports.Filter, page ports.Page) ([]*domain.Order, int64, error) {
	return r.inner.List(ctx, filter, page)
}

// UpdateTransition writes through and refreshes the cached aggregate. On a
// conflict the entry is invalidated so the next read observes the winner.
func (r *Repository) UpdateTransition(ctx context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error) {
	updated, err := r.inner.UpdateTransition(ctx, order, expected)
	if err != nil {
		if errors.Is(err, ports.ErrConflict) {
			r.invalidate(ctx, order.OrderID)
		}
		return nil, err
	}
	r.set(ctx, updated)
	return updated, nil
}

func (r *Repository) set(ctx context.Context, order *domain.Order) {
	if r.client == nil || order == nil {
		return
	}
	raw, err := json.Marshal(order)
	if err != nil {
		r.logWarn(ctx, "cache encode failed", order.OrderID, err)
		return
	}
	if err := r.client.Set(ctx, orderKey(order.OrderID), raw, r.ttl).Err(); err != nil {
		r.logWarn(ctx, "cache write failed", order.OrderID, err)
	}
}

func (r *Repository) invalidate(ctx context.Context, orderID uuid.UUID) {
	if r.client == nil {
		return
	}
	if err := r.client.Del(ctx, orderKey(orderID)).Err(); err != nil {
		r.logWarn(ctx, "cache invalidation failed", orderID, err)
	}
}

func (r *Repository) logWarn(ctx context.Context, msg string, orderID uuid.UUID, err error) {
	if r.logger == nil {
		return
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, msg,
		slog.String("order_id", orderID.String()), slog.String("error", err.Error()))
}
