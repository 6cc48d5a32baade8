package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter. The status guard in
// UpdateTransition runs under the write lock, giving the same
// compare-and-swap semantics as the relational adapter.
type Repository struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*domain.Order
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{orders: map[uuid.UUID]*domain.Order{}}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := cloneOrder(order)
	now := time.Now()
	clone.CreatedAt = now
	clone.UpdatedAt = now
	for idx := range clone.Items {
		r.nextID++
		clone.Items[idx].ItemID = r.nextID
		clone.Items[idx].CreatedAt = now
	}
	for idx := range clone.ServiceStatuses {
		r.nextID++
		clone.ServiceStatuses[idx].StatusID = r.nextID
		clone.ServiceStatuses[idx].CreatedAt = now
		clone.ServiceStatuses[idx].UpdatedAt = now
	}
	r.orders[clone.OrderID] = clone
	return cloneOrder(clone), nil
}

func (r *Repository) Get(_ context.Context, orderID uuid.UUID) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[orderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneOrder(order), nil
}

func (r *Repository) List(_ context.Context, filter ports.Filter, page ports.Page) ([]*domain.Order, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*domain.Order
	for _, order := range r.orders {
		if filter.ResidentID != nil && order.ResidentID != *filter.ResidentID {
			continue
		}
		if filter.VendorID != nil && order.VendorID != *filter.VendorID {
			continue
		}
		if filter.SocietyID != nil && order.SocietyID != *filter.SocietyID {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		matched = append(matched, cloneOrder(order))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	total := int64(len(matched))
	start := page.Offset()
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + page.Limit
	if page.Limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *Repository) UpdateTransition(_ context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.OrderID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if stored.Status != expected {
		return nil, ports.ErrConflict
	}
	clone := cloneOrder(order)
	clone.CreatedAt = stored.CreatedAt
	r.orders[order.OrderID] = clone
	return cloneOrder(clone), nil
}

func cloneOrder(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = make([]domain.OrderItem, len(order.Items))
	copy(clone.Items, order.Items)
	clone.ServiceStatuses = make([]domain.OrderServiceStatus, len(order.ServiceStatuses))
	copy(clone.ServiceStatuses, order.ServiceStatuses)
	if order.FinalPrice != nil {
		price := *order.FinalPrice
		clone.FinalPrice = &price
	}
	if order.ActualDelivery != nil {
		at := *order.ActualDelivery
		clone.ActualDelivery = &at
	}
	return &clone
}
