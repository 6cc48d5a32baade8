package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/catalog/domain"
	"github.com/societyos/laundry-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog persistence adapter.
type Repository struct {
	mu         sync.RWMutex
	vendors    map[uuid.UUID]*domain.Vendor
	offerings  map[uuid.UUID][]domain.VendorService
	rateCards  map[uuid.UUID][]domain.VendorRateCard
	categories []domain.ParentCategory
	services   []domain.ServiceCategory
	templates  map[int64]*domain.ServiceWorkflowTemplate
	nextID     int64
}

func NewRepository() *Repository {
	return &Repository{
		vendors:   map[uuid.UUID]*domain.Vendor{},
		offerings: map[uuid.UUID][]domain.VendorService{},
		rateCards: map[uuid.UUID][]domain.VendorRateCard{},
		templates: map[int64]*domain.ServiceWorkflowTemplate{},
	}
}

func (r *Repository) GetVendor(_ context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	vendor, ok := r.vendors[vendorID]
	if !ok {
		return nil, ports.ErrVendorNotFound
	}
	clone := *vendor
	return &clone, nil
}

func (r *Repository) SaveVendor(_ context.Context, vendor *domain.Vendor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *vendor
	r.vendors[vendor.VendorID] = &clone
	return nil
}

func (r *Repository) ListVendors(_ context.Context, filter ports.VendorFilter, page ports.Page) ([]*domain.Vendor, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var matched []*domain.Vendor
	for _, vendor := range r.vendors {
		if filter.SocietyID != nil && vendor.SocietyID != *filter.SocietyID {
			continue
		}
		if filter.CategoryID != nil && vendor.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.Approved && vendor.ApprovalStatus != domain.ApprovalApproved {
			continue
		}
		clone := *vendor
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].BusinessName < matched[j].BusinessName })
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

func (r *Repository) Offerings(_ context.Context, vendorID uuid.UUID) ([]domain.VendorService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.offerings[vendorID]
	out := make([]domain.VendorService, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *Repository) SaveOffering(_ context.Context, offering domain.VendorService) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.offerings[offering.VendorID]
	for idx := range rows {
		if rows[idx].ServiceID == offering.ServiceID {
			rows[idx] = offering
			return nil
		}
	}
	r.nextID++
	offering.VendorServiceID = r.nextID
	r.offerings[offering.VendorID] = append(rows, offering)
	return nil
}

func (r *Repository) RateCards(_ context.Context, vendorID uuid.UUID) ([]domain.VendorRateCard, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.rateCards[vendorID]
	out := make([]domain.VendorRateCard, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *Repository) SaveRateCard(_ context.Context, card domain.VendorRateCard) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.rateCards[card.VendorID]
	for idx := range rows {
		if rows[idx].RateCardID == card.RateCardID && card.RateCardID != 0 {
			rows[idx] = card
			return nil
		}
	}
	r.nextID++
	card.RateCardID = r.nextID
	r.rateCards[card.VendorID] = append(rows, card)
	return nil
}

func (r *Repository) ListParentCategories(_ context.Context, liveOnly bool) ([]domain.ParentCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ParentCategory
	for _, category := range r.categories {
		if liveOnly && !category.IsLive {
			continue
		}
		out = append(out, category)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

// SeedParentCategory registers reference data; intended for wiring and tests.
func (r *Repository) SeedParentCategory(category domain.ParentCategory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, category)
}

func (r *Repository) ListServices(_ context.Context, parentCategoryID int64) ([]domain.ServiceCategory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.ServiceCategory
	for _, service := range r.services {
		if service.ParentCategoryID == parentCategoryID {
			out = append(out, service)
		}
	}
	return out, nil
}

// SeedService registers reference data; intended for wiring and tests.
func (r *Repository) SeedService(service domain.ServiceCategory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services = append(r.services, service)
}

func (r *Repository) WorkflowTemplate(_ context.Context, serviceID int64) (*domain.ServiceWorkflowTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	template, ok := r.templates[serviceID]
	if !ok {
		return nil, ports.ErrTemplateNotFound
	}
	clone := *template
	clone.Steps = make([]domain.WorkflowStep, len(template.Steps))
	copy(clone.Steps, template.Steps)
	return &clone, nil
}

// SeedWorkflowTemplate registers reference data; intended for wiring and tests.
func (r *Repository) SeedWorkflowTemplate(template domain.ServiceWorkflowTemplate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := template
	r.templates[template.ServiceID] = &clone
}
