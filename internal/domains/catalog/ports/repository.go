package ports

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/catalog/domain"
)

var (
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrTemplateNotFound = errors.New("workflow template not found")
)

// VendorFilter narrows vendor listings.
type VendorFilter struct {
	SocietyID  *int64
	CategoryID *int64
	Approved   bool
}

// Page is a 1-based pagination window.
type Page struct {
	Number int
	Limit  int
}

// Offset returns the row offset for the window.
func (p Page) Offset() int {
	if p.Number <= 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit
}

// Repository persists catalog reference data.
type Repository interface {
	GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error)
	SaveVendor(ctx context.Context, vendor *domain.Vendor) error
	ListVendors(ctx context.Context, filter VendorFilter, page Page) ([]*domain.Vendor, int64, error)

	Offerings(ctx context.Context, vendorID uuid.UUID) ([]domain.VendorService, error)
	SaveOffering(ctx context.Context, offering domain.VendorService) error

	RateCards(ctx context.Context, vendorID uuid.UUID) ([]domain.VendorRateCard, error)
	SaveRateCard(ctx context.Context, card domain.VendorRateCard) error

	ListParentCategories(ctx context.Context, liveOnly bool) ([]domain.ParentCategory, error)
	ListServices(ctx context.Context, parentCategoryID int64) ([]domain.ServiceCategory, error)

	WorkflowTemplate(ctx context.Context, serviceID int64) (*domain.ServiceWorkflowTemplate, error)
}
