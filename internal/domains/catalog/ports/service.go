package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/societyos/laundry-api/internal/domains/catalog/domain"
)

// ItemQuote is one order line to be priced against the rate card.
type ItemQuote struct {
	ServiceID int64
	ItemName  string
	Quantity  int
	// UnitPrice is the caller-supplied price, validated against the rate
	// card when present. Nil means resolve from the rate card.
	UnitPrice *decimal.Decimal
}

// PricedItem is a quote with its settled unit price and line total.
type PricedItem struct {
	ServiceID  int64
	ItemName   string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
}

// Estimate is the result of pricing a prospective order.
type Estimate struct {
	Items          []PricedItem
	EstimatedPrice decimal.Decimal
}

// Service exposes catalog use cases to other contexts and adapters.
type Service interface {
	// CheckEligibility fails with domain.ErrVendorNotEligible naming the
	// first service the vendor cannot fulfil.
	CheckEligibility(ctx context.Context, vendorID uuid.UUID, serviceIDs []int64) error

	// PriceEstimate resolves or validates every quote against the vendor's
	// active rate cards and sums the line totals.
	PriceEstimate(ctx context.Context, vendorID uuid.UUID, quotes []ItemQuote) (*Estimate, error)

	GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error)
	ListVendors(ctx context.Context, filter VendorFilter, page Page) ([]*domain.Vendor, int64, error)
	ListParentCategories(ctx context.Context) ([]domain.ParentCategory, error)
	ListServices(ctx context.Context, parentCategoryID int64) ([]domain.ServiceCategory, error)
	VendorRateCards(ctx context.Context, vendorID uuid.UUID) ([]domain.VendorRateCard, error)
	WorkflowTemplate(ctx context.Context, serviceID int64) (*domain.ServiceWorkflowTemplate, error)
}
