package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/societyos/laundry-api/internal/domains/catalog/domain"
	"github.com/societyos/laundry-api/internal/domains/catalog/ports"
)

// Service orchestrates catalog use cases: vendor eligibility, pricing, and
// reference-data reads.
type Service struct {
	repo ports.Repository

	// priceTolerancePercent bounds how far a caller-supplied unit price may
	// deviate from the rate card. Zero requires an exact match.
	priceTolerancePercent decimal.Decimal
}

// Option configures the catalog service.
type Option func(*Service)

// WithPriceTolerance sets the allowed deviation, in percent of the rate
// card price, for caller-supplied prices.
func WithPriceTolerance(percent decimal.Decimal) Option {
	return func(s *Service) {
		if !percent.IsNegative() {
			s.priceTolerancePercent = percent
		}
	}
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, priceTolerancePercent: decimal.Zero}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// CheckEligibility verifies the vendor can fulfil every requested service.
func (s *Service) CheckEligibility(ctx context.Context, vendorID uuid.UUID, serviceIDs []int64) error {
	vendor, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return err
	}
	offerings, err := s.repo.Offerings(ctx, vendorID)
	if err != nil {
		return err
	}
	for _, serviceID := range lo.Uniq(serviceIDs) {
		if err := vendor.Eligible(serviceID, offerings); err != nil {
			return err
		}
	}
	return nil
}

// PriceEstimate settles a unit price for every quote and sums line totals.
// Quotes without a supplied price resolve from the rate card; supplied
// prices are validated within the configured tolerance.
func (s *Service) PriceEstimate(ctx context.Context, vendorID uuid.UUID, quotes []ports.ItemQuote) (*ports.Estimate, error) {
	cards, err := s.repo.RateCards(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	book := domain.NewRateBook(cards)

	estimate := &ports.Estimate{EstimatedPrice: decimal.Zero}
	for _, quote := range quotes {
		if quote.Quantity <= 0 {
			return nil, fmt.Errorf("item %q: quantity must be greater than zero", quote.ItemName)
		}
		card, err := book.Resolve(vendorID, quote.ServiceID, quote.ItemName)
		if err != nil {
			return nil, err
		}
		unitPrice := card.Price
		if quote.UnitPrice != nil {
			if err := card.ValidatePrice(*quote.UnitPrice, s.priceTolerancePercent); err != nil {
				return nil, err
			}
			unitPrice = *quote.UnitPrice
		}
		total := unitPrice.Mul(decimal.NewFromInt(int64(quote.Quantity)))
		estimate.Items = append(estimate.Items, ports.PricedItem{
			ServiceID:  quote.ServiceID,
			ItemName:   quote.ItemName,
			Quantity:   quote.Quantity,
			UnitPrice:  unitPrice,
			TotalPrice: total,
		})
		estimate.EstimatedPrice = estimate.EstimatedPrice.Add(total)
	}
	return estimate, nil
}

// GetVendor loads one vendor.
func (s *Service) GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	return s.repo.GetVendor(ctx, vendorID)
}

// ListVendors returns a page of vendors matching the filter.
func (s *Service) ListVendors(ctx context.Context, filter ports.VendorFilter, page ports.Page) ([]*domain.Vendor, int64, error) {
	return s.repo.ListVendors(ctx, filter, page)
}

// ListParentCategories returns the live categories in display order.
func (s *Service) ListParentCategories(ctx context.Context) ([]domain.ParentCategory, error) {
	return s.repo.ListParentCategories(ctx, true)
}

// ListServices returns the services under a parent category.
func (s *Service) ListServices(ctx context.Context, parentCategoryID int64) ([]domain.ServiceCategory, error) {
	return s.repo.ListServices(ctx, parentCategoryID)
}

// VendorRateCards returns a vendor's published price list.
func (s *Service) VendorRateCards(ctx context.Context, vendorID uuid.UUID) ([]domain.VendorRateCard, error) {
	return s.repo.RateCards(ctx, vendorID)
}

// WorkflowTemplate returns the step template for a service.
func (s *Service) WorkflowTemplate(ctx context.Context, serviceID int64) (*domain.ServiceWorkflowTemplate, error) {
	return s.repo.WorkflowTemplate(ctx, serviceID)
}

var _ ports.Service = (*Service)(nil)
