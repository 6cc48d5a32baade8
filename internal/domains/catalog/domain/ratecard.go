package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrRateNotFound     = errors.New("no active rate card matches item")
	ErrPriceOutOfBounds = errors.New("supplied price outside rate card tolerance")
)

// VendorRateCard is one published price line: what this vendor charges for
// one catalog item under one service.
type VendorRateCard struct {
	RateCardID int64
	VendorID   uuid.UUID
	ServiceID  int64
	ItemName   string
	Price      decimal.Decimal
	Unit       string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// RateBook resolves unit prices for a vendor's items.
type RateBook struct {
	cards []VendorRateCard
}

// NewRateBook indexes the given cards; inactive cards are kept but never
// matched.
func NewRateBook(cards []VendorRateCard) RateBook {
	return RateBook{cards: cards}
}

// Resolve returns the active rate for (vendor, service, item name). Item
// names match case-insensitively after trimming.
func (b RateBook) Resolve(vendorID uuid.UUID, serviceID int64, itemName string) (VendorRateCard, error) {
	want := strings.ToLower(strings.TrimSpace(itemName))
	for _, card := range b.cards {
		if !card.IsActive || card.VendorID != vendorID || card.ServiceID != serviceID {
			continue
		}
		if strings.ToLower(strings.TrimSpace(card.ItemName)) == want {
			return card, nil
		}
	}
	return VendorRateCard{}, fmt.Errorf("%w: %q (service %d)", ErrRateNotFound, itemName, serviceID)
}

// ValidatePrice checks a caller-supplied unit price against the card within
// the given tolerance, expressed as a percentage of the card price.
func (c VendorRateCard) ValidatePrice(supplied decimal.Decimal, tolerancePercent decimal.Decimal) error {
	margin := c.Price.Mul(tolerancePercent).Div(decimal.NewFromInt(100))
	diff := supplied.Sub(c.Price).Abs()
	if diff.GreaterThan(margin) {
		return fmt.Errorf("%w: %q supplied %s, rate card %s (tolerance %s%%)",
			ErrPriceOutOfBounds, c.ItemName, supplied, c.Price, tolerancePercent)
	}
	return nil
}
