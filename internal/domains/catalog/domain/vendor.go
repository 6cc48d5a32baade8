package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus gates a vendor's eligibility to receive orders.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

var (
	ErrEmptyBusinessName = errors.New("business name is required")
	ErrEmptyOwnerName    = errors.New("owner name is required")
	ErrEmptyPhone        = errors.New("phone is required")
	ErrInvalidApproval   = errors.New("approval status is invalid")
	ErrVendorNotEligible = errors.New("vendor not eligible for service")
)

// Vendor is a service provider scoped to one category and one society.
type Vendor struct {
	VendorID       uuid.UUID
	UserID         uuid.UUID
	BusinessName   string
	OwnerName      string
	Phone          string
	Email          string
	CategoryID     int64
	SocietyID      int64
	ApprovalStatus ApprovalStatus
	IsAvailable    bool
	Rating         *float64
	TotalOrders    int
	CreatedAt      time.Time
}

// NewVendor validates and constructs a vendor awaiting approval.
func NewVendor(userID uuid.UUID, businessName, ownerName, phone string, categoryID, societyID int64) (*Vendor, error) {
	businessName = strings.TrimSpace(businessName)
	if businessName == "" {
		return nil, ErrEmptyBusinessName
	}
	ownerName = strings.TrimSpace(ownerName)
	if ownerName == "" {
		return nil, ErrEmptyOwnerName
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrEmptyPhone
	}
	return &Vendor{
		VendorID:       uuid.New(),
		UserID:         userID,
		BusinessName:   businessName,
		OwnerName:      ownerName,
		Phone:          phone,
		CategoryID:     categoryID,
		SocietyID:      societyID,
		ApprovalStatus: ApprovalPending,
	}, nil
}

// SetApproval moves the vendor through the approval review.
func (v *Vendor) SetApproval(status ApprovalStatus) error {
	switch status {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		v.ApprovalStatus = status
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidApproval, status)
	}
}

// SetAvailability toggles real-time acceptance of new orders.
func (v *Vendor) SetAvailability(available bool) {
	v.IsAvailable = available
}

// VendorService marks one catalog service a vendor offers.
type VendorService struct {
	VendorServiceID int64
	VendorID        uuid.UUID
	ServiceID       int64
	IsOffered       bool
	CreatedAt       time.Time
}

// Eligible reports whether the vendor may fulfil the given service: the
// vendor must be approved and available, and an offering row must exist
// with is_offered set.
func (v *Vendor) Eligible(serviceID int64, offerings []VendorService) error {
	if v.ApprovalStatus != ApprovalApproved {
		return fmt.Errorf("%w: vendor %s approval status is %s", ErrVendorNotEligible, v.VendorID, v.ApprovalStatus)
	}
	if !v.IsAvailable {
		return fmt.Errorf("%w: vendor %s is unavailable", ErrVendorNotEligible, v.VendorID)
	}
	for _, offering := range offerings {
		if offering.VendorID == v.VendorID && offering.ServiceID == serviceID && offering.IsOffered {
			return nil
		}
	}
	return fmt.Errorf("%w: vendor %s does not offer service %d", ErrVendorNotEligible, v.VendorID, serviceID)
}
