package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func approvedVendor(t *testing.T) *Vendor {
	t.Helper()
	vendor, err := NewVendor(uuid.New(), "Sparkle Laundry", "Meera Nair", "+919800000001", 1, 12)
	require.NoError(t, err)
	require.NoError(t, vendor.SetApproval(ApprovalApproved))
	vendor.SetAvailability(true)
	return vendor
}

func offering(vendorID uuid.UUID, serviceID int64, offered bool) VendorService {
	return VendorService{VendorID: vendorID, ServiceID: serviceID, IsOffered: offered}
}

func TestNewVendor_StartsPending(t *testing.T) {
	vendor, err := NewVendor(uuid.New(), "Sparkle Laundry", "Meera Nair", "+919800000001", 1, 12)
	require.NoError(t, err)
	assert.Equal(t, ApprovalPending, vendor.ApprovalStatus)
	assert.False(t, vendor.IsAvailable)
}

func TestNewVendor_Invalid(t *testing.T) {
	_, err := NewVendor(uuid.New(), " ", "Meera", "123", 1, 1)
	assert.ErrorIs(t, err, ErrEmptyBusinessName)
	_, err = NewVendor(uuid.New(), "Sparkle", "", "123", 1, 1)
	assert.ErrorIs(t, err, ErrEmptyOwnerName)
	_, err = NewVendor(uuid.New(), "Sparkle", "Meera", " ", 1, 1)
	assert.ErrorIs(t, err, ErrEmptyPhone)
}

func TestEligible_AllConditionsMet(t *testing.T) {
	vendor := approvedVendor(t)
	err := vendor.Eligible(7, []VendorService{offering(vendor.VendorID, 7, true)})
	assert.NoError(t, err)
}

func TestEligible_NotApproved(t *testing.T) {
	vendor := approvedVendor(t)
	require.NoError(t, vendor.SetApproval(ApprovalPending))
	err := vendor.Eligible(7, []VendorService{offering(vendor.VendorID, 7, true)})
	assert.ErrorIs(t, err, ErrVendorNotEligible)
}

func TestEligible_Unavailable(t *testing.T) {
	vendor := approvedVendor(t)
	vendor.SetAvailability(false)
	err := vendor.Eligible(7, []VendorService{offering(vendor.VendorID, 7, true)})
	assert.ErrorIs(t, err, ErrVendorNotEligible)
}

func TestEligible_NoOfferingRow(t *testing.T) {
	vendor := approvedVendor(t)
	err := vendor.Eligible(7, nil)
	assert.ErrorIs(t, err, ErrVendorNotEligible)
}

func TestEligible_OfferingWithdrawn(t *testing.T) {
	vendor := approvedVendor(t)
	err := vendor.Eligible(7, []VendorService{offering(vendor.VendorID, 7, false)})
	assert.ErrorIs(t, err, ErrVendorNotEligible)
}

func TestSetApproval_RejectsUnknown(t *testing.T) {
	vendor := approvedVendor(t)
	assert.ErrorIs(t, vendor.SetApproval("MAYBE"), ErrInvalidApproval)
}
