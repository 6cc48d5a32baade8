package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testItems(t *testing.T) []OrderItem {
	t.Helper()
	shirt, err := NewOrderItem(1, "Shirt", 4, price("15.00"))
	require.NoError(t, err)
	shirt.ItemID = 1
	saree, err := NewOrderItem(2, "Saree", 2, price("60.00"))
	require.NoError(t, err)
	saree.ItemID = 2
	return []OrderItem{shirt, saree}
}

func testOrder(t *testing.T, pref DeliveryPreference) *Order {
	t.Helper()
	pickup := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	order, err := NewOrder(uuid.New(), uuid.New(), 12, "A-1204, Palm Greens", pickup, pickup.Add(48*time.Hour), pref, testItems(t))
	require.NoError(t, err)
	return order
}

func TestNewOrderItem_DerivesTotal(t *testing.T) {
	item, err := NewOrderItem(1, "Bedsheet", 3, price("40.50"))
	require.NoError(t, err)
	assert.True(t, item.TotalPrice.Equal(price("121.50")), "got %s", item.TotalPrice)
}

func TestNewOrderItem_Invalid(t *testing.T) {
	_, err := NewOrderItem(1, "  ", 1, price("10"))
	assert.ErrorIs(t, err, ErrEmptyItemName)

	_, err = NewOrderItem(1, "Shirt", 0, price("10"))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewOrderItem(1, "Shirt", 1, price("-1"))
	assert.ErrorIs(t, err, ErrInvalidUnitPrice)
}

func TestNewOrder_EstimateIsSumOfLineTotals(t *testing.T) {
	order := testOrder(t, DeliverySingle)
	// 4*15 + 2*60
	assert.True(t, order.EstimatedPrice.Equal(price("180.00")), "got %s", order.EstimatedPrice)
	assert.Equal(t, StatusBookingCreated, order.Status)
	assert.True(t, order.HasMultipleServices)
	assert.Empty(t, order.ServiceStatuses)
	assert.NotEmpty(t, order.OrderNumber)
}

func TestNewOrder_PartialSeedsServiceStatuses(t *testing.T) {
	order := testOrder(t, DeliveryPartial)
	require.Len(t, order.ServiceStatuses, 2)
	for _, row := range order.ServiceStatuses {
		assert.Equal(t, StatusBookingCreated, row.Status)
	}
	wash, err := order.ServiceStatus(1)
	require.NoError(t, err)
	assert.Equal(t, 4, wash.ItemCount)
	assert.True(t, wash.TotalAmount.Equal(price("60.00")))
}

func TestNewOrder_Invalid(t *testing.T) {
	pickup := time.Now()
	_, err := NewOrder(uuid.New(), uuid.New(), 1, "addr", pickup, pickup, DeliverySingle, nil)
	assert.ErrorIs(t, err, ErrNoItems)

	_, err = NewOrder(uuid.New(), uuid.New(), 1, "  ", pickup, pickup, DeliverySingle, testItems(t))
	assert.ErrorIs(t, err, ErrEmptyPickupAddress)

	_, err = NewOrder(uuid.New(), uuid.New(), 1, "addr", pickup, pickup, "EXPRESS", testItems(t))
	assert.ErrorIs(t, err, ErrInvalidPreference)
}

func TestApplyCorrections_RecomputesTotals(t *testing.T) {
	order := testOrder(t, DeliveryPartial)

	err := order.ApplyCorrections([]ItemCorrection{{ItemID: 1, Quantity: 6}})
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, 6, order.Items[0].Quantity)
	assert.True(t, order.Items[0].TotalPrice.Equal(price("90.00")))
	// 6*15 + 2*60
	assert.True(t, order.EstimatedPrice.Equal(price("210.00")), "got %s", order.EstimatedPrice)

	wash, err := order.ServiceStatus(1)
	require.NoError(t, err)
	assert.Equal(t, 6, wash.ItemCount)
	assert.True(t, wash.TotalAmount.Equal(price("90.00")))
}

func TestApplyCorrections_UnknownItem(t *testing.T) {
	order := testOrder(t, DeliverySingle)
	err := order.ApplyCorrections([]ItemCorrection{{ItemID: 99, Quantity: 1}})
	assert.ErrorIs(t, err, ErrItemNotFound)
}
