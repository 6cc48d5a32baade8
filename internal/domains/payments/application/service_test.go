package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogmemory "github.com/societyos/laundry-api/internal/domains/catalog/adapters/memory"
	catalogapp "github.com/societyos/laundry-api/internal/domains/catalog/application"
	catalogdomain "github.com/societyos/laundry-api/internal/domains/catalog/domain"
	ordersmemory "github.com/societyos/laundry-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/societyos/laundry-api/internal/domains/orders/application"
	ordersdomain "github.com/societyos/laundry-api/internal/domains/orders/domain"
	ordersports "github.com/societyos/laundry-api/internal/domains/orders/ports"
	"github.com/societyos/laundry-api/internal/domains/payments/adapters/memory"
	"github.com/societyos/laundry-api/internal/domains/payments/domain"
	"github.com/societyos/laundry-api/internal/domains/payments/ports"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

type fixture struct {
	svc     *Service
	orders  ordersports.Service
	orderID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	catalogRepo := catalogmemory.NewRepository()
	vendor, err := catalogdomain.NewVendor(uuid.New(), "Sparkle Laundry", "Meera Nair", "+919800000001", 1, 12)
	require.NoError(t, err)
	require.NoError(t, vendor.SetApproval(catalogdomain.ApprovalApproved))
	vendor.SetAvailability(true)
	require.NoError(t, catalogRepo.SaveVendor(ctx, vendor))
	require.NoError(t, catalogRepo.SaveOffering(ctx, catalogdomain.VendorService{
		VendorID: vendor.VendorID, ServiceID: 1, IsOffered: true,
	}))
	require.NoError(t, catalogRepo.SaveRateCard(ctx, catalogdomain.VendorRateCard{
		VendorID: vendor.VendorID, ServiceID: 1, ItemName: "Shirt",
		Price: decimal.RequireFromString("15.00"), Unit: "piece", IsActive: true,
	}))

	orders := ordersapp.NewService(ordersmemory.NewRepository(), catalogapp.NewService(catalogRepo))
	created, err := orders.CreateOrder(ctx, ordersports.CreateOrderInput{
		ResidentID:       uuid.New(),
		VendorID:         vendor.VendorID,
		SocietyID:        12,
		CategoryID:       1,
		PickupDatetime:   time.Now().Add(2 * time.Hour),
		ExpectedDelivery: time.Now().Add(48 * time.Hour),
		PickupAddress:    "A-1204, Palm Greens",
		Items:            []ordersports.ItemInput{{ServiceID: 1, ItemName: "Shirt", Quantity: 14}},
	})
	require.NoError(t, err)

	return &fixture{
		svc:     NewService(memory.NewRepository(), orders),
		orders:  orders,
		orderID: created.OrderID,
	}
}

func (f *fixture) deliver(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	for {
		order, err := f.orders.GetOrder(ctx, f.orderID)
		require.NoError(t, err)
		if order.Status == ordersdomain.StatusDelivered {
			return
		}
		next, ok := order.Status.Next()
		require.True(t, ok)
		_, err = f.orders.AdvanceOrder(ctx, ordersports.AdvanceOrderInput{
			OrderID: f.orderID, Target: next, Actor: actor.RolePlatformAdmin,
		})
		require.NoError(t, err)
	}
}

func TestInitiatePayment_RejectsUndeliveredOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.InitiatePayment(context.Background(), ports.InitiatePaymentInput{
		OrderID: f.orderID, Method: domain.MethodUPI,
	})
	require.ErrorIs(t, err, ports.ErrOrderNotBillable)
}

func TestInitiatePayment_AmountFromOrder(t *testing.T) {
	f := newFixture(t)
	f.deliver(t)

	payment, err := f.svc.InitiatePayment(context.Background(), ports.InitiatePaymentInput{
		OrderID: f.orderID, Method: domain.MethodUPI,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, payment.Status)
	assert.Equal(t, "210.00", payment.Amount.StringFixed(2))

	// A second open payment for the same order is rejected.
	_, err = f.svc.InitiatePayment(context.Background(), ports.InitiatePaymentInput{
		OrderID: f.orderID, Method: domain.MethodCard,
	})
	require.ErrorIs(t, err, ports.ErrPaymentExists)
}

func TestHandleGatewayCallback(t *testing.T) {
	f := newFixture(t)
	f.deliver(t)
	ctx := context.Background()
	payment, err := f.svc.InitiatePayment(ctx, ports.InitiatePaymentInput{
		OrderID: f.orderID, Method: domain.MethodUPI,
	})
	require.NoError(t, err)

	settled, err := f.svc.HandleGatewayCallback(ctx, payment.PaymentID, ports.GatewayCallbackInput{
		GatewayOrderID:   "order_G1",
		GatewayPaymentID: "pay_G1",
		GatewaySignature: "sig_G1",
		Success:          true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, settled.Status)
	assert.NotNil(t, settled.PaidAt)

	// A replayed callback cannot settle twice.
	_, err = f.svc.HandleGatewayCallback(ctx, payment.PaymentID, ports.GatewayCallbackInput{
		GatewayOrderID: "order_G1", GatewayPaymentID: "pay_G2", Success: true,
	})
	require.ErrorIs(t, err, domain.ErrInvalidPaymentTransition)

	loaded, err := f.svc.GetByOrder(ctx, f.orderID)
	require.NoError(t, err)
	assert.Equal(t, "pay_G1", loaded.GatewayPaymentID)
}

func TestFailedPaymentCanBeRetried(t *testing.T) {
	f := newFixture(t)
	f.deliver(t)
	ctx := context.Background()
	payment, err := f.svc.InitiatePayment(ctx, ports.InitiatePaymentInput{
		OrderID: f.orderID, Method: domain.MethodUPI,
	})
	require.NoError(t, err)

	_, err = f.svc.HandleGatewayCallback(ctx, payment.PaymentID, ports.GatewayCallbackInput{Success: false})
	require.NoError(t, err)

	retry, err := f.svc.InitiatePayment(ctx, ports.InitiatePaymentInput{
		OrderID: f.orderID, Method: domain.MethodCard,
	})
	require.NoError(t, err)
	assert.NotEqual(t, payment.PaymentID, retry.PaymentID)
	assert.Equal(t, domain.PaymentPending, retry.Status)
}
