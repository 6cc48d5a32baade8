package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/societyos/laundry-api/internal/domains/catalog/application"
	catalogmemory "github.com/societyos/laundry-api/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/societyos/laundry-api/internal/domains/catalog/domain"
	ordersmemory "github.com/societyos/laundry-api/internal/domains/orders/adapters/memory"
	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	svc      *Service
	repo     *ordersmemory.Repository
	vendorID uuid.UUID
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()

	catalogRepo := catalogmemory.NewRepository()
	vendor, err := catalogdomain.NewVendor(uuid.New(), "Sparkle Laundry", "Meera Nair", "+919800000001", 1, 12)
	require.NoError(t, err)
	require.NoError(t, vendor.SetApproval(catalogdomain.ApprovalApproved))
	vendor.SetAvailability(true)
	require.NoError(t, catalogRepo.SaveVendor(ctx, vendor))
	for serviceID, card := range map[int64]struct {
		name  string
		price string
	}{1: {"Shirt", "15.00"}, 2: {"Saree", "60.00"}} {
		require.NoError(t, catalogRepo.SaveOffering(ctx, catalogdomain.VendorService{
			VendorID: vendor.VendorID, ServiceID: serviceID, IsOffered: true,
		}))
		require.NoError(t, catalogRepo.SaveRateCard(ctx, catalogdomain.VendorRateCard{
			VendorID: vendor.VendorID, ServiceID: serviceID, ItemName: card.name,
			Price: amount(card.price), Unit: "piece", IsActive: true,
		}))
	}

	repo := ordersmemory.NewRepository()
	svc := NewService(repo, catalogapp.NewService(catalogRepo), opts...)
	return &fixture{svc: svc, repo: repo, vendorID: vendor.VendorID}
}

func (f *fixture) createInput(pref domain.DeliveryPreference) ports.CreateOrderInput {
	pickup := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	return ports.CreateOrderInput{
		ResidentID:         uuid.New(),
		VendorID:           f.vendorID,
		SocietyID:          12,
		CategoryID:         1,
		PickupDatetime:     pickup,
		ExpectedDelivery:   pickup.Add(48 * time.Hour),
		PickupAddress:      "A-1204, Palm Greens",
		DeliveryPreference: pref,
		Items: []ports.ItemInput{
			{ServiceID: 1, ItemName: "Shirt", Quantity: 4},
			{ServiceID: 2, ItemName: "Saree", Quantity: 2},
		},
	}
}

func TestCreateOrder_PricesFromRateCard(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), f.createInput(domain.DeliverySingle))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusBookingCreated, order.Status)
	require.Len(t, order.Items, 2)
	// 4*15 + 2*60
	assert.True(t, order.EstimatedPrice.Equal(amount("180.00")), "got %s", order.EstimatedPrice)
	for _, item := range order.Items {
		assert.True(t, item.TotalPrice.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))
	}
}

func TestCreateOrder_IneligibleService(t *testing.T) {
	f := newFixture(t)
	input := f.createInput(domain.DeliverySingle)
	input.Items = append(input.Items, ports.ItemInput{ServiceID: 9, ItemName: "Curtains", Quantity: 1})

	_, err := f.svc.CreateOrder(context.Background(), input)
	require.ErrorIs(t, err, catalogdomain.ErrVendorNotEligible)
	assert.Contains(t, err.Error(), "service 9")
}

func TestCreateOrder_RateNotFound(t *testing.T) {
	f := newFixture(t)
	input := f.createInput(domain.DeliverySingle)
	input.Items[0].ItemName = "Tuxedo"

	_, err := f.svc.CreateOrder(context.Background(), input)
	assert.ErrorIs(t, err, catalogdomain.ErrRateNotFound)
}

func TestAdvanceOrder_CASConflictOnStaleExpected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliverySingle))
	require.NoError(t, err)

	first, err := f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
		OrderID:  order.OrderID,
		Expected: domain.StatusBookingCreated,
		Target:   domain.StatusPickupScheduled,
		Actor:    actor.RoleVendor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPickupScheduled, first.Status)

	_, err = f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
		OrderID:  order.OrderID,
		Expected: domain.StatusBookingCreated,
		Target:   domain.StatusPickupScheduled,
		Actor:    actor.RoleVendor,
	})
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestAdvanceOrder_ConcurrentCallersSucceedAtMostOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliverySingle))
	require.NoError(t, err)

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, errs[slot] = f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
				OrderID:  order.OrderID,
				Expected: domain.StatusBookingCreated,
				Target:   domain.StatusPickupScheduled,
				Actor:    actor.RoleVendor,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ports.ErrConflict)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestAdvanceOrder_InvalidTransitionAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliverySingle))
	require.NoError(t, err)

	_, err = f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
		OrderID: order.OrderID, Target: domain.StatusDelivered, Actor: actor.RoleVendor,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
		OrderID: order.OrderID, Target: domain.StatusPickupScheduled, Actor: actor.RoleResident,
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorizedActor)
}

func TestAdvanceOrder_CountApprovalCorrectionRepricesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliverySingle))
	require.NoError(t, err)

	for _, target := range []domain.Status{
		domain.StatusPickupScheduled, domain.StatusPickupInProgress, domain.StatusCountApprovalPending,
	} {
		order, err = f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
			OrderID: order.OrderID, Target: target, Actor: actor.RoleVendor,
		})
		require.NoError(t, err)
	}

	shirtItem := order.Items[0]
	require.Equal(t, "Shirt", shirtItem.ItemName)

	updated, err := f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
		OrderID:     order.OrderID,
		Target:      domain.StatusPickedUp,
		Actor:       actor.RoleResident,
		Corrections: []domain.ItemCorrection{{ItemID: shirtItem.ItemID, Quantity: 6}},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPickedUp, updated.Status)
	assert.Equal(t, 6, updated.Items[0].Quantity)
	assert.True(t, updated.Items[0].TotalPrice.Equal(amount("90.00")))
	// 6*15 + 2*60
	assert.True(t, updated.EstimatedPrice.Equal(amount("210.00")), "got %s", updated.EstimatedPrice)

	stored, err := f.svc.GetOrder(ctx, order.OrderID)
	require.NoError(t, err)
	assert.True(t, stored.EstimatedPrice.Equal(amount("210.00")))
}

func TestAdvanceServiceStatus_MergesAggregate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliveryPartial))
	require.NoError(t, err)
	require.Len(t, order.ServiceStatuses, 2)

	updated, err := f.svc.AdvanceServiceStatus(ctx, ports.AdvanceServiceInput{
		OrderID: order.OrderID, ServiceID: 1,
		Target: domain.StatusPickupScheduled, Actor: actor.RoleVendor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBookingCreated, updated.Status, "aggregate held back by least-advanced child")

	updated, err = f.svc.AdvanceServiceStatus(ctx, ports.AdvanceServiceInput{
		OrderID: order.OrderID, ServiceID: 2,
		Target: domain.StatusPickupScheduled, Actor: actor.RoleVendor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPickupScheduled, updated.Status)
}

func TestAdvanceServiceStatus_CountApprovalCorrectionRepricesService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliveryPartial))
	require.NoError(t, err)

	for _, target := range []domain.Status{
		domain.StatusPickupScheduled, domain.StatusPickupInProgress, domain.StatusCountApprovalPending,
	} {
		order, err = f.svc.AdvanceServiceStatus(ctx, ports.AdvanceServiceInput{
			OrderID: order.OrderID, ServiceID: 1, Target: target, Actor: actor.RoleVendor,
		})
		require.NoError(t, err)
	}

	shirtItem := order.Items[0]
	require.Equal(t, "Shirt", shirtItem.ItemName)

	updated, err := f.svc.AdvanceServiceStatus(ctx, ports.AdvanceServiceInput{
		OrderID: order.OrderID, ServiceID: 1,
		Target: domain.StatusPickedUp, Actor: actor.RoleResident,
		Corrections: []domain.ItemCorrection{{ItemID: shirtItem.ItemID, Quantity: 6}},
	})
	require.NoError(t, err)

	assert.Equal(t, 6, updated.Items[0].Quantity)
	assert.True(t, updated.Items[0].TotalPrice.Equal(amount("90.00")))
	// 6*15 + 2*60
	assert.True(t, updated.EstimatedPrice.Equal(amount("210.00")), "got %s", updated.EstimatedPrice)
	row, err := updated.ServiceStatus(1)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPickedUp, row.Status)
	assert.Equal(t, 6, row.ItemCount)

	// A correction naming another service's item is rejected.
	_, err = f.svc.AdvanceServiceStatus(ctx, ports.AdvanceServiceInput{
		OrderID: order.OrderID, ServiceID: 2,
		Target: domain.StatusPickupScheduled, Actor: actor.RoleVendor,
		Corrections: []domain.ItemCorrection{{ItemID: shirtItem.ItemID, Quantity: 9}},
	})
	require.NoError(t, err, "corrections outside count approval are ignored")
}

type recordingNotifier struct {
	mu      sync.Mutex
	changes []ports.StatusChange
	fail    bool
	seen    chan struct{}
}

func newRecordingNotifier(fail bool) *recordingNotifier {
	return &recordingNotifier{fail: fail, seen: make(chan struct{}, 16)}
}

func (n *recordingNotifier) StatusChanged(_ context.Context, change ports.StatusChange) error {
	n.mu.Lock()
	n.changes = append(n.changes, change)
	n.mu.Unlock()
	n.seen <- struct{}{}
	if n.fail {
		return errors.New("push provider unreachable")
	}
	return nil
}

func TestAdvanceOrder_NotifiesAfterCommit(t *testing.T) {
	notifier := newRecordingNotifier(false)
	f := newFixture(t, WithNotifier(notifier))
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliverySingle))
	require.NoError(t, err)

	_, err = f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
		OrderID: order.OrderID, Target: domain.StatusPickupScheduled, Actor: actor.RoleVendor,
	})
	require.NoError(t, err)

	select {
	case <-notifier.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not invoked")
	}
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.changes, 1)
	assert.Equal(t, domain.StatusBookingCreated, notifier.changes[0].From)
	assert.Equal(t, domain.StatusPickupScheduled, notifier.changes[0].To)
}

func TestAdvanceOrder_NotifierFailureDoesNotAffectTransition(t *testing.T) {
	notifier := newRecordingNotifier(true)
	f := newFixture(t, WithNotifier(notifier))
	ctx := context.Background()
	order, err := f.svc.CreateOrder(ctx, f.createInput(domain.DeliverySingle))
	require.NoError(t, err)

	updated, err := f.svc.AdvanceOrder(ctx, ports.AdvanceOrderInput{
		OrderID: order.OrderID, Target: domain.StatusPickupScheduled, Actor: actor.RoleVendor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPickupScheduled, updated.Status)

	select {
	case <-notifier.seen:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not invoked")
	}
	stored, err := f.svc.GetOrder(ctx, order.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPickupScheduled, stored.Status, "transition must not roll back on notification failure")
}
