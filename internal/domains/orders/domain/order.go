package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DeliveryPreference controls whether items ship together or per service.
type DeliveryPreference string

const (
	DeliverySingle  DeliveryPreference = "SINGLE"
	DeliveryPartial DeliveryPreference = "PARTIAL"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than zero")
	ErrInvalidUnitPrice   = errors.New("unit price must not be negative")
	ErrEmptyItemName      = errors.New("item name is required")
	ErrNoItems            = errors.New("order must contain at least one item")
	ErrEmptyPickupAddress = errors.New("pickup address is required")
	ErrInvalidPreference  = errors.New("delivery preference must be SINGLE or PARTIAL")
	ErrOrderImmutable     = errors.New("order is in a terminal state")
	ErrItemNotFound       = errors.New("order item not found")
	ErrServiceNotInOrder  = errors.New("service has no items in this order")
)

// OrderItem is a priced line belonging to exactly one order.
// TotalPrice always equals Quantity * UnitPrice.
type OrderItem struct {
	ItemID     int64
	OrderID    uuid.UUID
	ServiceID  int64
	ItemName   string
	Quantity   int
	UnitPrice  decimal.Decimal
	TotalPrice decimal.Decimal
	CreatedAt  time.Time
}

// NewOrderItem validates and constructs a line with its derived total.
func NewOrderItem(serviceID int64, itemName string, quantity int, unitPrice decimal.Decimal) (OrderItem, error) {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return OrderItem{}, ErrEmptyItemName
	}
	if quantity <= 0 {
		return OrderItem{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return OrderItem{}, ErrInvalidUnitPrice
	}
	return OrderItem{
		ServiceID:  serviceID,
		ItemName:   itemName,
		Quantity:   quantity,
		UnitPrice:  unitPrice,
		TotalPrice: unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
	}, nil
}

// CorrectQuantity replaces the counted quantity and re-derives the total.
func (i *OrderItem) CorrectQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	i.Quantity = quantity
	i.TotalPrice = i.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return nil
}

// OrderServiceStatus tracks one service's independent progress within a
// PARTIAL-delivery order.
type OrderServiceStatus struct {
	StatusID             int64
	OrderID              uuid.UUID
	ServiceID            int64
	ItemCount            int
	TotalAmount          decimal.Decimal
	Status               Status
	ExpectedDeliveryDate time.Time
	ActualDeliveryDate   *time.Time
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Order is the aggregate tying a resident, vendor, and catalog items
// together under a lifecycle status.
type Order struct {
	OrderID             uuid.UUID
	OrderNumber         string
	ResidentID          uuid.UUID
	VendorID            uuid.UUID
	SocietyID           int64
	Status              Status
	HasMultipleServices bool
	EstimatedPrice      decimal.Decimal
	FinalPrice          *decimal.Decimal
	PickupDatetime      time.Time
	ExpectedDelivery    time.Time
	ActualDelivery      *time.Time
	PickupAddress       string
	DeliveryPreference  DeliveryPreference
	Items               []OrderItem
	ServiceStatuses     []OrderServiceStatus
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// NewOrder materializes a booking in its initial state. Items must already
// be priced; the estimate is the sum of their line totals.
func NewOrder(residentID, vendorID uuid.UUID, societyID int64, pickupAddress string, pickupAt, expectedDelivery time.Time, pref DeliveryPreference, items []OrderItem) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}
	if strings.TrimSpace(pickupAddress) == "" {
		return nil, ErrEmptyPickupAddress
	}
	switch pref {
	case DeliverySingle, DeliveryPartial:
	case "":
		pref = DeliverySingle
	default:
		return nil, ErrInvalidPreference
	}
	id := uuid.New()
	order := &Order{
		OrderID:            id,
		OrderNumber:        newOrderNumber(id, pickupAt),
		ResidentID:         residentID,
		VendorID:           vendorID,
		SocietyID:          societyID,
		Status:             StatusBookingCreated,
		EstimatedPrice:     sumLineTotals(items),
		PickupDatetime:     pickupAt,
		ExpectedDelivery:   expectedDelivery,
		PickupAddress:      strings.TrimSpace(pickupAddress),
		DeliveryPreference: pref,
	}
	order.Items = make([]OrderItem, len(items))
	copy(order.Items, items)
	for idx := range order.Items {
		order.Items[idx].OrderID = id
	}
	order.HasMultipleServices = len(order.distinctServiceIDs()) > 1
	if pref == DeliveryPartial {
		order.ServiceStatuses = order.initialServiceStatuses()
	}
	return order, nil
}

// newOrderNumber derives a human-readable reference from the booking date
// and the opaque order id.
func newOrderNumber(id uuid.UUID, pickupAt time.Time) string {
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:6]
	return fmt.Sprintf("LDY-%s-%s", pickupAt.Format("20060102"), short)
}

func sumLineTotals(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return total
}

func (o *Order) distinctServiceIDs() []int64 {
	seen := make(map[int64]struct{}, len(o.Items))
	var ids []int64
	for _, item := range o.Items {
		if _, ok := seen[item.ServiceID]; ok {
			continue
		}
		seen[item.ServiceID] = struct{}{}
		ids = append(ids, item.ServiceID)
	}
	return ids
}

func (o *Order) initialServiceStatuses() []OrderServiceStatus {
	var rows []OrderServiceStatus
	for _, serviceID := range o.distinctServiceIDs() {
		count := 0
		amount := decimal.Zero
		for _, item := range o.Items {
			if item.ServiceID == serviceID {
				count += item.Quantity
				amount = amount.Add(item.TotalPrice)
			}
		}
		rows = append(rows, OrderServiceStatus{
			OrderID:              o.OrderID,
			ServiceID:            serviceID,
			ItemCount:            count,
			TotalAmount:          amount,
			Status:               StatusBookingCreated,
			ExpectedDeliveryDate: o.ExpectedDelivery,
		})
	}
	return rows
}

// ItemCorrection carries a reconciled physical count for one line.
type ItemCorrection struct {
	ItemID   int64
	Quantity int
}

// ApplyCorrections reconciles counted quantities on the named items and
// recomputes line totals plus the aggregate estimate.
func (o *Order) ApplyCorrections(corrections []ItemCorrection) error {
	for _, c := range corrections {
		found := false
		for idx := range o.Items {
			if o.Items[idx].ItemID == c.ItemID {
				if err := o.Items[idx].CorrectQuantity(c.Quantity); err != nil {
					return err
				}
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: item %d", ErrItemNotFound, c.ItemID)
		}
	}
	o.RecomputeEstimate()
	return nil
}

// applyServiceCorrections applies corrections scoped to one service's lines.
// A correction naming an item outside that service is rejected.
func (o *Order) applyServiceCorrections(serviceID int64, corrections []ItemCorrection) error {
	for _, c := range corrections {
		found := false
		for idx := range o.Items {
			if o.Items[idx].ItemID != c.ItemID {
				continue
			}
			if o.Items[idx].ServiceID != serviceID {
				return fmt.Errorf("%w: item %d is not part of service %d", ErrItemNotFound, c.ItemID, serviceID)
			}
			if err := o.Items[idx].CorrectQuantity(c.Quantity); err != nil {
				return err
			}
			found = true
			break
		}
		if !found {
			return fmt.Errorf("%w: item %d", ErrItemNotFound, c.ItemID)
		}
	}
	o.RecomputeEstimate()
	return nil
}

// RecomputeEstimate re-derives the estimate (and PARTIAL service rollups)
// from the current line totals.
func (o *Order) RecomputeEstimate() {
	o.EstimatedPrice = sumLineTotals(o.Items)
	for idx := range o.ServiceStatuses {
		count := 0
		amount := decimal.Zero
		for _, item := range o.Items {
			if item.ServiceID == o.ServiceStatuses[idx].ServiceID {
				count += item.Quantity
				amount = amount.Add(item.TotalPrice)
			}
		}
		o.ServiceStatuses[idx].ItemCount = count
		o.ServiceStatuses[idx].TotalAmount = amount
	}
}

// ServiceStatus returns the child row tracking the given service.
func (o *Order) ServiceStatus(serviceID int64) (*OrderServiceStatus, error) {
	for idx := range o.ServiceStatuses {
		if o.ServiceStatuses[idx].ServiceID == serviceID {
			return &o.ServiceStatuses[idx], nil
		}
	}
	return nil, fmt.Errorf("%w: service %d", ErrServiceNotInOrder, serviceID)
}

// MergedStatus applies the child-state merge rule for PARTIAL orders.
// SINGLE orders report their own status.
func (o *Order) MergedStatus() (Status, error) {
	if o.DeliveryPreference != DeliveryPartial || len(o.ServiceStatuses) == 0 {
		return o.Status, nil
	}
	children := make([]Status, 0, len(o.ServiceStatuses))
	for _, row := range o.ServiceStatuses {
		children = append(children, row.Status)
	}
	return MergeServiceStatuses(children)
}
