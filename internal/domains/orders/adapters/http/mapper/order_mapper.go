package mapper

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

var (
	errMissingItems  = errors.New("items is required")
	errMissingTarget = errors.New("targetStatus is required")
	errMissingActor  = errors.New("actorRole is required")
)

// OrderItemRequest is one inbound order line. UnitPrice is optional; when
// absent the vendor rate card decides.
type OrderItemRequest struct {
	ServiceID int64   `json:"serviceId"`
	ItemName  string  `json:"itemName"`
	Quantity  int     `json:"quantity"`
	UnitPrice *string `json:"unitPrice,omitempty"`
}

// CreateOrderRequest captures a resident's booking payload.
type CreateOrderRequest struct {
	ResidentID         string             `json:"residentId"`
	VendorID           string             `json:"vendorId"`
	SocietyID          int64              `json:"societyId"`
	CategoryID         int64              `json:"categoryId"`
	Items              []OrderItemRequest `json:"items"`
	PickupDatetime     time.Time          `json:"pickupDatetime"`
	ExpectedDelivery   time.Time          `json:"expectedDeliveryDate"`
	PickupAddress      string             `json:"pickupAddress"`
	DeliveryPreference string             `json:"deliveryPreference,omitempty"`
}

// ItemCorrectionRequest adjusts one line's counted quantity during count approval.
type ItemCorrectionRequest struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// TransitionRequest asks for one status transition. ExpectedStatus carries the
// status the caller last observed; leaving it empty skips the staleness check.
type TransitionRequest struct {
	TargetStatus   string                  `json:"targetStatus"`
	ExpectedStatus string                  `json:"expectedStatus,omitempty"`
	ActorRole      string                  `json:"actorRole"`
	Corrections    []ItemCorrectionRequest `json:"itemCorrections,omitempty"`
}

// OrderItemResponse is the transport shape of one order line.
type OrderItemResponse struct {
	ItemID     int64  `json:"itemId"`
	ServiceID  int64  `json:"serviceId"`
	ItemName   string `json:"itemName"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unitPrice"`
	TotalPrice string `json:"totalPrice"`
}

// ServiceStatusResponse is the transport shape of one per-service status row.
type ServiceStatusResponse struct {
	ServiceID            int64      `json:"serviceId"`
	ItemCount            int        `json:"itemCount"`
	TotalAmount          string     `json:"totalAmount"`
	Status               string     `json:"status"`
	ExpectedDeliveryDate time.Time  `json:"expectedDeliveryDate"`
	ActualDeliveryDate   *time.Time `json:"actualDeliveryDate,omitempty"`
}

// OrderResponse is the transport shape of the aggregate.
type OrderResponse struct {
	OrderID             string                  `json:"orderId"`
	OrderNumber         string                  `json:"orderNumber"`
	ResidentID          string                  `json:"residentId"`
	VendorID            string                  `json:"vendorId"`
	SocietyID           int64                   `json:"societyId"`
	Status              string                  `json:"status"`
	HasMultipleServices bool                    `json:"hasMultipleServices"`
	EstimatedPrice      string                  `json:"estimatedPrice"`
	FinalPrice          *string                 `json:"finalPrice,omitempty"`
	PickupDatetime      time.Time               `json:"pickupDatetime"`
	ExpectedDelivery    time.Time               `json:"expectedDeliveryDate"`
	ActualDelivery      *time.Time              `json:"actualDeliveryDate,omitempty"`
	PickupAddress       string                  `json:"pickupAddress"`
	DeliveryPreference  string                  `json:"deliveryPreference"`
	Items               []OrderItemResponse     `json:"items"`
	ServiceStatuses     []ServiceStatusResponse `json:"serviceStatuses,omitempty"`
	CreatedAt           time.Time               `json:"createdAt"`
	UpdatedAt           time.Time               `json:"updatedAt"`
}

// ToCreateOrderInput validates the booking payload and produces the application DTO.
func ToCreateOrderInput(req CreateOrderRequest) (ports.CreateOrderInput, error) {
	residentID, err := uuid.Parse(req.ResidentID)
	if err != nil {
		return ports.CreateOrderInput{}, errors.New("residentId must be a valid UUID")
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return ports.CreateOrderInput{}, errors.New("vendorId must be a valid UUID")
	}
	if len(req.Items) == 0 {
		return ports.CreateOrderInput{}, errMissingItems
	}
	items := make([]ports.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		input := ports.ItemInput{
			ServiceID: item.ServiceID,
			ItemName:  item.ItemName,
			Quantity:  item.Quantity,
		}
		if item.UnitPrice != nil {
			price, err := decimal.NewFromString(*item.UnitPrice)
			if err != nil {
				return ports.CreateOrderInput{}, errors.New("unitPrice must be a decimal string")
			}
			input.UnitPrice = &price
		}
		items = append(items, input)
	}
	return ports.CreateOrderInput{
		ResidentID:         residentID,
		VendorID:           vendorID,
		SocietyID:          req.SocietyID,
		CategoryID:         req.CategoryID,
		Items:              items,
		PickupDatetime:     req.PickupDatetime,
		ExpectedDelivery:   req.ExpectedDelivery,
		PickupAddress:      req.PickupAddress,
		DeliveryPreference: domain.DeliveryPreference(req.DeliveryPreference),
	}, nil
}

// ToAdvanceOrderInput validates the transition payload for the aggregate endpoint.
func ToAdvanceOrderInput(orderID uuid.UUID, req TransitionRequest) (ports.AdvanceOrderInput, error) {
	target, role, expected, err := transitionFields(req)
	if err != nil {
		return ports.AdvanceOrderInput{}, err
	}
	corrections := make([]domain.ItemCorrection, 0, len(req.Corrections))
	for _, c := range req.Corrections {
		corrections = append(corrections, domain.ItemCorrection{ItemID: c.ItemID, Quantity: c.Quantity})
	}
	return ports.AdvanceOrderInput{
		OrderID:     orderID,
		Expected:    expected,
		Target:      target,
		Actor:       role,
		Corrections: corrections,
	}, nil
}

// ToAdvanceServiceInput validates the transition payload for the per-service endpoint.
func ToAdvanceServiceInput(orderID uuid.UUID, serviceID int64, req TransitionRequest) (ports.AdvanceServiceInput, error) {
	target, role, expected, err := transitionFields(req)
	if err != nil {
		return ports.AdvanceServiceInput{}, err
	}
	corrections := make([]domain.ItemCorrection, 0, len(req.Corrections))
	for _, c := range req.Corrections {
		corrections = append(corrections, domain.ItemCorrection{ItemID: c.ItemID, Quantity: c.Quantity})
	}
	return ports.AdvanceServiceInput{
		OrderID:     orderID,
		ServiceID:   serviceID,
		Expected:    expected,
		Target:      target,
		Actor:       role,
		Corrections: corrections,
	}, nil
}

func transitionFields(req TransitionRequest) (domain.Status, actor.Role, domain.Status, error) {
	if req.TargetStatus == "" {
		return "", "", "", errMissingTarget
	}
	if req.ActorRole == "" {
		return "", "", "", errMissingActor
	}
	target, err := domain.ToStatus(req.TargetStatus)
	if err != nil {
		return "", "", "", err
	}
	role, err := actor.ToRole(req.ActorRole)
	if err != nil {
		return "", "", "", err
	}
	var expected domain.Status
	if req.ExpectedStatus != "" {
		expected, err = domain.ToStatus(req.ExpectedStatus)
		if err != nil {
			return "", "", "", err
		}
	}
	return target, role, expected, nil
}

// FromDomainOrder maps the aggregate into its transport shape.
func FromDomainOrder(order *domain.Order) OrderResponse {
	resp := OrderResponse{
		OrderID:             order.OrderID.String(),
		OrderNumber:         order.OrderNumber,
		ResidentID:          order.ResidentID.String(),
		VendorID:            order.VendorID.String(),
		SocietyID:           order.SocietyID,
		Status:              string(order.Status),
		HasMultipleServices: order.HasMultipleServices,
		EstimatedPrice:      order.EstimatedPrice.StringFixed(2),
		PickupDatetime:      order.PickupDatetime,
		ExpectedDelivery:    order.ExpectedDelivery,
		ActualDelivery:      order.ActualDelivery,
		PickupAddress:       order.PickupAddress,
		DeliveryPreference:  string(order.DeliveryPreference),
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
	if order.FinalPrice != nil {
		final := order.FinalPrice.StringFixed(2)
		resp.FinalPrice = &final
	}
	resp.Items = make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ItemID:     item.ItemID,
			ServiceID:  item.ServiceID,
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice.StringFixed(2),
			TotalPrice: item.TotalPrice.StringFixed(2),
		})
	}
	for _, row := range order.ServiceStatuses {
		resp.ServiceStatuses = append(resp.ServiceStatuses, ServiceStatusResponse{
			ServiceID:            row.ServiceID,
			ItemCount:            row.ItemCount,
			TotalAmount:          row.TotalAmount.StringFixed(2),
			Status:               string(row.Status),
			ExpectedDeliveryDate: row.ExpectedDeliveryDate,
			ActualDeliveryDate:   row.ActualDeliveryDate,
		})
	}
	return resp
}

// FromDomainOrderList maps a slice of aggregates to transport orders.
func FromDomainOrderList(list []*domain.Order) []OrderResponse {
	resp := make([]OrderResponse, 0, len(list))
	for _, order := range list {
		resp = append(resp, FromDomainOrder(order))
	}
	return resp
}
