// Package http exposes the order use cases over gin routes under /api/v1/orders.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogdomain "github.com/societyos/laundry-api/internal/domains/catalog/domain"
	catalogports "github.com/societyos/laundry-api/internal/domains/catalog/ports"
	"github.com/societyos/laundry-api/internal/domains/orders/adapters/http/mapper"
	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
	"github.com/societyos/laundry-api/internal/shared/actor"
	"github.com/societyos/laundry-api/internal/shared/respond"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Handler adapts the orders service port to HTTP.
type Handler struct {
	service ports.Service
}

// NewHandler wires the orders HTTP adapter.
func NewHandler(service ports.Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the order routes on the given router group.
func (h *Handler) Register(group *gin.RouterGroup) {
	orders := group.Group("/orders")
	orders.POST("", h.createOrder)
	orders.GET("", h.listOrders)
	orders.GET("/:orderId", h.getOrder)
	orders.POST("/:orderId/transitions", h.advanceOrder)
	orders.POST("/:orderId/services/:serviceId/transitions", h.advanceServiceStatus)
}

func (h *Handler) createOrder(c *gin.Context) {
	var req mapper.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	input, err := mapper.ToCreateOrderInput(req)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("%s", err.Error()))
		return
	}
	order, err := h.service.CreateOrder(c.Request.Context(), input)
	if err != nil {
		respond.FailWith(c, err, mapOrderError(input.VendorID))
		return
	}
	respond.OK(c, http.StatusCreated, mapper.FromDomainOrder(order))
}

func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respond.FailWith(c, err, mapOrderError(orderID))
		return
	}
	respond.OK(c, http.StatusOK, mapper.FromDomainOrder(order))
}

func (h *Handler) listOrders(c *gin.Context) {
	filter, err := parseFilter(c)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("%s", err.Error()))
		return
	}
	page := parsePage(c)
	orders, total, err := h.service.ListOrders(c.Request.Context(), filter, page)
	if err != nil {
		respond.FailWith(c, err, mapOrderError("requested"))
		return
	}
	respond.List(c, mapper.FromDomainOrderList(orders), respond.NewPagination(page.Number, page.Limit, total))
}

func (h *Handler) advanceOrder(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	var req mapper.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	input, err := mapper.ToAdvanceOrderInput(orderID, req)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("%s", err.Error()))
		return
	}
	order, err := h.service.AdvanceOrder(c.Request.Context(), input)
	if err != nil {
		respond.FailWith(c, err, mapOrderError(orderID))
		return
	}
	respond.OK(c, http.StatusOK, mapper.FromDomainOrder(order))
}

func (h *Handler) advanceServiceStatus(c *gin.Context) {
	orderID, ok := parseOrderID(c)
	if !ok {
		return
	}
	serviceID, err := strconv.ParseInt(c.Param("serviceId"), 10, 64)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("serviceId must be an integer"))
		return
	}
	var req mapper.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	input, err := mapper.ToAdvanceServiceInput(orderID, serviceID, req)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("%s", err.Error()))
		return
	}
	order, err := h.service.AdvanceServiceStatus(c.Request.Context(), input)
	if err != nil {
		respond.FailWith(c, err, mapOrderError(orderID))
		return
	}
	respond.OK(c, http.StatusOK, mapper.FromDomainOrder(order))
}

func parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("orderId must be a valid UUID"))
		return uuid.Nil, false
	}
	return orderID, true
}

func parseFilter(c *gin.Context) (ports.Filter, error) {
	var filter ports.Filter
	if raw := c.Query("residentId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ports.Filter{}, errors.New("residentId must be a valid UUID")
		}
		filter.ResidentID = &id
	}
	if raw := c.Query("vendorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ports.Filter{}, errors.New("vendorId must be a valid UUID")
		}
		filter.VendorID = &id
	}
	if raw := c.Query("societyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return ports.Filter{}, errors.New("societyId must be an integer")
		}
		filter.SocietyID = &id
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ToStatus(raw)
		if err != nil {
			return ports.Filter{}, err
		}
		filter.Status = &status
	}
	return filter, nil
}

func parsePage(c *gin.Context) ports.Page {
	page := ports.Page{Number: 1, Limit: defaultPageLimit}
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Number = n
		}
	}
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Limit = min(n, maxPageLimit)
		}
	}
	return page
}

// mapOrderError translates domain and port sentinels into envelope errors.
// The identifier names the order (or vendor) the caller asked for, so
// not-found responses echo it back.
func mapOrderError(identifier any) func(error) (respond.Error, bool) {
	return func(err error) (respond.Error, bool) {
		switch {
		case errors.Is(err, domain.ErrOrderImmutable),
			errors.Is(err, domain.ErrInvalidTransition):
			return respond.ErrInvalidTransition.WithMessage("%s", err.Error()), true
		case errors.Is(err, domain.ErrUnauthorizedActor):
			return respond.ErrUnauthorized.WithMessage("%s", err.Error()), true
		case errors.Is(err, ports.ErrConflict):
			return respond.ErrConflict, true
		case errors.Is(err, ports.ErrNotFound):
			return respond.NotFound("order", identifier), true
		case errors.Is(err, catalogports.ErrVendorNotFound):
			return respond.NotFound("vendor", identifier), true
		case errors.Is(err, catalogdomain.ErrVendorNotEligible):
			return respond.ErrVendorNotEligible.WithMessage("%s", err.Error()), true
		case errors.Is(err, catalogdomain.ErrRateNotFound):
			return respond.ErrRateNotFound.WithMessage("%s", err.Error()), true
		case errors.Is(err, catalogdomain.ErrPriceOutOfBounds):
			return respond.ErrValidation.WithMessage("%s", err.Error()), true
		case errors.Is(err, domain.ErrItemNotFound),
			errors.Is(err, domain.ErrServiceNotInOrder),
			errors.Is(err, domain.ErrNoItems),
			errors.Is(err, domain.ErrInvalidQuantity),
			errors.Is(err, domain.ErrInvalidUnitPrice),
			errors.Is(err, domain.ErrEmptyItemName),
			errors.Is(err, domain.ErrEmptyPickupAddress),
			errors.Is(err, domain.ErrInvalidPreference),
			errors.Is(err, domain.ErrUnknownStatus),
			errors.Is(err, actor.ErrUnknownRole):
			return respond.ErrValidation.WithMessage("%s", err.Error()), true
		}
		return respond.Error{}, false
	}
}
