// Package http exposes payment initiation and the gateway webhook.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ordersports "github.com/societyos/laundry-api/internal/domains/orders/ports"
	"github.com/societyos/laundry-api/internal/domains/payments/domain"
	"github.com/societyos/laundry-api/internal/domains/payments/ports"
	"github.com/societyos/laundry-api/internal/shared/respond"
)

// Handler adapts the payments service port to HTTP.
type Handler struct {
	service ports.Service
}

// NewHandler wires the payments HTTP adapter.
func NewHandler(service ports.Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the payment routes on the given router group.
func (h *Handler) Register(group *gin.RouterGroup) {
	payments := group.Group("/payments")
	payments.POST("", h.initiatePayment)
	payments.POST("/:paymentId/callback", h.gatewayCallback)
	payments.POST("/:paymentId/refund", h.refundPayment)
	group.GET("/orders/:orderId/payment", h.getByOrder)
}

type initiatePaymentRequest struct {
	OrderID string `json:"orderId"`
	Method  string `json:"paymentMethod"`
}

type gatewayCallbackRequest struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	GatewaySignature string `json:"gatewaySignature"`
	Success          bool   `json:"success"`
}

type paymentResponse struct {
	PaymentID        string     `json:"paymentId"`
	OrderID          string     `json:"orderId"`
	Amount           string     `json:"amount"`
	Method           string     `json:"paymentMethod"`
	Status           string     `json:"paymentStatus"`
	GatewayOrderID   string     `json:"gatewayOrderId,omitempty"`
	GatewayPaymentID string     `json:"gatewayPaymentId,omitempty"`
	PaidAt           *time.Time `json:"paidAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func (h *Handler) initiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("orderId must be a valid UUID"))
		return
	}
	method, err := domain.ToMethod(req.Method)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("%s", err.Error()))
		return
	}
	payment, err := h.service.InitiatePayment(c.Request.Context(), ports.InitiatePaymentInput{
		OrderID: orderID, Method: method,
	})
	if err != nil {
		respond.FailWith(c, err, mapPaymentError)
		return
	}
	respond.OK(c, http.StatusCreated, fromDomainPayment(payment))
}

func (h *Handler) gatewayCallback(c *gin.Context) {
	paymentID, ok := parsePaymentID(c)
	if !ok {
		return
	}
	var req gatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	payment, err := h.service.HandleGatewayCallback(c.Request.Context(), paymentID, ports.GatewayCallbackInput{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		GatewaySignature: req.GatewaySignature,
		Success:          req.Success,
	})
	if err != nil {
		respond.FailWith(c, err, mapPaymentError)
		return
	}
	respond.OK(c, http.StatusOK, fromDomainPayment(payment))
}

func (h *Handler) refundPayment(c *gin.Context) {
	paymentID, ok := parsePaymentID(c)
	if !ok {
		return
	}
	payment, err := h.service.RefundPayment(c.Request.Context(), paymentID)
	if err != nil {
		respond.FailWith(c, err, mapPaymentError)
		return
	}
	respond.OK(c, http.StatusOK, fromDomainPayment(payment))
}

func (h *Handler) getByOrder(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("orderId"))
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("orderId must be a valid UUID"))
		return
	}
	payment, err := h.service.GetByOrder(c.Request.Context(), orderID)
	if err != nil {
		respond.FailWith(c, err, mapPaymentError)
		return
	}
	respond.OK(c, http.StatusOK, fromDomainPayment(payment))
}

func parsePaymentID(c *gin.Context) (uuid.UUID, bool) {
	paymentID, err := uuid.Parse(c.Param("paymentId"))
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("paymentId must be a valid UUID"))
		return uuid.Nil, false
	}
	return paymentID, true
}

func fromDomainPayment(payment *domain.Payment) paymentResponse {
	return paymentResponse{
		PaymentID:        payment.PaymentID.String(),
		OrderID:          payment.OrderID.String(),
		Amount:           payment.Amount.StringFixed(2),
		Method:           string(payment.Method),
		Status:           string(payment.Status),
		GatewayOrderID:   payment.GatewayOrderID,
		GatewayPaymentID: payment.GatewayPaymentID,
		PaidAt:           payment.PaidAt,
		CreatedAt:        payment.CreatedAt,
	}
}

func mapPaymentError(err error) (respond.Error, bool) {
	switch {
	case errors.Is(err, ports.ErrPaymentNotFound):
		return respond.NotFound("payment", "requested"), true
	case errors.Is(err, ordersports.ErrNotFound):
		return respond.NotFound("order", "requested"), true
	case errors.Is(err, ports.ErrOrderNotBillable),
		errors.Is(err, ports.ErrPaymentExists),
		errors.Is(err, domain.ErrInvalidPaymentTransition):
		return respond.ErrConflict.WithMessage("%s", err.Error()), true
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidMethod),
		errors.Is(err, domain.ErrEmptyGatewayReference):
		return respond.ErrValidation.WithMessage("%s", err.Error()), true
	}
	return respond.Error{}, false
}
