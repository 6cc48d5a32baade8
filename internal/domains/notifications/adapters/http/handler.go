// Package http exposes the notification forwarder. Unlike the rest of the
// API this endpoint keeps the legacy response shapes the mobile clients and
// cloud functions already depend on, not the standard envelope.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	identityports "github.com/societyos/laundry-api/internal/domains/identity/ports"
	"github.com/societyos/laundry-api/internal/domains/notifications/ports"
)

// Handler adapts the notifications service port to HTTP.
type Handler struct {
	service ports.Service
}

// NewHandler wires the notifications HTTP adapter.
func NewHandler(service ports.Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the forwarder route on the given router group.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.POST("/notifications/send", h.send)
}

type sendRequest struct {
	UserID string            `json:"user_id"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}

func (h *Handler) send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a valid UUID"})
		return
	}
	result, err := h.service.Send(c.Request.Context(), ports.SendInput{
		UserID: userID,
		Title:  req.Title,
		Body:   req.Body,
		Data:   req.Data,
	})
	if err != nil {
		// An unknown user has no token on file either.
		if errors.Is(err, ports.ErrNoDeviceToken) || errors.Is(err, identityports.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No FCM token found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "fcm_result": result.FCMResult})
}
