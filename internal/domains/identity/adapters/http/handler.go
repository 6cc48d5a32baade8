// Package http exposes user registration and device token management.
package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/identity/domain"
	"github.com/societyos/laundry-api/internal/domains/identity/ports"
	"github.com/societyos/laundry-api/internal/shared/actor"
	"github.com/societyos/laundry-api/internal/shared/respond"
)

// Handler adapts the identity service port to HTTP.
type Handler struct {
	service ports.Service
}

// NewHandler wires the identity HTTP adapter.
func NewHandler(service ports.Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the user routes on the given router group.
func (h *Handler) Register(group *gin.RouterGroup) {
	users := group.Group("/users")
	users.POST("", h.registerUser)
	users.GET("/:userId", h.getUser)
	users.POST("/:userId/device-tokens", h.registerDeviceToken)
	users.DELETE("/:userId/device-tokens", h.removeDeviceToken)
}

type registerUserRequest struct {
	FullName   string `json:"fullName"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	UserType   string `json:"userType"`
	SocietyID  int64  `json:"societyId"`
	FlatNumber string `json:"flatNumber"`
}

type deviceTokenRequest struct {
	Token string `json:"token"`
}

type userResponse struct {
	UserID       string    `json:"userId"`
	FullName     string    `json:"fullName"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email,omitempty"`
	UserType     string    `json:"userType"`
	SocietyID    int64     `json:"societyId"`
	FlatNumber   string    `json:"flatNumber,omitempty"`
	DeviceTokens []string  `json:"deviceTokens"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (h *Handler) registerUser(c *gin.Context) {
	var req registerUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	role, err := actor.ToRole(req.UserType)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("%s", err.Error()))
		return
	}
	user, err := h.service.RegisterUser(c.Request.Context(), ports.RegisterUserInput{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		UserType:   role,
		SocietyID:  req.SocietyID,
		FlatNumber: req.FlatNumber,
	})
	if err != nil {
		respond.FailWith(c, err, mapIdentityError)
		return
	}
	respond.OK(c, http.StatusCreated, fromDomainUser(user))
}

func (h *Handler) getUser(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	user, err := h.service.GetUser(c.Request.Context(), userID)
	if err != nil {
		respond.FailWith(c, err, mapIdentityError)
		return
	}
	respond.OK(c, http.StatusOK, fromDomainUser(user))
}

func (h *Handler) registerDeviceToken(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	user, err := h.service.RegisterDeviceToken(c.Request.Context(), userID, req.Token)
	if err != nil {
		respond.FailWith(c, err, mapIdentityError)
		return
	}
	respond.OK(c, http.StatusOK, fromDomainUser(user))
}

func (h *Handler) removeDeviceToken(c *gin.Context) {
	userID, ok := parseUserID(c)
	if !ok {
		return
	}
	var req deviceTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("invalid request body: %s", err.Error()))
		return
	}
	user, err := h.service.RemoveDeviceToken(c.Request.Context(), userID, req.Token)
	if err != nil {
		respond.FailWith(c, err, mapIdentityError)
		return
	}
	respond.OK(c, http.StatusOK, fromDomainUser(user))
}

func parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("userId must be a valid UUID"))
		return uuid.Nil, false
	}
	return userID, true
}

func fromDomainUser(user *domain.User) userResponse {
	tokens := user.DeviceTokens
	if tokens == nil {
		tokens = []string{}
	}
	return userResponse{
		UserID:       user.UserID.String(),
		FullName:     user.FullName,
		Phone:        user.Phone,
		Email:        user.Email,
		UserType:     string(user.UserType),
		SocietyID:    user.SocietyID,
		FlatNumber:   user.FlatNumber,
		DeviceTokens: tokens,
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt,
	}
}

func mapIdentityError(err error) (respond.Error, bool) {
	switch {
	case errors.Is(err, ports.ErrUserNotFound):
		return respond.NotFound("user", "requested"), true
	case errors.Is(err, domain.ErrUserInactive):
		return respond.ErrConflict.WithMessage("%s", err.Error()), true
	case errors.Is(err, domain.ErrEmptyFullName),
		errors.Is(err, domain.ErrEmptyPhone),
		errors.Is(err, domain.ErrInvalidUserType),
		errors.Is(err, domain.ErrEmptyToken),
		errors.Is(err, actor.ErrUnknownRole):
		return respond.ErrValidation.WithMessage("%s", err.Error()), true
	}
	return respond.Error{}, false
}
