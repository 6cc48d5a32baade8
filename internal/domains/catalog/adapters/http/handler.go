// Package http exposes the catalog read surface: marketplace categories,
// vendor discovery, rate cards, and workflow templates.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/domains/catalog/domain"
	"github.com/societyos/laundry-api/internal/domains/catalog/ports"
	"github.com/societyos/laundry-api/internal/shared/respond"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Handler adapts the catalog service port to HTTP.
type Handler struct {
	service ports.Service
}

// NewHandler wires the catalog HTTP adapter.
func NewHandler(service ports.Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the catalog routes on the given router group.
func (h *Handler) Register(group *gin.RouterGroup) {
	group.GET("/categories", h.listParentCategories)
	group.GET("/categories/:categoryId/services", h.listServices)
	group.GET("/services/:serviceId/workflow", h.workflowTemplate)

	vendors := group.Group("/vendors")
	vendors.GET("", h.listVendors)
	vendors.GET("/:vendorId", h.getVendor)
	vendors.GET("/:vendorId/rate-cards", h.vendorRateCards)
}

type categoryResponse struct {
	CategoryID   int64  `json:"categoryId"`
	CategoryKey  string `json:"categoryKey"`
	CategoryName string `json:"categoryName"`
	CategoryIcon string `json:"categoryIcon,omitempty"`
	SortOrder    int    `json:"sortOrder"`
}

type serviceResponse struct {
	ServiceID              int64  `json:"serviceId"`
	ParentCategoryID       int64  `json:"parentCategoryId"`
	ServiceKey             string `json:"serviceKey"`
	ServiceName            string `json:"serviceName"`
	ServiceDescription     string `json:"serviceDescription,omitempty"`
	EstimatedDurationHours *int   `json:"estimatedDurationHours,omitempty"`
}

type vendorResponse struct {
	VendorID       string   `json:"vendorId"`
	BusinessName   string   `json:"businessName"`
	OwnerName      string   `json:"ownerName"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email,omitempty"`
	CategoryID     int64    `json:"categoryId"`
	SocietyID      int64    `json:"societyId"`
	ApprovalStatus string   `json:"approvalStatus"`
	IsAvailable    bool     `json:"isAvailable"`
	Rating         *float64 `json:"rating,omitempty"`
	TotalOrders    int      `json:"totalOrders"`
}

type rateCardResponse struct {
	RateCardID int64  `json:"rateCardId"`
	ServiceID  int64  `json:"serviceId"`
	ItemName   string `json:"itemName"`
	Price      string `json:"price"`
	Unit       string `json:"unit"`
	IsActive   bool   `json:"isActive"`
}

type workflowStepResponse struct {
	StepName               string `json:"stepName"`
	StepOrder              int    `json:"stepOrder"`
	EstimatedDurationHours *int   `json:"estimatedDurationHours,omitempty"`
}

type workflowTemplateResponse struct {
	TemplateID   int64                  `json:"templateId"`
	ServiceID    int64                  `json:"serviceId"`
	TemplateName string                 `json:"templateName"`
	Steps        []workflowStepResponse `json:"steps"`
	CreatedAt    time.Time              `json:"createdAt"`
}

func (h *Handler) listParentCategories(c *gin.Context) {
	categories, err := h.service.ListParentCategories(c.Request.Context())
	if err != nil {
		respond.FailWith(c, err, mapCatalogError)
		return
	}
	resp := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, categoryResponse{
			CategoryID:   category.CategoryID,
			CategoryKey:  category.CategoryKey,
			CategoryName: category.CategoryName,
			CategoryIcon: category.CategoryIcon,
			SortOrder:    category.SortOrder,
		})
	}
	respond.OK(c, http.StatusOK, resp)
}

func (h *Handler) listServices(c *gin.Context) {
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("categoryId must be an integer"))
		return
	}
	services, err := h.service.ListServices(c.Request.Context(), categoryID)
	if err != nil {
		respond.FailWith(c, err, mapCatalogError)
		return
	}
	resp := make([]serviceResponse, 0, len(services))
	for _, service := range services {
		resp = append(resp, serviceResponse{
			ServiceID:              service.ServiceID,
			ParentCategoryID:       service.ParentCategoryID,
			ServiceKey:             service.ServiceKey,
			ServiceName:            service.ServiceName,
			ServiceDescription:     service.ServiceDescription,
			EstimatedDurationHours: service.EstimatedDurationHours,
		})
	}
	respond.OK(c, http.StatusOK, resp)
}

func (h *Handler) workflowTemplate(c *gin.Context) {
	serviceID, err := strconv.ParseInt(c.Param("serviceId"), 10, 64)
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("serviceId must be an integer"))
		return
	}
	template, err := h.service.WorkflowTemplate(c.Request.Context(), serviceID)
	if err != nil {
		respond.FailWith(c, err, mapCatalogError)
		return
	}
	resp := workflowTemplateResponse{
		TemplateID:   template.TemplateID,
		ServiceID:    template.ServiceID,
		TemplateName: template.TemplateName,
		CreatedAt:    template.CreatedAt,
	}
	// Residents only ever see the customer-facing steps.
	for _, step := range template.CustomerFacingSteps() {
		resp.Steps = append(resp.Steps, workflowStepResponse{
			StepName:               step.StepName,
			StepOrder:              step.StepOrder,
			EstimatedDurationHours: step.EstimatedDurationHours,
		})
	}
	respond.OK(c, http.StatusOK, resp)
}

func (h *Handler) listVendors(c *gin.Context) {
	var filter ports.VendorFilter
	if raw := c.Query("societyId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Fail(c, respond.ErrValidation.WithMessage("societyId must be an integer"))
			return
		}
		filter.SocietyID = &id
	}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Fail(c, respond.ErrValidation.WithMessage("categoryId must be an integer"))
			return
		}
		filter.CategoryID = &id
	}
	filter.Approved = c.Query("approved") != "false"
	page := parsePage(c)
	vendors, total, err := h.service.ListVendors(c.Request.Context(), filter, page)
	if err != nil {
		respond.FailWith(c, err, mapCatalogError)
		return
	}
	resp := make([]vendorResponse, 0, len(vendors))
	for _, vendor := range vendors {
		resp = append(resp, fromDomainVendor(vendor))
	}
	respond.List(c, resp, respond.NewPagination(page.Number, page.Limit, total))
}

func (h *Handler) getVendor(c *gin.Context) {
	vendorID, ok := parseVendorID(c)
	if !ok {
		return
	}
	vendor, err := h.service.GetVendor(c.Request.Context(), vendorID)
	if err != nil {
		respond.FailWith(c, err, mapCatalogError)
		return
	}
	respond.OK(c, http.StatusOK, fromDomainVendor(vendor))
}

func (h *Handler) vendorRateCards(c *gin.Context) {
	vendorID, ok := parseVendorID(c)
	if !ok {
		return
	}
	cards, err := h.service.VendorRateCards(c.Request.Context(), vendorID)
	if err != nil {
		respond.FailWith(c, err, mapCatalogError)
		return
	}
	resp := make([]rateCardResponse, 0, len(cards))
	for _, card := range cards {
		resp = append(resp, rateCardResponse{
			RateCardID: card.RateCardID,
			ServiceID:  card.ServiceID,
			ItemName:   card.ItemName,
			Price:      card.Price.StringFixed(2),
			Unit:       card.Unit,
			IsActive:   card.IsActive,
		})
	}
	respond.OK(c, http.StatusOK, resp)
}

func parseVendorID(c *gin.Context) (uuid.UUID, bool) {
	vendorID, err := uuid.Parse(c.Param("vendorId"))
	if err != nil {
		respond.Fail(c, respond.ErrValidation.WithMessage("vendorId must be a valid UUID"))
		return uuid.Nil, false
	}
	return vendorID, true
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

func fromDomainVendor(vendor *domain.Vendor) vendorResponse {
	return vendorResponse{
		VendorID:       vendor.VendorID.String(),
		BusinessName:   vendor.BusinessName,
		OwnerName:      vendor.OwnerName,
		Phone:          vendor.Phone,
		Email:          vendor.Email,
		CategoryID:     vendor.CategoryID,
		SocietyID:      vendor.SocietyID,
		ApprovalStatus: string(vendor.ApprovalStatus),
		IsAvailable:    vendor.IsAvailable,
		Rating:         vendor.Rating,
		TotalOrders:    vendor.TotalOrders,
	}
}

func mapCatalogError(err error) (respond.Error, bool) {
	switch {
	case errors.Is(err, ports.ErrVendorNotFound):
		return respond.NotFound("vendor", "requested"), true
	case errors.Is(err, ports.ErrTemplateNotFound):
		return respond.NotFound("workflow_template", "requested"), true
	case errors.Is(err, domain.ErrVendorNotEligible):
		return respond.ErrVendorNotEligible.WithMessage("%s", err.Error()), true
	case errors.Is(err, domain.ErrRateNotFound):
		return respond.ErrRateNotFound.WithMessage("%s", err.Error()), true
	}
	return respond.Error{}, false
}
