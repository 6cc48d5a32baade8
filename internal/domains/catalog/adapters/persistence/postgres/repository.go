package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/societyos/laundry-api/internal/domains/catalog/domain"
	"github.com/societyos/laundry-api/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists catalog reference data in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed catalog repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type vendorRecord struct {
	VendorID       uuid.UUID `gorm:"primaryKey;column:vendor_id;type:uuid"`
	UserID         uuid.UUID `gorm:"column:user_id;type:uuid;index"`
	BusinessName   string    `gorm:"column:business_name"`
	OwnerName      string    `gorm:"column:owner_name"`
	Phone          string    `gorm:"column:phone"`
	Email          string    `gorm:"column:email"`
	CategoryID     int64     `gorm:"column:parent_category_id;index"`
	SocietyID      int64     `gorm:"column:society_id;index"`
	ApprovalStatus string    `gorm:"column:approval_status;type:varchar(16);index"`
	IsAvailable    bool      `gorm:"column:is_available"`
	Rating         *float64  `gorm:"column:rating"`
	TotalOrders    int       `gorm:"column:total_orders"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (vendorRecord) TableName() string { return "vendors" }

type vendorServiceRecord struct {
	VendorServiceID int64     `gorm:"primaryKey;autoIncrement;column:vendor_service_id"`
	VendorID        uuid.UUID `gorm:"column:vendor_id;type:uuid;index:idx_vendor_services_vendor_service,unique"`
	ServiceID       int64     `gorm:"column:service_id;index:idx_vendor_services_vendor_service,unique"`
	IsOffered       bool      `gorm:"column:is_offered"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (vendorServiceRecord) TableName() string { return "vendor_services" }

type rateCardRecord struct {
	RateCardID int64           `gorm:"primaryKey;autoIncrement;column:rate_card_id"`
	VendorID   uuid.UUID       `gorm:"column:vendor_id;type:uuid;index"`
	ServiceID  int64           `gorm:"column:service_id;index"`
	ItemName   string          `gorm:"column:item_name"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Unit       string          `gorm:"column:unit;type:varchar(32)"`
	IsActive   bool            `gorm:"column:is_active;index"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (rateCardRecord) TableName() string { return "vendor_rate_cards" }

type parentCategoryRecord struct {
	CategoryID   int64     `gorm:"primaryKey;autoIncrement;column:category_id"`
	CategoryKey  string    `gorm:"column:category_key;uniqueIndex"`
	CategoryName string    `gorm:"column:category_name"`
	CategoryIcon string    `gorm:"column:category_icon"`
	IsLive       bool      `gorm:"column:is_live;index"`
	SortOrder    int       `gorm:"column:sort_order"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (parentCategoryRecord) TableName() string { return "parent_categories" }

type serviceCategoryRecord struct {
	ServiceID              int64     `gorm:"primaryKey;autoIncrement;column:service_id"`
	ParentCategoryID       int64     `gorm:"column:parent_category_id;index"`
	ServiceKey             string    `gorm:"column:service_key;uniqueIndex"`
	ServiceName            string    `gorm:"column:service_name"`
	ServiceDescription     string    `gorm:"column:service_description"`
	EstimatedDurationHours *int      `gorm:"column:estimated_duration_hours"`
	CreatedAt              time.Time `gorm:"column:created_at"`
}

func (serviceCategoryRecord) TableName() string { return "service_categories" }

type workflowTemplateRecord struct {
	TemplateID   int64                `gorm:"primaryKey;autoIncrement;column:template_id"`
	ServiceID    int64                `gorm:"column:service_id;uniqueIndex"`
	TemplateName string               `gorm:"column:template_name"`
	CreatedAt    time.Time            `gorm:"column:created_at"`
	Steps        []workflowStepRecord `gorm:"foreignKey:TemplateID;references:TemplateID"`
}

func (workflowTemplateRecord) TableName() string { return "service_workflow_templates" }

type workflowStepRecord struct {
	StepID                 int64     `gorm:"primaryKey;autoIncrement;column:step_id"`
	TemplateID             int64     `gorm:"column:template_id;index"`
	StepName               string    `gorm:"column:step_name"`
	StepOrder              int       `gorm:"column:step_order"`
	IsCustomerFacing       bool      `gorm:"column:is_customer_facing"`
	EstimatedDurationHours *int      `gorm:"column:estimated_duration_hours"`
	CreatedAt              time.Time `gorm:"column:created_at"`
}

func (workflowStepRecord) TableName() string { return "workflow_steps" }

// GetVendor loads one vendor by ID.
func (r *Repository) GetVendor(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	var record vendorRecord
	err := r.db.WithContext(ctx).First(&record, "vendor_id = ?", vendorID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrVendorNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// SaveVendor upserts the vendor row.
func (r *Repository) SaveVendor(ctx context.Context, vendor *domain.Vendor) error {
	record := vendorRecord{
		VendorID:       vendor.VendorID,
		UserID:         vendor.UserID,
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
	return r.db.WithContext(ctx).Save(&record).Error
}

// ListVendors returns a page of vendors ordered by business name.
func (r *Repository) ListVendors(ctx context.Context, filter ports.VendorFilter, page ports.Page) ([]*domain.Vendor, int64, error) {
	query := r.db.WithContext(ctx).Model(&vendorRecord{})
	if filter.SocietyID != nil {
		query = query.Where("society_id = ?", *filter.SocietyID)
	}
	if filter.CategoryID != nil {
		query = query.Where("parent_category_id = ?", *filter.CategoryID)
	}
	if filter.Approved {
		query = query.Where("approval_status = ?", string(domain.ApprovalApproved))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []vendorRecord
	err := query.Order("business_name ASC").Offset(page.Offset()).Limit(page.Limit).Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	vendors := make([]*domain.Vendor, 0, len(records))
	for idx := range records {
		vendors = append(vendors, records[idx].toDomain())
	}
	return vendors, total, nil
}

// Offerings lists the vendor's service offering rows.
func (r *Repository) Offerings(ctx context.Context, vendorID uuid.UUID) ([]domain.VendorService, error) {
	var records []vendorServiceRecord
	err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).Find(&records).Error
	if err != nil {
		return nil, err
	}
	offerings := make([]domain.VendorService, 0, len(records))
	for _, record := range records {
		offerings = append(offerings, domain.VendorService{
			VendorServiceID: record.VendorServiceID,
			VendorID:        record.VendorID,
			ServiceID:       record.ServiceID,
			IsOffered:       record.IsOffered,
			CreatedAt:       record.CreatedAt,
		})
	}
	return offerings, nil
}

// SaveOffering upserts one offering row.
func (r *Repository) SaveOffering(ctx context.Context, offering domain.VendorService) error {
	record := vendorServiceRecord{
		VendorServiceID: offering.VendorServiceID,
		VendorID:        offering.VendorID,
		ServiceID:       offering.ServiceID,
		IsOffered:       offering.IsOffered,
	}
	return r.db.WithContext(ctx).Save(&record).Error
}

// RateCards lists every rate card of the vendor, active or not.
func (r *Repository) RateCards(ctx context.Context, vendorID uuid.UUID) ([]domain.VendorRateCard, error) {
	var records []rateCardRecord
	err := r.db.WithContext(ctx).Where("vendor_id = ?", vendorID).Order("service_id, item_name").Find(&records).Error
	if err != nil {
		return nil, err
	}
	cards := make([]domain.VendorRateCard, 0, len(records))
	for _, record := range records {
		cards = append(cards, domain.VendorRateCard{
			RateCardID: record.RateCardID,
			VendorID:   record.VendorID,
			ServiceID:  record.ServiceID,
			ItemName:   record.ItemName,
			Price:      record.Price,
			Unit:       record.Unit,
			IsActive:   record.IsActive,
			CreatedAt:  record.CreatedAt,
			UpdatedAt:  record.UpdatedAt,
		})
	}
	return cards, nil
}

// SaveRateCard upserts one rate card line.
func (r *Repository) SaveRateCard(ctx context.Context, card domain.VendorRateCard) error {
	record := rateCardRecord{
		RateCardID: card.RateCardID,
		VendorID:   card.VendorID,
		ServiceID:  card.ServiceID,
		ItemName:   card.ItemName,
		Price:      card.Price,
		Unit:       card.Unit,
		IsActive:   card.IsActive,
	}
	return r.db.WithContext(ctx).Save(&record).Error
}

// ListParentCategories returns the marketplace categories in sort order.
func (r *Repository) ListParentCategories(ctx context.Context, liveOnly bool) ([]domain.ParentCategory, error) {
	query := r.db.WithContext(ctx).Model(&parentCategoryRecord{})
	if liveOnly {
		query = query.Where("is_live = ?", true)
	}
	var records []parentCategoryRecord
	if err := query.Order("sort_order ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	categories := make([]domain.ParentCategory, 0, len(records))
	for _, record := range records {
		categories = append(categories, domain.ParentCategory{
			CategoryID:   record.CategoryID,
			CategoryKey:  record.CategoryKey,
			CategoryName: record.CategoryName,
			CategoryIcon: record.CategoryIcon,
			IsLive:       record.IsLive,
			SortOrder:    record.SortOrder,
			CreatedAt:    record.CreatedAt,
		})
	}
	return categories, nil
}

// ListServices returns the services under one parent category.
func (r *Repository) ListServices(ctx context.Context, parentCategoryID int64) ([]domain.ServiceCategory, error) {
	var records []serviceCategoryRecord
	err := r.db.WithContext(ctx).
		Where("parent_category_id = ?", parentCategoryID).
		Order("service_name ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	services := make([]domain.ServiceCategory, 0, len(records))
	for _, record := range records {
		services = append(services, domain.ServiceCategory{
			ServiceID:              record.ServiceID,
			ParentCategoryID:       record.ParentCategoryID,
			ServiceKey:             record.ServiceKey,
			ServiceName:            record.ServiceName,
			ServiceDescription:     record.ServiceDescription,
			EstimatedDurationHours: record.EstimatedDurationHours,
			CreatedAt:              record.CreatedAt,
		})
	}
	return services, nil
}

// WorkflowTemplate loads the step template attached to a service.
func (r *Repository) WorkflowTemplate(ctx context.Context, serviceID int64) (*domain.ServiceWorkflowTemplate, error) {
	var record workflowTemplateRecord
	err := r.db.WithContext(ctx).Preload("Steps").First(&record, "service_id = ?", serviceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrTemplateNotFound
		}
		return nil, err
	}
	template := &domain.ServiceWorkflowTemplate{
		TemplateID:   record.TemplateID,
		ServiceID:    record.ServiceID,
		TemplateName: record.TemplateName,
		CreatedAt:    record.CreatedAt,
	}
	for _, step := range record.Steps {
		template.Steps = append(template.Steps, domain.WorkflowStep{
			StepID:                 step.StepID,
			TemplateID:             step.TemplateID,
			StepName:               step.StepName,
			StepOrder:              step.StepOrder,
			IsCustomerFacing:       step.IsCustomerFacing,
			EstimatedDurationHours: step.EstimatedDurationHours,
			CreatedAt:              step.CreatedAt,
		})
	}
	return template, nil
}

func (r vendorRecord) toDomain() *domain.Vendor {
	return &domain.Vendor{
		VendorID:       r.VendorID,
		UserID:         r.UserID,
		BusinessName:   r.BusinessName,
		OwnerName:      r.OwnerName,
		Phone:          r.Phone,
		Email:          r.Email,
		CategoryID:     r.CategoryID,
		SocietyID:      r.SocietyID,
		ApprovalStatus: domain.ApprovalStatus(r.ApprovalStatus),
		IsAvailable:    r.IsAvailable,
		Rating:         r.Rating,
		TotalOrders:    r.TotalOrders,
		CreatedAt:      r.CreatedAt,
	}
}
