// Package migrations applies the relational schema for every bounded
// context in one place, mirroring the adapter-level record shapes.
package migrations

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&orderItemRecord{},
		&serviceStatusRecord{},
		&vendorRecord{},
		&vendorServiceRecord{},
		&rateCardRecord{},
		&parentCategoryRecord{},
		&serviceCategoryRecord{},
		&workflowTemplateRecord{},
		&workflowStepRecord{},
		&userRecord{},
		&paymentRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter.
type orderRecord struct {
	OrderID             uuid.UUID        `gorm:"primaryKey;column:order_id;type:uuid"`
	OrderNumber         string           `gorm:"column:order_number;uniqueIndex"`
	ResidentID          uuid.UUID        `gorm:"column:resident_id;type:uuid;index"`
	VendorID            uuid.UUID        `gorm:"column:vendor_id;type:uuid;index"`
	SocietyID           int64            `gorm:"column:society_id;index"`
	Status              string           `gorm:"column:status;type:varchar(32);index"`
	HasMultipleServices bool             `gorm:"column:has_multiple_services"`
	EstimatedPrice      decimal.Decimal  `gorm:"column:estimated_price;type:numeric(12,2)"`
	FinalPrice          *decimal.Decimal `gorm:"column:final_price;type:numeric(12,2)"`
	PickupDatetime      time.Time        `gorm:"column:pickup_datetime"`
	ExpectedDelivery    time.Time        `gorm:"column:expected_delivery_date"`
	ActualDelivery      *time.Time       `gorm:"column:actual_delivery_date"`
	PickupAddress       string           `gorm:"column:pickup_address"`
	DeliveryPreference  string           `gorm:"column:delivery_preference;type:varchar(16)"`
	CreatedAt           time.Time        `gorm:"column:created_at;index"`
	UpdatedAt           time.Time        `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type orderItemRecord struct {
	ItemID     int64           `gorm:"primaryKey;autoIncrement;column:item_id"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;index"`
	ServiceID  int64           `gorm:"column:service_id;index"`
	ItemName   string          `gorm:"column:item_name"`
	Quantity   int             `gorm:"column:quantity"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2)"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
}

func (orderItemRecord) TableName() string { return "order_items" }

type serviceStatusRecord struct {
	StatusID             int64           `gorm:"primaryKey;autoIncrement;column:status_id"`
	OrderID              uuid.UUID       `gorm:"column:order_id;type:uuid;index:idx_service_status_order_service,unique"`
	ServiceID            int64           `gorm:"column:service_id;index:idx_service_status_order_service,unique"`
	ItemCount            int             `gorm:"column:item_count"`
	TotalAmount          decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2)"`
	Status               string          `gorm:"column:status;type:varchar(32)"`
	ExpectedDeliveryDate time.Time       `gorm:"column:expected_delivery_date"`
	ActualDeliveryDate   *time.Time      `gorm:"column:actual_delivery_date"`
	CreatedAt            time.Time       `gorm:"column:created_at"`
	UpdatedAt            time.Time       `gorm:"column:updated_at"`
}

func (serviceStatusRecord) TableName() string { return "order_service_statuses" }

// Catalog schema mirrors the catalog Postgres adapter.
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
	TemplateID   int64     `gorm:"primaryKey;autoIncrement;column:template_id"`
	ServiceID    int64     `gorm:"column:service_id;uniqueIndex"`
	TemplateName string    `gorm:"column:template_name"`
	CreatedAt    time.Time `gorm:"column:created_at"`
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

// User schema mirrors the identity Postgres adapter.
type userRecord struct {
	UserID       uuid.UUID      `gorm:"primaryKey;column:user_id;type:uuid"`
	FullName     string         `gorm:"column:full_name"`
	Phone        string         `gorm:"column:phone;uniqueIndex"`
	Email        string         `gorm:"column:email"`
	UserType     string         `gorm:"column:user_type;type:varchar(32);index"`
	SocietyID    int64          `gorm:"column:society_id;index"`
	FlatNumber   string         `gorm:"column:flat_number"`
	DeviceTokens pq.StringArray `gorm:"column:device_tokens;type:text[]"`
	IsActive     bool           `gorm:"column:is_active"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
	UpdatedAt    time.Time      `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Payment schema mirrors the payments Postgres adapter.
type paymentRecord struct {
	PaymentID        uuid.UUID       `gorm:"primaryKey;column:payment_id;type:uuid"`
	OrderID          uuid.UUID       `gorm:"column:order_id;type:uuid;index"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2)"`
	Method           string          `gorm:"column:payment_method;type:varchar(16)"`
	Status           string          `gorm:"column:payment_status;type:varchar(16);index"`
	GatewayOrderID   string          `gorm:"column:gateway_order_id"`
	GatewayPaymentID string          `gorm:"column:gateway_payment_id;index"`
	GatewaySignature string          `gorm:"column:gateway_signature"`
	PaidAt           *time.Time      `gorm:"column:paid_at"`
	CreatedAt        time.Time       `gorm:"column:created_at;index"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (paymentRecord) TableName() string { return "payments" }
