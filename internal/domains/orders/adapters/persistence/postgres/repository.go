package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/societyos/laundry-api/internal/domains/orders/domain"
	"github.com/societyos/laundry-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL using GORM. Status writes use an
// optimistic guard on the previously observed status instead of row locks.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

	Items           []orderItemRecord     `gorm:"foreignKey:OrderID;references:OrderID"`
	ServiceStatuses []serviceStatusRecord `gorm:"foreignKey:OrderID;references:OrderID"`
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

// Create inserts the aggregate with its items and service rows in one
// transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, order.OrderID)
}

// Get fetches an aggregate with its items and service rows.
func (r *Repository) Get(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("ServiceStatuses").
		First(&record, "order_id = ?", orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// List returns a page of aggregates matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter ports.Filter, page ports.Page) ([]*domain.Order, int64, error) {
	if err := r.ensureDB(); err != nil {
		return nil, 0, err
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if filter.ResidentID != nil {
		query = query.Where("resident_id = ?", *filter.ResidentID)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.SocietyID != nil {
		query = query.Where("society_id = ?", *filter.SocietyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var records []orderRecord
	err := query.
		Preload("Items").
		Preload("ServiceStatuses").
		Order("created_at DESC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for idx := range records {
		orders = append(orders, records[idx].toDomain())
	}
	return orders, total, nil
}

// UpdateTransition persists the advanced aggregate guarded by the expected
// prior status. The guarded UPDATE and the item/service-row writes share
// one transaction, so a lost race leaves nothing behind.
func (r *Repository) UpdateTransition(ctx context.Context, order *domain.Order, expected domain.Status) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&orderRecord{}).
			Where("order_id = ? AND status = ?", order.OrderID, string(expected)).
			Updates(map[string]any{
				"status":               record.Status,
				"estimated_price":      record.EstimatedPrice,
				"final_price":          record.FinalPrice,
				"actual_delivery_date": record.ActualDelivery,
				"updated_at":           time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&orderRecord{}).Where("order_id = ?", order.OrderID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return ports.ErrNotFound
			}
			return ports.ErrConflict
		}
		for _, item := range record.Items {
			err := tx.Model(&orderItemRecord{}).
				Where("item_id = ? AND order_id = ?", item.ItemID, order.OrderID).
				Updates(map[string]any{
					"quantity":    item.Quantity,
					"unit_price":  item.UnitPrice,
					"total_price": item.TotalPrice,
				}).Error
			if err != nil {
				return err
			}
		}
		for _, row := range record.ServiceStatuses {
			err := tx.Model(&serviceStatusRecord{}).
				Where("order_id = ? AND service_id = ?", order.OrderID, row.ServiceID).
				Updates(map[string]any{
					"item_count":           row.ItemCount,
					"total_amount":         row.TotalAmount,
					"status":               row.Status,
					"actual_delivery_date": row.ActualDeliveryDate,
					"updated_at":           time.Now(),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, order.OrderID)
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		OrderID:             order.OrderID,
		OrderNumber:         order.OrderNumber,
		ResidentID:          order.ResidentID,
		VendorID:            order.VendorID,
		SocietyID:           order.SocietyID,
		Status:              string(order.Status),
		HasMultipleServices: order.HasMultipleServices,
		EstimatedPrice:      order.EstimatedPrice,
		FinalPrice:          order.FinalPrice,
		PickupDatetime:      order.PickupDatetime,
		ExpectedDelivery:    order.ExpectedDelivery,
		ActualDelivery:      order.ActualDelivery,
		PickupAddress:       order.PickupAddress,
		DeliveryPreference:  string(order.DeliveryPreference),
	}
	for _, item := range order.Items {
		record.Items = append(record.Items, orderItemRecord{
			ItemID:     item.ItemID,
			OrderID:    order.OrderID,
			ServiceID:  item.ServiceID,
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	for _, row := range order.ServiceStatuses {
		record.ServiceStatuses = append(record.ServiceStatuses, serviceStatusRecord{
			StatusID:             row.StatusID,
			OrderID:              order.OrderID,
			ServiceID:            row.ServiceID,
			ItemCount:            row.ItemCount,
			TotalAmount:          row.TotalAmount,
			Status:               string(row.Status),
			ExpectedDeliveryDate: row.ExpectedDeliveryDate,
			ActualDeliveryDate:   row.ActualDeliveryDate,
		})
	}
	return record
}

func (r orderRecord) toDomain() *domain.Order {
	order := &domain.Order{
		OrderID:             r.OrderID,
		OrderNumber:         r.OrderNumber,
		ResidentID:          r.ResidentID,
		VendorID:            r.VendorID,
		SocietyID:           r.SocietyID,
		Status:              domain.Status(r.Status),
		HasMultipleServices: r.HasMultipleServices,
		EstimatedPrice:      r.EstimatedPrice,
		FinalPrice:          r.FinalPrice,
		PickupDatetime:      r.PickupDatetime,
		ExpectedDelivery:    r.ExpectedDelivery,
		ActualDelivery:      r.ActualDelivery,
		PickupAddress:       r.PickupAddress,
		DeliveryPreference:  domain.DeliveryPreference(r.DeliveryPreference),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	for _, item := range r.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ItemID:     item.ItemID,
			OrderID:    item.OrderID,
			ServiceID:  item.ServiceID,
			ItemName:   item.ItemName,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
			CreatedAt:  item.CreatedAt,
		})
	}
	for _, row := range r.ServiceStatuses {
		order.ServiceStatuses = append(order.ServiceStatuses, domain.OrderServiceStatus{
			StatusID:             row.StatusID,
			OrderID:              row.OrderID,
			ServiceID:            row.ServiceID,
			ItemCount:            row.ItemCount,
			TotalAmount:          row.TotalAmount,
			Status:               domain.Status(row.Status),
			ExpectedDeliveryDate: row.ExpectedDeliveryDate,
			ActualDeliveryDate:   row.ActualDeliveryDate,
			CreatedAt:            row.CreatedAt,
			UpdatedAt:            row.UpdatedAt,
		})
	}
	return order
}
