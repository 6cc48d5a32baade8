package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/societyos/laundry-api/internal/domains/payments/domain"
	"github.com/societyos/laundry-api/internal/domains/payments/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists payments in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed payment repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// Get loads one payment.
func (r *Repository) Get(ctx context.Context, paymentID uuid.UUID) (*domain.Payment, error) {
	var record paymentRecord
	err := r.db.WithContext(ctx).First(&record, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPaymentNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// GetByOrder loads the most recent payment attached to an order.
func (r *Repository) GetByOrder(ctx context.Context, orderID uuid.UUID) (*domain.Payment, error) {
	var record paymentRecord
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrPaymentNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Save upserts the payment row.
func (r *Repository) Save(ctx context.Context, payment *domain.Payment) error {
	record := paymentRecord{
		PaymentID:        payment.PaymentID,
		OrderID:          payment.OrderID,
		Amount:           payment.Amount,
		Method:           string(payment.Method),
		Status:           string(payment.Status),
		GatewayOrderID:   payment.GatewayOrderID,
		GatewayPaymentID: payment.GatewayPaymentID,
		GatewaySignature: payment.GatewaySignature,
		PaidAt:           payment.PaidAt,
	}
	return r.db.WithContext(ctx).Save(&record).Error
}

func (r paymentRecord) toDomain() *domain.Payment {
	return &domain.Payment{
		PaymentID:        r.PaymentID,
		OrderID:          r.OrderID,
		Amount:           r.Amount,
		Method:           domain.PaymentMethod(r.Method),
		Status:           domain.PaymentStatus(r.Status),
		GatewayOrderID:   r.GatewayOrderID,
		GatewayPaymentID: r.GatewayPaymentID,
		GatewaySignature: r.GatewaySignature,
		PaidAt:           r.PaidAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}
