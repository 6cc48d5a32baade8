package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/societyos/laundry-api/internal/domains/identity/domain"
	"github.com/societyos/laundry-api/internal/domains/identity/ports"
	"github.com/societyos/laundry-api/internal/shared/actor"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL. Device tokens live in a text
// array column rather than a join table; the set is tiny and always read
// with the user.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed user repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

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

// Get loads one user.
func (r *Repository) Get(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var record userRecord
	err := r.db.WithContext(ctx).First(&record, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrUserNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// Save upserts the user row.
func (r *Repository) Save(ctx context.Context, user *domain.User) error {
	record := userRecord{
		UserID:       user.UserID,
		FullName:     user.FullName,
		Phone:        user.Phone,
		Email:        user.Email,
		UserType:     string(user.UserType),
		SocietyID:    user.SocietyID,
		FlatNumber:   user.FlatNumber,
		DeviceTokens: pq.StringArray(user.DeviceTokens),
		IsActive:     user.IsActive,
	}
	return r.db.WithContext(ctx).Save(&record).Error
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		UserID:       r.UserID,
		FullName:     r.FullName,
		Phone:        r.Phone,
		Email:        r.Email,
		UserType:     actor.Role(r.UserType),
		SocietyID:    r.SocietyID,
		FlatNumber:   r.FlatNumber,
		DeviceTokens: []string(r.DeviceTokens),
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
