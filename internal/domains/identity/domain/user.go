// Package domain models platform users: residents, vendor owners, and
// admins. Device tokens registered here feed push notifications.
package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/societyos/laundry-api/internal/shared/actor"
)

const maxDeviceTokens = 5

var (
	ErrEmptyFullName   = errors.New("full name is required")
	ErrEmptyPhone      = errors.New("phone is required")
	ErrInvalidUserType = errors.New("user type is invalid")
	ErrEmptyToken      = errors.New("device token is required")
	ErrUserInactive    = errors.New("user is inactive")
)

// User is one platform account. DeviceTokens holds the FCM registration
// tokens of the user's signed-in devices, newest last.
type User struct {
	UserID       uuid.UUID
	FullName     string
	Phone        string
	Email        string
	UserType     actor.Role
	SocietyID    int64
	FlatNumber   string
	DeviceTokens []string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates and constructs an active account.
func NewUser(fullName, phone string, userType actor.Role, societyID int64) (*User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrEmptyFullName
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrEmptyPhone
	}
	switch userType {
	case actor.RoleResident, actor.RoleVendor, actor.RoleSocietyAdmin, actor.RolePlatformAdmin:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidUserType, userType)
	}
	return &User{
		UserID:    uuid.New(),
		FullName:  fullName,
		Phone:     phone,
		UserType:  userType,
		SocietyID: societyID,
		IsActive:  true,
	}, nil
}

// RegisterDeviceToken records an FCM token, deduplicating and keeping only
// the most recent registrations. Inactive users cannot register devices.
func (u *User) RegisterDeviceToken(token string) error {
	if !u.IsActive {
		return ErrUserInactive
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrEmptyToken
	}
	tokens := make([]string, 0, len(u.DeviceTokens)+1)
	for _, existing := range u.DeviceTokens {
		if existing != token {
			tokens = append(tokens, existing)
		}
	}
	tokens = append(tokens, token)
	if len(tokens) > maxDeviceTokens {
		tokens = tokens[len(tokens)-maxDeviceTokens:]
	}
	u.DeviceTokens = tokens
	return nil
}

// RemoveDeviceToken drops a token, typically on sign-out.
func (u *User) RemoveDeviceToken(token string) {
	tokens := u.DeviceTokens[:0]
	for _, existing := range u.DeviceTokens {
		if existing != token {
			tokens = append(tokens, existing)
		}
	}
	u.DeviceTokens = tokens
}

// LatestDeviceToken returns the most recently registered token, or empty
// when the user has no registered device.
func (u *User) LatestDeviceToken() string {
	if len(u.DeviceTokens) == 0 {
		return ""
	}
	return u.DeviceTokens[len(u.DeviceTokens)-1]
}

// Deactivate disables the account and clears its devices.
func (u *User) Deactivate() {
	u.IsActive = false
	u.DeviceTokens = nil
}
