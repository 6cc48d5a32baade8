// Package actor defines the party roles that act on the platform.
package actor

import "errors"

// Role identifies who is requesting an operation.
type Role string

const (
	RoleResident      Role = "RESIDENT"
	RoleVendor        Role = "VENDOR"
	RoleSocietyAdmin  Role = "SOCIETY_ADMIN"
	RolePlatformAdmin Role = "PLATFORM_ADMIN"
)

var ErrUnknownRole = errors.New("unknown actor role")

// ToRole parses and validates a role string.
func ToRole(s string) (Role, error) {
	role := Role(s)
	switch role {
	case RoleResident, RoleVendor, RoleSocietyAdmin, RolePlatformAdmin:
		return role, nil
	default:
		return "", ErrUnknownRole
	}
}
