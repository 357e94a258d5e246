package model

import (
	"fmt"
	"time"
)

// User is an account that either lists items or browses them as a vendor.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles.
const (
	RoleUser   = "user"
	RoleVendor = "vendor"
)

// ValidRole reports whether role is a known account role.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleVendor
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Actor is the authenticated caller of an operation. The zero value is an
// anonymous caller.
type Actor struct {
	UserID string
	Role   string
}

// Anonymous reports whether the actor carries no identity.
func (a Actor) Anonymous() bool {
	return a.UserID == ""
}
