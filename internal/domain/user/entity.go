package user

import (
	"time"

	"github.com/google/uuid"

	"logipro/internal/authz"
)

// User is an account of any role. Customers signing in through the identity
// provider carry ExternalUID and no password.
type User struct {
	ID             uuid.UUID
	Email          string
	PasswordHashed string
	FullName       string
	PhoneNumber    *string
	Role           authz.Role
	ExternalUID    *string
	IsActive       bool
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefreshToken represents a refresh token entity
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// IsActive checks if the refresh token is neither revoked nor expired
func (rt *RefreshToken) IsActive() bool {
	return !rt.Revoked && !rt.IsExpired()
}
