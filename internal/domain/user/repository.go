package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"logipro/internal/authz"
)

type Filter struct {
	Role     *authz.Role
	Search   string
	Page     int
	PageSize int
}

//go:generate mockgen -destination=../../mocks/mock_user.go -package=mocks logipro/internal/domain/user Repository,RefreshTokenRepository

// Repository defines the interface for user repository operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByExternalUID(ctx context.Context, uid string) (*User, error)
	List(ctx context.Context, filter *Filter) ([]*User, int64, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, userID uuid.UUID, at time.Time) error
	CountByRole(ctx context.Context, role authz.Role) (int64, error)
}

// RefreshTokenRepository defines the interface for refresh token operations
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)
	Revoke(ctx context.Context, tokenID uuid.UUID) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, olderThan time.Duration) (int64, error)
}
