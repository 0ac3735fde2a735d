package identity

import (
	"context"

	appErrors "logipro/pkg/errors"
)

// Identity is what the external provider vouches for after verifying an ID token.
type Identity struct {
	SubjectID   string
	Email       string
	DisplayName string
}

//go:generate mockgen -destination=../../mocks/mock_identity.go -package=mocks logipro/internal/domain/identity Verifier

// Verifier checks an opaque ID token with the external identity provider.
// Implementations return ErrInvalidToken when the provider rejects the token
// and ErrUnavailable when it cannot be reached.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

var (
	ErrInvalidToken = appErrors.NewAppError(appErrors.CodeInvalidToken, "Invalid identity token", nil)
	ErrUnavailable  = appErrors.ServiceUnavailable("Identity provider unavailable", nil)
)
