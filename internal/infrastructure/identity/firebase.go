package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"firebase.google.com/go/v4/errorutils"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"logipro/internal/domain/identity"
	"logipro/internal/logger"
	appErrors "logipro/pkg/errors"
)

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseVerifier checks customer ID tokens with Firebase Authentication.
type FirebaseVerifier struct {
	client tokenVerifier
}

func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise firebase auth: %w", err)
	}

	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*identity.Identity, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, mapFirebaseError(err)
	}

	id := &identity.Identity{SubjectID: token.UID}
	if email, ok := token.Claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := token.Claims["name"].(string); ok {
		id.DisplayName = name
	}
	return id, nil
}

func mapFirebaseError(err error) error {
	switch {
	case auth.IsIDTokenInvalid(err),
		auth.IsIDTokenExpired(err),
		auth.IsIDTokenRevoked(err),
		errorutils.IsInvalidArgument(err):
		return identity.ErrInvalidToken
	}

	logger.Warn("Identity provider call failed", zap.Error(err))
	return appErrors.ServiceUnavailable(identity.ErrUnavailable.Message, err)
}

// Disabled is used when no provider credentials are configured.
type Disabled struct{}

func (Disabled) Verify(context.Context, string) (*identity.Identity, error) {
	return nil, identity.ErrUnavailable
}
