package identity

import (
	"context"
	"errors"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logipro/internal/domain/identity"
	appErrors "logipro/pkg/errors"
)

type stubVerifier struct {
	token *auth.Token
	err   error
}

func (s stubVerifier) VerifyIDToken(context.Context, string) (*auth.Token, error) {
	return s.token, s.err
}

func TestFirebaseVerifier_MapsClaims(t *testing.T) {
	v := &FirebaseVerifier{client: stubVerifier{token: &auth.Token{
		UID:    "firebase-uid-1",
		Claims: map[string]interface{}{"email": "ana@example.com", "name": "Ana"},
	}}}

	id, err := v.Verify(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, &identity.Identity{SubjectID: "firebase-uid-1", Email: "ana@example.com", DisplayName: "Ana"}, id)
}

func TestFirebaseVerifier_TransportFailureIsUnavailable(t *testing.T) {
	v := &FirebaseVerifier{client: stubVerifier{err: errors.New("dial tcp: connection refused")}}

	_, err := v.Verify(context.Background(), "token")
	assert.True(t, appErrors.HasCode(err, appErrors.CodeServiceUnavailable))
}

func TestDisabledVerifier(t *testing.T) {
	_, err := Disabled{}.Verify(context.Background(), "token")
	assert.ErrorIs(t, err, identity.ErrUnavailable)
}
