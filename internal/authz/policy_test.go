package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	appErrors "logipro/pkg/errors"
)

func TestPolicyRoles(t *testing.T) {
	ctx := context.Background()
	policy := Allow(Staff...)

	assert.NoError(t, policy.Evaluate(ctx, Principal{Role: RoleManager}, ""))
	assert.ErrorIs(t, policy.Evaluate(ctx, Principal{Role: RoleDriver}, ""), appErrors.ErrInsufficientPermissions)
}

func TestPolicyOwnership(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	missing := appErrors.NotFound("Shipment not found", nil)

	check := func(_ context.Context, p Principal, id string) (bool, error) {
		if id == "missing" {
			return false, missing
		}
		return p.UserID == owner, nil
	}
	policy := Allow(RoleDriver, RoleAdmin).WithOwner(check, RoleAdmin)

	assert.NoError(t, policy.Evaluate(ctx, Principal{UserID: owner, Role: RoleDriver}, "s1"))

	err := policy.Evaluate(ctx, Principal{UserID: uuid.New(), Role: RoleDriver}, "s1")
	assert.True(t, appErrors.HasCode(err, appErrors.CodeForbidden))

	err = policy.Evaluate(ctx, Principal{UserID: owner, Role: RoleDriver}, "missing")
	assert.True(t, errors.Is(err, missing))

	assert.NoError(t, policy.Evaluate(ctx, Principal{UserID: uuid.New(), Role: RoleAdmin}, "s1"))
}

func TestRole(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.False(t, RoleCustomer.IsStaff())
	assert.False(t, Role("shipper").IsValid())

	ctx := WithPrincipal(context.Background(), Principal{Role: RoleCustomer})
	p, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, RoleCustomer, p.Role)
}
