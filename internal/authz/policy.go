package authz

import (
	"context"

	appErrors "logipro/pkg/errors"
)

// OwnershipCheck reports whether principal may act on the resource.
// Returning a NotFound error lets the caller answer 404 rather than 403.
type OwnershipCheck func(ctx context.Context, principal Principal, resourceID string) (bool, error)

// Policy is a capability: the roles allowed to call an operation and an
// optional ownership predicate that must also hold.
type Policy struct {
	Roles []Role
	Owner OwnershipCheck
	// OwnerBypass lists roles that skip the ownership predicate.
	OwnerBypass []Role
}

func Allow(roles ...Role) Policy {
	return Policy{Roles: roles}
}

func (p Policy) WithOwner(check OwnershipCheck, bypass ...Role) Policy {
	p.Owner = check
	p.OwnerBypass = bypass
	return p
}

func (p Policy) allowsRole(role Role) bool {
	if len(p.Roles) == 0 {
		return true
	}
	return containsRole(p.Roles, role)
}

// Evaluate returns nil when principal satisfies the policy for resourceID.
func (p Policy) Evaluate(ctx context.Context, principal Principal, resourceID string) error {
	if !p.allowsRole(principal.Role) {
		return appErrors.ErrInsufficientPermissions
	}
	if p.Owner == nil || containsRole(p.OwnerBypass, principal.Role) {
		return nil
	}

	ok, err := p.Owner(ctx, principal, resourceID)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Forbidden("You do not have access to this resource")
	}
	return nil
}

func containsRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
