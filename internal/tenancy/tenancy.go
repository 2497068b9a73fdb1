// Package tenancy defines the per-request Call Context: the caller's
// identity, tenant scope, and authorities as extracted from the bearer
// token. The context is built once by the auth middleware and passed
// explicitly into every core operation; there is no ambient security state.
package tenancy

import (
	"orgmanagement_backend/platform/apperr"

	"github.com/google/uuid"
)

// RootAuthority marks a caller that bypasses all tenant checks.
const RootAuthority = "SYS_ADMIN_ROOT"

// Authorities required by non-root callers, per operation class.
const (
	AuthorityRead   = "ORGANIZATION_READ"
	AuthorityCreate = "ORGANIZATION_CREATE"
	AuthorityUpdate = "ORGANIZATION_UPDATE"
	AuthorityDelete = "ORGANIZATION_DELETE"
)

// Caller is the immutable per-request record of who is acting.
// TenantID is nil for callers whose token carries no organization claim
// (root admins typically have none).
type Caller struct {
	Subject     string
	TenantID    *uuid.UUID
	Authorities []string
}

// IsRootAdmin reports whether the caller bears the root authority.
func (c Caller) IsRootAdmin() bool {
	return c.HasAuthority(RootAuthority)
}

// HasAuthority reports whether the caller bears the given authority.
func (c Caller) HasAuthority(authority string) bool {
	for _, a := range c.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// CurrentTenantID returns the caller's organization, or Forbidden when the
// token carries no organization context.
func (c Caller) CurrentTenantID() (uuid.UUID, error) {
	if c.TenantID == nil {
		return uuid.Nil, apperr.Forbidden("no organization context in token")
	}
	return *c.TenantID, nil
}

// RequireTenantAccess succeeds for root admins, and for tenant callers
// whose organization matches the target.
func (c Caller) RequireTenantAccess(organizationID uuid.UUID) error {
	if c.IsRootAdmin() {
		return nil
	}

	current, err := c.CurrentTenantID()
	if err != nil {
		return err
	}
	if current != organizationID {
		return apperr.Forbidden("access denied: resource belongs to a different organization")
	}
	return nil
}

// ResolveTenantScope implements the uniform operation preamble: root callers
// act on the explicitly supplied organization, tenant callers on their own.
// Returns BadRequest when a root caller omits the organization.
func (c Caller) ResolveTenantScope(explicit *uuid.UUID) (uuid.UUID, error) {
	if c.IsRootAdmin() {
		if explicit == nil {
			return uuid.Nil, apperr.BadRequest("organization ID is required for root admin requests")
		}
		return *explicit, nil
	}

	orgID, err := c.CurrentTenantID()
	if err != nil {
		return uuid.Nil, err
	}
	if err := c.RequireTenantAccess(orgID); err != nil {
		return uuid.Nil, err
	}
	return orgID, nil
}
