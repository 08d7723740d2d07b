package identity

import (
	"fmt"

	"github.com/handwerk/backoffice/internal/domain/shared"
)

// Caller is the resolved identity of the party making a request.
// It is produced by the transport layer and handed to application services,
// which rely on Can instead of inspecting role names themselves.
type Caller struct {
	TenantID int64
	UserID   int64
	Role     Role
}

// NewCaller creates a caller, validating the tenant and role
func NewCaller(tenantID, userID int64, role Role) (Caller, error) {
	if tenantID <= 0 {
		return Caller{}, shared.NewInvalidArgumentError("tenant id must be positive")
	}
	if !role.IsValid() {
		return Caller{}, shared.NewInvalidArgumentError("unknown role %q", role)
	}
	return Caller{TenantID: tenantID, UserID: userID, Role: role}, nil
}

// Can reports whether the caller holds the capability
func (c Caller) Can(capability Capability) bool {
	return c.TenantID > 0 && c.Role.Grants(capability)
}

// Require returns a FORBIDDEN error when the caller lacks the capability
func (c Caller) Require(capability Capability) error {
	if c.Can(capability) {
		return nil
	}
	return shared.NewDomainError(shared.CodeForbidden,
		fmt.Sprintf("role %q is not allowed to perform %s operations", c.Role, capability))
}
