package identity

import (
	"strings"

	"github.com/handwerk/backoffice/internal/domain/shared"
)

// Role is the job role of a user inside a tenant
type Role string

const (
	RoleMitarbeiter Role = "mitarbeiter" // site employee
	RoleBuchhalter  Role = "buchhalter"  // accountant
	RoleAdmin       Role = "admin"
)

// AllRoles returns all valid roles
func AllRoles() []Role {
	return []Role{RoleMitarbeiter, RoleBuchhalter, RoleAdmin}
}

// IsValid returns true if the role is known
func (r Role) IsValid() bool {
	switch r {
	case RoleMitarbeiter, RoleBuchhalter, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation
func (r Role) String() string {
	return string(r)
}

// ParseRole parses a role name case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewInvalidArgumentError("unknown role %q", s)
	}
	return r, nil
}

// Capability is a coarse permission granted by a role
type Capability string

const (
	// CapabilityOperations covers recording projects, time, materials and reports
	CapabilityOperations Capability = "operations"
	// CapabilityBilling covers offers, invoice generation and invoices
	CapabilityBilling Capability = "billing"
	// CapabilityAdministration covers destructive operations and tenant settings
	CapabilityAdministration Capability = "administration"
)

var roleCapabilities = map[Role][]Capability{
	RoleMitarbeiter: {CapabilityOperations},
	RoleBuchhalter:  {CapabilityOperations, CapabilityBilling},
	RoleAdmin:       {CapabilityOperations, CapabilityBilling, CapabilityAdministration},
}

// Capabilities returns the capabilities granted to the role
func (r Role) Capabilities() []Capability {
	return roleCapabilities[r]
}

// Grants reports whether the role grants the capability
func (r Role) Grants(c Capability) bool {
	for _, granted := range roleCapabilities[r] {
		if granted == c {
			return true
		}
	}
	return false
}
