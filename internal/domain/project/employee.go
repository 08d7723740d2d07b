package project

import (
	"fmt"
	"strings"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Employee is a worker whose hours are recorded against projects
type Employee struct {
	shared.TenantEntity
	UserID     *int64 // login account, lookup only
	FirstName  string
	LastName   string
	Position   string
	HourlyRate decimal.Decimal
	IsActive   bool
}

// NewEmployee creates a new active employee
func NewEmployee(tenantID int64, firstName, lastName string, hourlyRate decimal.Decimal) (*Employee, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return nil, shared.NewInvalidArgumentError("employee name cannot be empty")
	}
	if hourlyRate.IsNegative() {
		return nil, shared.NewInvalidArgumentError("hourly rate cannot be negative")
	}
	return &Employee{
		TenantEntity: shared.NewTenantEntity(tenantID),
		FirstName:    firstName,
		LastName:     lastName,
		HourlyRate:   hourlyRate,
		IsActive:     true,
	}, nil
}

// FullName returns "First Last", or a placeholder when no name is recorded
func (e *Employee) FullName() string {
	name := strings.TrimSpace(e.FirstName + " " + e.LastName)
	if name == "" {
		return fmt.Sprintf("Mitarbeiter %d", e.ID)
	}
	return name
}

// Deactivate marks the employee as no longer working for the tenant
func (e *Employee) Deactivate() {
	e.IsActive = false
}
