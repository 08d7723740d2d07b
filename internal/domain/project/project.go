package project

import (
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle status of a project
type Status string

const (
	StatusActive    Status = "aktiv"
	StatusCompleted Status = "abgeschlossen"
	StatusPaused    Status = "pausiert"
)

// IsValid checks if the status is a valid project status
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusPaused:
		return true
	}
	return false
}

// Project is a construction or renovation job for one client.
// The billing profile (HourlyRate, TotalArea, EstimatedHours) is informational
// and does not feed the invoice calculation.
type Project struct {
	shared.TenantEntity
	Name           string
	Description    string
	ClientName     string
	Address        string
	TotalArea      decimal.Decimal
	EstimatedHours decimal.Decimal
	HourlyRate     decimal.Decimal
	Status         Status
	StartDate      *time.Time
	EndDate        *time.Time
}

// NewProject creates a new active project
func NewProject(tenantID int64, name, clientName string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewInvalidArgumentError("project name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewInvalidArgumentError("project name cannot exceed 200 characters")
	}
	return &Project{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		ClientName:   strings.TrimSpace(clientName),
		Status:       StatusActive,
		TotalArea:    decimal.Zero,
		HourlyRate:   decimal.Zero,
	}, nil
}

// SetBillingProfile sets the informational billing figures of the project
func (p *Project) SetBillingProfile(hourlyRate, totalArea, estimatedHours decimal.Decimal) error {
	if hourlyRate.IsNegative() || totalArea.IsNegative() || estimatedHours.IsNegative() {
		return shared.NewInvalidArgumentError("billing profile values cannot be negative")
	}
	p.HourlyRate = hourlyRate
	p.TotalArea = totalArea
	p.EstimatedHours = estimatedHours
	p.UpdatedAt = time.Now()
	return nil
}

// SetSchedule sets the planned start and end of the project
func (p *Project) SetSchedule(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewInvalidArgumentError("project end date cannot be before its start date")
	}
	p.StartDate = start
	p.EndDate = end
	p.UpdatedAt = time.Now()
	return nil
}

// ChangeStatus moves the project to a new status
func (p *Project) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewInvalidArgumentError("invalid project status %q", status)
	}
	p.Status = status
	p.UpdatedAt = time.Now()
	return nil
}
