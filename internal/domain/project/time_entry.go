package project

import (
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// MaxHoursPerEntry bounds a single day's entry
var MaxHoursPerEntry = decimal.NewFromInt(24)

// TimeEntry records the hours one employee worked on one project on one day
type TimeEntry struct {
	shared.TenantEntity
	ProjectID   int64
	EmployeeID  int64
	WorkDate    time.Time
	HoursWorked decimal.Decimal
	HourlyRate  *decimal.Decimal // overrides the employee's default rate
	TotalCost   decimal.Decimal
	Description string

	IsEdited   bool
	EditReason string
	EditedBy   *int64
	EditedAt   *time.Time
}

// EffectiveRate returns the entry's own rate, else the given employee default.
// A nil employee rate means the employee is unknown and resolves to zero.
func (t *TimeEntry) EffectiveRate(employeeRate *decimal.Decimal) decimal.Decimal {
	if t.HourlyRate != nil {
		return *t.HourlyRate
	}
	if employeeRate != nil {
		return *employeeRate
	}
	return decimal.Zero
}

// RecomputeCost sets TotalCost = hours × effective rate, rounded to cents
func (t *TimeEntry) RecomputeCost(employeeRate *decimal.Decimal) {
	t.TotalCost = valueobject.RoundCents(t.HoursWorked.Mul(t.EffectiveRate(employeeRate)))
}

// NewTimeEntry creates a time entry and computes its cost
func NewTimeEntry(
	tenantID, projectID, employeeID int64,
	workDate time.Time,
	hours decimal.Decimal,
	rate *decimal.Decimal,
	employeeRate *decimal.Decimal,
	description string,
) (*TimeEntry, error) {
	if projectID <= 0 || employeeID <= 0 {
		return nil, shared.NewInvalidArgumentError("time entry requires a project and an employee")
	}
	if err := validateHours(hours); err != nil {
		return nil, err
	}
	if rate != nil && rate.IsNegative() {
		return nil, shared.NewInvalidArgumentError("hourly rate cannot be negative")
	}
	if workDate.IsZero() {
		return nil, shared.NewInvalidArgumentError("work date is required")
	}
	t := &TimeEntry{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProjectID:    projectID,
		EmployeeID:   employeeID,
		WorkDate:     Day(workDate),
		HoursWorked:  hours,
		HourlyRate:   rate,
		Description:  strings.TrimSpace(description),
	}
	t.RecomputeCost(employeeRate)
	return t, nil
}

// TimeEntryChanges holds the fields an edit may change; nil fields stay as they are
type TimeEntryChanges struct {
	WorkDate    *time.Time
	HoursWorked *decimal.Decimal
	HourlyRate  *decimal.Decimal
	Description *string
}

// Edit applies changes, records who edited the entry and why, and recomputes the cost.
// Every edit must carry a reason.
func (t *TimeEntry) Edit(editorID int64, reason string, changes TimeEntryChanges, employeeRate *decimal.Decimal) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewInvalidArgumentError("an edit reason is required when changing a time entry")
	}
	if changes.HoursWorked != nil {
		if err := validateHours(*changes.HoursWorked); err != nil {
			return err
		}
		t.HoursWorked = *changes.HoursWorked
	}
	if changes.HourlyRate != nil {
		if changes.HourlyRate.IsNegative() {
			return shared.NewInvalidArgumentError("hourly rate cannot be negative")
		}
		rate := *changes.HourlyRate
		t.HourlyRate = &rate
	}
	if changes.WorkDate != nil {
		t.WorkDate = Day(*changes.WorkDate)
	}
	if changes.Description != nil {
		t.Description = strings.TrimSpace(*changes.Description)
	}

	now := time.Now()
	t.IsEdited = true
	t.EditReason = reason
	t.EditedBy = &editorID
	t.EditedAt = &now
	t.UpdatedAt = now
	t.RecomputeCost(employeeRate)
	return nil
}

func validateHours(hours decimal.Decimal) error {
	if !hours.IsPositive() {
		return shared.NewInvalidArgumentError("hours worked must be greater than zero")
	}
	if hours.GreaterThan(MaxHoursPerEntry) {
		return shared.NewInvalidArgumentError("hours worked cannot exceed %s per entry", MaxHoursPerEntry)
	}
	return nil
}
