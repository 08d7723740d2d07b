package project

import (
	"context"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
)

// DateRange is an inclusive range of calendar days
type DateRange struct {
	From time.Time
	To   time.Time
}

// LastDays returns the n days before now's calendar day plus that day itself
func LastDays(now time.Time, n int) DateRange {
	return DateRange{From: Day(now).AddDate(0, 0, -n), To: EndOfDay(now)}
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.From) && !t.After(r.To)
}

// ProjectFilter defines filtering options for project queries
type ProjectFilter struct {
	shared.Filter
	Status *Status
}

// ProjectRepository defines the interface for project persistence.
// Every method takes the tenant explicitly; a project of another tenant is reported as not found.
type ProjectRepository interface {
	// FindByIDForTenant finds a project by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id int64) (*Project, error)

	// FindAllForTenant lists projects of a tenant
	FindAllForTenant(ctx context.Context, tenantID int64, filter ProjectFilter) ([]Project, int64, error)

	// Save creates or updates a project
	Save(ctx context.Context, project *Project) error

	// DeleteWithDependents hard deletes a project together with its time entries,
	// material usage, reports, offers and invoices in one transaction
	DeleteWithDependents(ctx context.Context, tenantID, id int64) error
}

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id int64) (*Employee, error)
	// FindByIDsForTenant returns the employees with the given ids; unknown ids are skipped
	FindByIDsForTenant(ctx context.Context, tenantID int64, ids []int64) ([]Employee, error)
	FindAllForTenant(ctx context.Context, tenantID int64, filter shared.Filter) ([]Employee, int64, error)
	Save(ctx context.Context, employee *Employee) error
}

// TimeEntryRepository defines the interface for time entry persistence
type TimeEntryRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id int64) (*TimeEntry, error)
	// FindByProject returns the project's entries ordered by work date; a nil range means all
	FindByProject(ctx context.Context, tenantID, projectID int64, rng *DateRange) ([]TimeEntry, error)
	Save(ctx context.Context, entry *TimeEntry) error
}

// MaterialUsageRepository defines the interface for material usage persistence
type MaterialUsageRepository interface {
	FindByProject(ctx context.Context, tenantID, projectID int64, rng *DateRange) ([]MaterialUsage, error)
	Save(ctx context.Context, usage *MaterialUsage) error
}

// ReportRepository defines the interface for report persistence
type ReportRepository interface {
	FindByProject(ctx context.Context, tenantID, projectID int64, rng *DateRange) ([]Report, error)
	Save(ctx context.Context, report *Report) error
}
