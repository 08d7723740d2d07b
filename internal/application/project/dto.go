package project

import (
	"time"

	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// =============================================================================
// Project DTOs
// =============================================================================

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name           string           `json:"name" binding:"required,min=1,max=200"`
	Description    string           `json:"description"`
	ClientName     string           `json:"client_name" binding:"max=200"`
	Address        string           `json:"address" binding:"max=500"`
	HourlyRate     *decimal.Decimal `json:"hourly_rate"`
	TotalArea      *decimal.Decimal `json:"total_area"`
	EstimatedHours *decimal.Decimal `json:"estimated_hours"`
	StartDate      string           `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate        string           `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// UpdateProjectRequest represents a request to update a project; nil fields are unchanged
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description"`
	ClientName  *string `json:"client_name" binding:"omitempty,max=200"`
	Address     *string `json:"address" binding:"omitempty,max=500"`
	Status      *string `json:"status" binding:"omitempty,oneof=aktiv abgeschlossen pausiert"`
}

// ProjectListFilter holds the query parameters of the project list
type ProjectListFilter struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
	Search   string `form:"search" binding:"max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=aktiv abgeschlossen pausiert"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID             int64           `json:"id"`
	TenantID       int64           `json:"tenant_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ClientName     string          `json:"client_name"`
	Address        string          `json:"address"`
	TotalArea      decimal.Decimal `json:"total_area"`
	EstimatedHours decimal.Decimal `json:"estimated_hours"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	Status         string          `json:"status"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ToProjectResponse converts a domain project to a response
func ToProjectResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:             p.ID,
		TenantID:       p.TenantID,
		Name:           p.Name,
		Description:    p.Description,
		ClientName:     p.ClientName,
		Address:        p.Address,
		TotalArea:      p.TotalArea,
		EstimatedHours: p.EstimatedHours,
		HourlyRate:     p.HourlyRate,
		Status:         string(p.Status),
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

// =============================================================================
// Employee DTOs
// =============================================================================

// CreateEmployeeRequest represents a request to create an employee
type CreateEmployeeRequest struct {
	FirstName  string          `json:"first_name" binding:"max=100"`
	LastName   string          `json:"last_name" binding:"max=100"`
	Position   string          `json:"position" binding:"max=100"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	UserID     *int64          `json:"user_id" binding:"omitempty,gt=0"`
}

// EmployeeResponse represents an employee in API responses
type EmployeeResponse struct {
	ID         int64           `json:"id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	FullName   string          `json:"full_name"`
	Position   string          `json:"position"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	IsActive   bool            `json:"is_active"`
	UserID     *int64          `json:"user_id,omitempty"`
}

// ToEmployeeResponse converts a domain employee to a response
func ToEmployeeResponse(e *project.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		FullName:   e.FullName(),
		Position:   e.Position,
		HourlyRate: e.HourlyRate,
		IsActive:   e.IsActive,
		UserID:     e.UserID,
	}
}

// =============================================================================
// Site record DTOs
// =============================================================================

// DateRangeQuery restricts a list to an inclusive range of days
type DateRangeQuery struct {
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

// ToDateRange parses the query; nil when neither bound is given
func (q DateRangeQuery) ToDateRange() (*project.DateRange, error) {
	if q.StartDate == "" && q.EndDate == "" {
		return nil, nil
	}
	rng := &project.DateRange{To: time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)}
	if q.StartDate != "" {
		from, err := parseDay("start_date", q.StartDate)
		if err != nil {
			return nil, err
		}
		rng.From = from
	}
	if q.EndDate != "" {
		to, err := parseDay("end_date", q.EndDate)
		if err != nil {
			return nil, err
		}
		rng.To = project.EndOfDay(to)
	}
	if rng.From.After(rng.To) {
		return nil, shared.NewInvalidArgumentError("start_date must not be after end_date")
	}
	return rng, nil
}

func parseDay(field, s string) (time.Time, error) {
	t, _, err := project.ParseDay(field, s)
	if err != nil {
		return time.Time{}, err
	}
	return project.Day(t), nil
}

func parseOptionalDay(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDay(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTimeEntryRequest records hours for one employee on one day
type CreateTimeEntryRequest struct {
	EmployeeID  int64            `json:"employee_id" binding:"required,gt=0"`
	WorkDate    string           `json:"work_date" binding:"required,datetime=2006-01-02"`
	HoursWorked decimal.Decimal  `json:"hours_worked" binding:"decimal_range=0 24"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate" binding:"omitempty,decimal_range=0 10000"`
	Description string           `json:"description" binding:"max=1000"`
}

// UpdateTimeEntryRequest edits a time entry. A reason is mandatory.
type UpdateTimeEntryRequest struct {
	WorkDate    *string          `json:"work_date" binding:"omitempty,datetime=2006-01-02"`
	HoursWorked *decimal.Decimal `json:"hours_worked" binding:"omitempty,decimal_range=0 24"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate" binding:"omitempty,decimal_range=0 10000"`
	Description *string          `json:"description" binding:"omitempty,max=1000"`
	EditReason  string           `json:"edit_reason" binding:"required,min=1,max=500"`
}

// TimeEntryResponse represents a time entry in API responses
type TimeEntryResponse struct {
	ID          int64            `json:"id"`
	ProjectID   int64            `json:"project_id"`
	EmployeeID  int64            `json:"employee_id"`
	WorkDate    time.Time        `json:"work_date"`
	HoursWorked decimal.Decimal  `json:"hours_worked"`
	HourlyRate  *decimal.Decimal `json:"hourly_rate,omitempty"`
	TotalCost   decimal.Decimal  `json:"total_cost"`
	Description string           `json:"description"`
	IsEdited    bool             `json:"is_edited"`
	EditReason  string           `json:"edit_reason,omitempty"`
	EditedBy    *int64           `json:"edited_by,omitempty"`
	EditedAt    *time.Time       `json:"edited_at,omitempty"`
}

// ToTimeEntryResponse converts a domain time entry to a response
func ToTimeEntryResponse(t *project.TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:          t.ID,
		ProjectID:   t.ProjectID,
		EmployeeID:  t.EmployeeID,
		WorkDate:    t.WorkDate,
		HoursWorked: t.HoursWorked,
		HourlyRate:  t.HourlyRate,
		TotalCost:   t.TotalCost,
		Description: t.Description,
		IsEdited:    t.IsEdited,
		EditReason:  t.EditReason,
		EditedBy:    t.EditedBy,
		EditedAt:    t.EditedAt,
	}
}

// CreateMaterialUsageRequest records material consumed on a project
type CreateMaterialUsageRequest struct {
	MaterialName string          `json:"material_name" binding:"required,min=1,max=200"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit" binding:"max=20"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UsageDate    string          `json:"usage_date" binding:"omitempty,datetime=2006-01-02"`
	Notes        string          `json:"notes" binding:"max=1000"`
}

// MaterialUsageResponse represents a material usage record in API responses
type MaterialUsageResponse struct {
	ID           int64           `json:"id"`
	ProjectID    int64           `json:"project_id"`
	MaterialName string          `json:"material_name"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	UsageDate    time.Time       `json:"usage_date"`
	Notes        string          `json:"notes"`
}

// ToMaterialUsageResponse converts a domain material usage to a response
func ToMaterialUsageResponse(m *project.MaterialUsage) MaterialUsageResponse {
	return MaterialUsageResponse{
		ID:           m.ID,
		ProjectID:    m.ProjectID,
		MaterialName: m.MaterialName,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		UnitPrice:    m.UnitPrice,
		TotalCost:    m.Cost(),
		UsageDate:    m.UsageDate,
		Notes:        m.Notes,
	}
}

// CreateReportRequest files a site report
type CreateReportRequest struct {
	Title      string `json:"title" binding:"required,min=1,max=200"`
	Content    string `json:"content"`
	WorkType   string `json:"work_type" binding:"max=100"`
	ReportDate string `json:"report_date" binding:"omitempty,datetime=2006-01-02"`
}

// ReportResponse represents a site report in API responses
type ReportResponse struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	WorkType   string    `json:"work_type"`
	ReportDate time.Time `json:"report_date"`
	Status     string    `json:"status"`
}

// ToReportResponse converts a domain report to a response
func ToReportResponse(r *project.Report) ReportResponse {
	return ReportResponse{
		ID:         r.ID,
		ProjectID:  r.ProjectID,
		Title:      r.Title,
		Content:    r.Content,
		WorkType:   r.WorkTypeLabel(),
		ReportDate: r.ReportDate,
		Status:     r.Status,
	}
}
