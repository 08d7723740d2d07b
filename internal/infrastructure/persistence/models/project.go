package models

import (
	"time"

	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/shopspring/decimal"
)

// ProjectModel is the persistence model for projects
type ProjectModel struct {
	TenantModel
	Name           string          `gorm:"type:varchar(200);not null"`
	Description    string          `gorm:"type:text"`
	ClientName     string          `gorm:"type:varchar(200)"`
	Address        string          `gorm:"type:varchar(500)"`
	TotalArea      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	EstimatedHours decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	HourlyRate     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	Status         project.Status  `gorm:"type:varchar(20);not null;default:'aktiv';index"`
	StartDate      *time.Time
	EndDate        *time.Time
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		TenantEntity:   m.ToDomainTenantEntity(),
		Name:           m.Name,
		Description:    m.Description,
		ClientName:     m.ClientName,
		Address:        m.Address,
		TotalArea:      m.TotalArea,
		EstimatedHours: m.EstimatedHours,
		HourlyRate:     m.HourlyRate,
		Status:         m.Status,
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
	}
}

// ProjectModelFromDomain creates a persistence model from a domain Project
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{
		Name:           p.Name,
		Description:    p.Description,
		ClientName:     p.ClientName,
		Address:        p.Address,
		TotalArea:      p.TotalArea,
		EstimatedHours: p.EstimatedHours,
		HourlyRate:     p.HourlyRate,
		Status:         p.Status,
		StartDate:      p.StartDate,
		EndDate:        p.EndDate,
	}
	m.FromDomainTenantEntity(p.TenantEntity)
	return m
}

// EmployeeModel is the persistence model for employees
type EmployeeModel struct {
	TenantModel
	UserID     *int64          `gorm:"index"`
	FirstName  string          `gorm:"type:varchar(100);not null"`
	LastName   string          `gorm:"type:varchar(100);not null"`
	Position   string          `gorm:"type:varchar(100)"`
	HourlyRate decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	IsActive   bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a domain Employee
func (m *EmployeeModel) ToDomain() *project.Employee {
	return &project.Employee{
		TenantEntity: m.ToDomainTenantEntity(),
		UserID:       m.UserID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		Position:     m.Position,
		HourlyRate:   m.HourlyRate,
		IsActive:     m.IsActive,
	}
}

// EmployeeModelFromDomain creates a persistence model from a domain Employee
func EmployeeModelFromDomain(e *project.Employee) *EmployeeModel {
	m := &EmployeeModel{
		UserID:     e.UserID,
		FirstName:  e.FirstName,
		LastName:   e.LastName,
		Position:   e.Position,
		HourlyRate: e.HourlyRate,
		IsActive:   e.IsActive,
	}
	m.FromDomainTenantEntity(e.TenantEntity)
	return m
}

// TimeEntryModel is the persistence model for time entries
type TimeEntryModel struct {
	TenantModel
	ProjectID   int64            `gorm:"not null;index:idx_time_entries_project_date,priority:1"`
	EmployeeID  int64            `gorm:"not null;index"`
	WorkDate    time.Time        `gorm:"not null;index:idx_time_entries_project_date,priority:2"`
	HoursWorked decimal.Decimal  `gorm:"type:decimal(6,2);not null"`
	HourlyRate  *decimal.Decimal `gorm:"type:decimal(10,2)"`
	TotalCost   decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Description string           `gorm:"type:text"`
	IsEdited    bool             `gorm:"not null;default:false"`
	EditReason  string           `gorm:"type:varchar(500)"`
	EditedBy    *int64
	EditedAt    *time.Time
}

// TableName returns the table name for GORM
func (TimeEntryModel) TableName() string {
	return "time_entries"
}

// ToDomain converts the persistence model to a domain TimeEntry
func (m *TimeEntryModel) ToDomain() *project.TimeEntry {
	return &project.TimeEntry{
		TenantEntity: m.ToDomainTenantEntity(),
		ProjectID:    m.ProjectID,
		EmployeeID:   m.EmployeeID,
		WorkDate:     m.WorkDate,
		HoursWorked:  m.HoursWorked,
		HourlyRate:   m.HourlyRate,
		TotalCost:    m.TotalCost,
		Description:  m.Description,
		IsEdited:     m.IsEdited,
		EditReason:   m.EditReason,
		EditedBy:     m.EditedBy,
		EditedAt:     m.EditedAt,
	}
}

// TimeEntryModelFromDomain creates a persistence model from a domain TimeEntry
func TimeEntryModelFromDomain(t *project.TimeEntry) *TimeEntryModel {
	m := &TimeEntryModel{
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
	m.FromDomainTenantEntity(t.TenantEntity)
	return m
}

// MaterialUsageModel is the persistence model for material usage
type MaterialUsageModel struct {
	TenantModel
	ProjectID    int64            `gorm:"not null;index:idx_material_usage_project_date,priority:1"`
	MaterialName string           `gorm:"type:varchar(200);not null"`
	Quantity     decimal.Decimal  `gorm:"type:decimal(12,3);not null"`
	Unit         string           `gorm:"type:varchar(20);not null;default:'Stk'"`
	UnitPrice    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	TotalCost    *decimal.Decimal `gorm:"type:decimal(12,2)"`
	UsageDate    time.Time        `gorm:"not null;index:idx_material_usage_project_date,priority:2"`
	Notes        string           `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MaterialUsageModel) TableName() string {
	return "material_usage"
}

// ToDomain converts the persistence model to a domain MaterialUsage
func (m *MaterialUsageModel) ToDomain() *project.MaterialUsage {
	return &project.MaterialUsage{
		TenantEntity: m.ToDomainTenantEntity(),
		ProjectID:    m.ProjectID,
		MaterialName: m.MaterialName,
		Quantity:     m.Quantity,
		Unit:         m.Unit,
		UnitPrice:    m.UnitPrice,
		TotalCost:    m.TotalCost,
		UsageDate:    m.UsageDate,
		Notes:        m.Notes,
	}
}

// MaterialUsageModelFromDomain creates a persistence model from a domain MaterialUsage
func MaterialUsageModelFromDomain(u *project.MaterialUsage) *MaterialUsageModel {
	m := &MaterialUsageModel{
		ProjectID:    u.ProjectID,
		MaterialName: u.MaterialName,
		Quantity:     u.Quantity,
		Unit:         u.Unit,
		UnitPrice:    u.UnitPrice,
		TotalCost:    u.TotalCost,
		UsageDate:    u.UsageDate,
		Notes:        u.Notes,
	}
	m.FromDomainTenantEntity(u.TenantEntity)
	return m
}

// ReportModel is the persistence model for site reports
type ReportModel struct {
	TenantModel
	ProjectID  int64     `gorm:"not null;index:idx_reports_project_date,priority:1"`
	Title      string    `gorm:"type:varchar(200);not null"`
	Content    string    `gorm:"type:text"`
	ReportDate time.Time `gorm:"not null;index:idx_reports_project_date,priority:2"`
	WorkType   string    `gorm:"type:varchar(100)"`
	Status     string    `gorm:"type:varchar(20);not null;default:'entwurf'"`
}

// TableName returns the table name for GORM
func (ReportModel) TableName() string {
	return "reports"
}

// ToDomain converts the persistence model to a domain Report
func (m *ReportModel) ToDomain() *project.Report {
	return &project.Report{
		TenantEntity: m.ToDomainTenantEntity(),
		ProjectID:    m.ProjectID,
		Title:        m.Title,
		Content:      m.Content,
		ReportDate:   m.ReportDate,
		WorkType:     m.WorkType,
		Status:       m.Status,
	}
}

// ReportModelFromDomain creates a persistence model from a domain Report
func ReportModelFromDomain(r *project.Report) *ReportModel {
	m := &ReportModel{
		ProjectID:  r.ProjectID,
		Title:      r.Title,
		Content:    r.Content,
		ReportDate: r.ReportDate,
		WorkType:   r.WorkType,
		Status:     r.Status,
	}
	m.FromDomainTenantEntity(r.TenantEntity)
	return m
}
