package project

import (
	"context"
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SiteRecordService records what happens on a project's site: hours worked,
// material consumed and narrative reports. These records are the raw data
// invoices are generated from.
type SiteRecordService struct {
	projectRepo   project.ProjectRepository
	employeeRepo  project.EmployeeRepository
	timeEntryRepo project.TimeEntryRepository
	materialRepo  project.MaterialUsageRepository
	reportRepo    project.ReportRepository
	now           func() time.Time
}

// NewSiteRecordService creates a new SiteRecordService
func NewSiteRecordService(
	projectRepo project.ProjectRepository,
	employeeRepo project.EmployeeRepository,
	timeEntryRepo project.TimeEntryRepository,
	materialRepo project.MaterialUsageRepository,
	reportRepo project.ReportRepository,
) *SiteRecordService {
	return &SiteRecordService{
		projectRepo:   projectRepo,
		employeeRepo:  employeeRepo,
		timeEntryRepo: timeEntryRepo,
		materialRepo:  materialRepo,
		reportRepo:    reportRepo,
		now:           time.Now,
	}
}

// SetClock replaces the time source used for default dates
func (s *SiteRecordService) SetClock(now func() time.Time) {
	s.now = now
}

// requireProject checks the capability and that the project belongs to the caller's tenant
func (s *SiteRecordService) requireProject(ctx context.Context, caller identity.Caller, projectID int64) error {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return err
	}
	_, err := s.projectRepo.FindByIDForTenant(ctx, caller.TenantID, projectID)
	return err
}

// RecordTime records hours worked by an employee on a project
func (s *SiteRecordService) RecordTime(ctx context.Context, caller identity.Caller, projectID int64, req CreateTimeEntryRequest) (*TimeEntryResponse, error) {
	if err := s.requireProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	emp, err := s.employeeRepo.FindByIDForTenant(ctx, caller.TenantID, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	workDate, err := parseDay("work_date", req.WorkDate)
	if err != nil {
		return nil, err
	}

	entry, err := project.NewTimeEntry(caller.TenantID, projectID, emp.ID, workDate, req.HoursWorked, req.HourlyRate, &emp.HourlyRate, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.timeEntryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}
	response := ToTimeEntryResponse(entry)
	return &response, nil
}

// ListTimeEntries lists a project's time entries, optionally restricted to a date range
func (s *SiteRecordService) ListTimeEntries(ctx context.Context, caller identity.Caller, projectID int64, q DateRangeQuery) ([]TimeEntryResponse, error) {
	if err := s.requireProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	rng, err := q.ToDateRange()
	if err != nil {
		return nil, err
	}
	entries, err := s.timeEntryRepo.FindByProject(ctx, caller.TenantID, projectID, rng)
	if err != nil {
		return nil, err
	}
	responses := make([]TimeEntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToTimeEntryResponse(&entries[i])
	}
	return responses, nil
}

// EditTimeEntry changes a time entry, recording the editor, the reason and the time
// of the edit. The cost is recomputed from the effective rate.
func (s *SiteRecordService) EditTimeEntry(ctx context.Context, caller identity.Caller, entryID int64, req UpdateTimeEntryRequest) (*TimeEntryResponse, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, err
	}
	entry, err := s.timeEntryRepo.FindByIDForTenant(ctx, caller.TenantID, entryID)
	if err != nil {
		return nil, err
	}

	var employeeRate *decimal.Decimal
	emp, err := s.employeeRepo.FindByIDForTenant(ctx, caller.TenantID, entry.EmployeeID)
	switch {
	case err == nil:
		employeeRate = &emp.HourlyRate
	case !shared.HasCode(err, shared.CodeNotFound):
		return nil, err
	}

	changes := project.TimeEntryChanges{
		HoursWorked: req.HoursWorked,
		HourlyRate:  req.HourlyRate,
		Description: req.Description,
	}
	if req.WorkDate != nil {
		day, err := parseDay("work_date", *req.WorkDate)
		if err != nil {
			return nil, err
		}
		changes.WorkDate = &day
	}
	if err := entry.Edit(caller.UserID, req.EditReason, changes, employeeRate); err != nil {
		return nil, err
	}
	if err := s.timeEntryRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Time entry edited",
		zap.Int64("time_entry_id", entry.ID),
		zap.Int64("edited_by", caller.UserID),
		zap.String("reason", entry.EditReason),
	)
	response := ToTimeEntryResponse(entry)
	return &response, nil
}

// RecordMaterial records material consumed on a project
func (s *SiteRecordService) RecordMaterial(ctx context.Context, caller identity.Caller, projectID int64, req CreateMaterialUsageRequest) (*MaterialUsageResponse, error) {
	if err := s.requireProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	usageDate, err := s.dayOrToday("usage_date", req.UsageDate)
	if err != nil {
		return nil, err
	}
	usage, err := project.NewMaterialUsage(caller.TenantID, projectID, req.MaterialName, req.Quantity, req.Unit, req.UnitPrice, usageDate)
	if err != nil {
		return nil, err
	}
	usage.Notes = strings.TrimSpace(req.Notes)

	if err := s.materialRepo.Save(ctx, usage); err != nil {
		return nil, err
	}
	response := ToMaterialUsageResponse(usage)
	return &response, nil
}

// ListMaterials lists a project's material usage
func (s *SiteRecordService) ListMaterials(ctx context.Context, caller identity.Caller, projectID int64, q DateRangeQuery) ([]MaterialUsageResponse, error) {
	if err := s.requireProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	rng, err := q.ToDateRange()
	if err != nil {
		return nil, err
	}
	usages, err := s.materialRepo.FindByProject(ctx, caller.TenantID, projectID, rng)
	if err != nil {
		return nil, err
	}
	responses := make([]MaterialUsageResponse, len(usages))
	for i := range usages {
		responses[i] = ToMaterialUsageResponse(&usages[i])
	}
	return responses, nil
}

// FileReport files a site report for a project
func (s *SiteRecordService) FileReport(ctx context.Context, caller identity.Caller, projectID int64, req CreateReportRequest) (*ReportResponse, error) {
	if err := s.requireProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	reportDate, err := s.dayOrToday("report_date", req.ReportDate)
	if err != nil {
		return nil, err
	}
	report, err := project.NewReport(caller.TenantID, projectID, req.Title, req.Content, req.WorkType, reportDate)
	if err != nil {
		return nil, err
	}
	if err := s.reportRepo.Save(ctx, report); err != nil {
		return nil, err
	}
	response := ToReportResponse(report)
	return &response, nil
}

// ListReports lists a project's site reports
func (s *SiteRecordService) ListReports(ctx context.Context, caller identity.Caller, projectID int64, q DateRangeQuery) ([]ReportResponse, error) {
	if err := s.requireProject(ctx, caller, projectID); err != nil {
		return nil, err
	}
	rng, err := q.ToDateRange()
	if err != nil {
		return nil, err
	}
	reports, err := s.reportRepo.FindByProject(ctx, caller.TenantID, projectID, rng)
	if err != nil {
		return nil, err
	}
	responses := make([]ReportResponse, len(reports))
	for i := range reports {
		responses[i] = ToReportResponse(&reports[i])
	}
	return responses, nil
}

func (s *SiteRecordService) dayOrToday(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return project.Day(s.now()), nil
	}
	return parseDay(field, value)
}
