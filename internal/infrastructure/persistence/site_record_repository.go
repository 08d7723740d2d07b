package persistence

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/models"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// withinRange narrows a query to rows whose date column lies inside rng
func withinRange(db *gorm.DB, column string, rng *project.DateRange) *gorm.DB {
	if rng == nil {
		return db
	}
	return db.Where(column+" >= ? AND "+column+" <= ?", rng.From, rng.To)
}

const timeEntryNotFound = "Zeiteintrag nicht gefunden"

// GormTimeEntryRepository implements TimeEntryRepository using GORM
type GormTimeEntryRepository struct {
	db *tenant.TenantDB
}

// NewGormTimeEntryRepository creates a new GormTimeEntryRepository
func NewGormTimeEntryRepository(db *gorm.DB) *GormTimeEntryRepository {
	return &GormTimeEntryRepository{db: tenant.NewTenantDB(db)}
}

// FindByIDForTenant finds a time entry by ID within a tenant
func (r *GormTimeEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*project.TimeEntry, error) {
	m, err := findScoped[models.TimeEntryModel](ctx, r.db, tenantID, id, "find time entry", timeEntryNotFound)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByProject returns the project's time entries ordered by work date
func (r *GormTimeEntryRepository) FindByProject(ctx context.Context, tenantID, projectID int64, rng *project.DateRange) ([]project.TimeEntry, error) {
	var rows []models.TimeEntryModel
	query := withinRange(r.db.WithTenant(ctx, tenantID).Where("project_id = ?", projectID), "work_date", rng)
	if err := query.Order("work_date, id").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list time entries", timeEntryNotFound)
	}
	entries := make([]project.TimeEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries, nil
}

// Save creates or updates a time entry
func (r *GormTimeEntryRepository) Save(ctx context.Context, t *project.TimeEntry) error {
	m := models.TimeEntryModelFromDomain(t)
	if t.IsNew() {
		if err := createScoped(ctx, r.db, m, t.TenantID, "create time entry"); err != nil {
			return err
		}
		t.TenantEntity = m.ToDomainTenantEntity()
		return nil
	}
	return updateScoped(ctx, r.db, m, t.TenantID, "update time entry", timeEntryNotFound)
}

// GormMaterialUsageRepository implements MaterialUsageRepository using GORM
type GormMaterialUsageRepository struct {
	db *tenant.TenantDB
}

// NewGormMaterialUsageRepository creates a new GormMaterialUsageRepository
func NewGormMaterialUsageRepository(db *gorm.DB) *GormMaterialUsageRepository {
	return &GormMaterialUsageRepository{db: tenant.NewTenantDB(db)}
}

// FindByProject returns the project's material usage ordered by usage date
func (r *GormMaterialUsageRepository) FindByProject(ctx context.Context, tenantID, projectID int64, rng *project.DateRange) ([]project.MaterialUsage, error) {
	var rows []models.MaterialUsageModel
	query := withinRange(r.db.WithTenant(ctx, tenantID).Where("project_id = ?", projectID), "usage_date", rng)
	if err := query.Order("usage_date, id").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list material usage", "")
	}
	usage := make([]project.MaterialUsage, len(rows))
	for i := range rows {
		usage[i] = *rows[i].ToDomain()
	}
	return usage, nil
}

// Save creates or updates a material usage record
func (r *GormMaterialUsageRepository) Save(ctx context.Context, u *project.MaterialUsage) error {
	m := models.MaterialUsageModelFromDomain(u)
	if u.IsNew() {
		if err := createScoped(ctx, r.db, m, u.TenantID, "create material usage"); err != nil {
			return err
		}
		u.TenantEntity = m.ToDomainTenantEntity()
		return nil
	}
	return updateScoped(ctx, r.db, m, u.TenantID, "update material usage", "Materialeintrag nicht gefunden")
}

// GormReportRepository implements ReportRepository using GORM
type GormReportRepository struct {
	db *tenant.TenantDB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: tenant.NewTenantDB(db)}
}

// FindByProject returns the project's reports ordered by report date
func (r *GormReportRepository) FindByProject(ctx context.Context, tenantID, projectID int64, rng *project.DateRange) ([]project.Report, error) {
	var rows []models.ReportModel
	query := withinRange(r.db.WithTenant(ctx, tenantID).Where("project_id = ?", projectID), "report_date", rng)
	if err := query.Order("report_date, id").Find(&rows).Error; err != nil {
		return nil, translateError(err, "list reports", "")
	}
	reports := make([]project.Report, len(rows))
	for i := range rows {
		reports[i] = *rows[i].ToDomain()
	}
	return reports, nil
}

// Save creates or updates a report
func (r *GormReportRepository) Save(ctx context.Context, rep *project.Report) error {
	m := models.ReportModelFromDomain(rep)
	if rep.IsNew() {
		if err := createScoped(ctx, r.db, m, rep.TenantID, "create report"); err != nil {
			return err
		}
		rep.TenantEntity = m.ToDomainTenantEntity()
		return nil
	}
	return updateScoped(ctx, r.db, m, rep.TenantID, "update report", "Bericht nicht gefunden")
}

var (
	_ project.TimeEntryRepository     = (*GormTimeEntryRepository)(nil)
	_ project.MaterialUsageRepository = (*GormMaterialUsageRepository)(nil)
	_ project.ReportRepository        = (*GormReportRepository)(nil)
)
