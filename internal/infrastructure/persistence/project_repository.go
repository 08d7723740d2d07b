package persistence

import (
	"context"
	"fmt"

	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/models"
	"github.com/handwerk/backoffice/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

const projectNotFound = "Projekt nicht gefunden"

// GormProjectRepository implements ProjectRepository using GORM
type GormProjectRepository struct {
	db *tenant.TenantDB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: tenant.NewTenantDB(db)}
}

// FindByIDForTenant finds a project by ID within a tenant
func (r *GormProjectRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*project.Project, error) {
	m, err := findScoped[models.ProjectModel](ctx, r.db, tenantID, id, "find project", projectNotFound)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindAllForTenant lists projects of a tenant with optional status and name search
func (r *GormProjectRepository) FindAllForTenant(ctx context.Context, tenantID int64, filter project.ProjectFilter) ([]project.Project, int64, error) {
	query := r.db.WithTenant(ctx, tenantID).Model(&models.ProjectModel{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("name LIKE ? OR client_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count projects", projectNotFound)
	}

	var rows []models.ProjectModel
	if err := applyPaging(query, filter.Filter, ProjectSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list projects", projectNotFound)
	}

	projects := make([]project.Project, len(rows))
	for i := range rows {
		projects[i] = *rows[i].ToDomain()
	}
	return projects, total, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, p *project.Project) error {
	m := models.ProjectModelFromDomain(p)
	if p.IsNew() {
		if err := createScoped(ctx, r.db, m, p.TenantID, "create project"); err != nil {
			return err
		}
		p.TenantEntity = m.ToDomainTenantEntity()
		return nil
	}
	return updateScoped(ctx, r.db, m, p.TenantID, "update project", projectNotFound)
}

// DeleteWithDependents hard deletes a project and every record that references it.
// Either all rows go or none.
func (r *GormProjectRepository) DeleteWithDependents(ctx context.Context, tenantID, id int64) error {
	return r.db.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.ProjectModel
		if err := tx.Scopes(tenant.Scope(tenantID)).First(&m, id).Error; err != nil {
			return translateError(err, "find project", projectNotFound)
		}
		if _, err := tenant.Authorize(&m, tenantID, projectNotFound); err != nil {
			return err
		}

		dependents := []struct {
			name  string
			model any
		}{
			{"time entries", &models.TimeEntryModel{}},
			{"material usage", &models.MaterialUsageModel{}},
			{"reports", &models.ReportModel{}},
			{"invoices", &models.InvoiceModel{}},
			{"offers", &models.OfferModel{}},
		}
		for _, d := range dependents {
			if err := deleteScoped(tx, tenantID, d.model, "project_id = ?", id); err != nil {
				return fmt.Errorf("delete %s of project %d: %w", d.name, id, err)
			}
		}
		if err := deleteScoped(tx, tenantID, &models.ProjectModel{}, "id = ?", id); err != nil {
			return fmt.Errorf("delete project %d: %w", id, err)
		}
		return nil
	})
}

const employeeNotFound = "Mitarbeiter nicht gefunden"

// GormEmployeeRepository implements EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *tenant.TenantDB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: tenant.NewTenantDB(db)}
}

// FindByIDForTenant finds an employee by ID within a tenant
func (r *GormEmployeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*project.Employee, error) {
	m, err := findScoped[models.EmployeeModel](ctx, r.db, tenantID, id, "find employee", employeeNotFound)
	if err != nil {
		return nil, err
	}
	return m.ToDomain(), nil
}

// FindByIDsForTenant returns the tenant's employees among ids
func (r *GormEmployeeRepository) FindByIDsForTenant(ctx context.Context, tenantID int64, ids []int64) ([]project.Employee, error) {
	if len(ids) == 0 {
		return []project.Employee{}, nil
	}
	var rows []models.EmployeeModel
	if err := r.db.WithTenant(ctx, tenantID).Where("id IN ?", ids).Order("id").Find(&rows).Error; err != nil {
		return nil, translateError(err, "find employees", employeeNotFound)
	}
	employees := make([]project.Employee, len(rows))
	for i := range rows {
		employees[i] = *rows[i].ToDomain()
	}
	return employees, nil
}

// FindAllForTenant lists employees of a tenant
func (r *GormEmployeeRepository) FindAllForTenant(ctx context.Context, tenantID int64, filter shared.Filter) ([]project.Employee, int64, error) {
	query := r.db.WithTenant(ctx, tenantID).Model(&models.EmployeeModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translateError(err, "count employees", employeeNotFound)
	}

	var rows []models.EmployeeModel
	if err := applyPaging(query, filter, EmployeeSortFields, "last_name").Find(&rows).Error; err != nil {
		return nil, 0, translateError(err, "list employees", employeeNotFound)
	}
	employees := make([]project.Employee, len(rows))
	for i := range rows {
		employees[i] = *rows[i].ToDomain()
	}
	return employees, total, nil
}

// Save creates or updates an employee
func (r *GormEmployeeRepository) Save(ctx context.Context, e *project.Employee) error {
	m := models.EmployeeModelFromDomain(e)
	if e.IsNew() {
		if err := createScoped(ctx, r.db, m, e.TenantID, "create employee"); err != nil {
			return err
		}
		e.TenantEntity = m.ToDomainTenantEntity()
		return nil
	}
	return updateScoped(ctx, r.db, m, e.TenantID, "update employee", employeeNotFound)
}

var (
	_ project.ProjectRepository  = (*GormProjectRepository)(nil)
	_ project.EmployeeRepository = (*GormEmployeeRepository)(nil)
)
