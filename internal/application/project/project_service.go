package project

import (
	"context"
	"strings"

	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProjectService handles project business operations
type ProjectService struct {
	projectRepo project.ProjectRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo project.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// Create creates a new project in the caller's tenant
func (s *ProjectService) Create(ctx context.Context, caller identity.Caller, req CreateProjectRequest) (*ProjectResponse, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, err
	}

	p, err := project.NewProject(caller.TenantID, req.Name, req.ClientName)
	if err != nil {
		return nil, err
	}
	p.Description = strings.TrimSpace(req.Description)
	p.Address = strings.TrimSpace(req.Address)

	if req.HourlyRate != nil || req.TotalArea != nil || req.EstimatedHours != nil {
		if err := p.SetBillingProfile(orZero(req.HourlyRate), orZero(req.TotalArea), orZero(req.EstimatedHours)); err != nil {
			return nil, err
		}
	}

	start, err := parseOptionalDay("start_date", req.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := parseOptionalDay("end_date", req.EndDate)
	if err != nil {
		return nil, err
	}
	if err := p.SetSchedule(start, end); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// Get retrieves a project by ID
func (s *ProjectService) Get(ctx context.Context, caller identity.Caller, projectID int64) (*ProjectResponse, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.FindByIDForTenant(ctx, caller.TenantID, projectID)
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// List retrieves the tenant's projects with filtering and pagination
func (s *ProjectService) List(ctx context.Context, caller identity.Caller, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := project.ProjectFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
	}
	if filter.Status != "" {
		status := project.Status(filter.Status)
		domainFilter.Status = &status
	}

	projects, total, err := s.projectRepo.FindAllForTenant(ctx, caller.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = ToProjectResponse(&projects[i])
	}
	return responses, total, nil
}

// Update changes a project's master data or status
func (s *ProjectService) Update(ctx context.Context, caller identity.Caller, projectID int64, req UpdateProjectRequest) (*ProjectResponse, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.FindByIDForTenant(ctx, caller.TenantID, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, shared.NewInvalidArgumentError("project name cannot be empty")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
	}
	if req.ClientName != nil {
		p.ClientName = strings.TrimSpace(*req.ClientName)
	}
	if req.Address != nil {
		p.Address = strings.TrimSpace(*req.Address)
	}
	if req.Status != nil {
		if err := p.ChangeStatus(project.Status(*req.Status)); err != nil {
			return nil, err
		}
	}

	if err := s.projectRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// Delete removes a project together with its time entries, material usage,
// reports, offers and invoices
func (s *ProjectService) Delete(ctx context.Context, caller identity.Caller, projectID int64) error {
	if err := caller.Require(identity.CapabilityAdministration); err != nil {
		return err
	}
	if err := s.projectRepo.DeleteWithDependents(ctx, caller.TenantID, projectID); err != nil {
		return err
	}
	logger.L(ctx).Info("Project deleted with dependents", zap.Int64("project_id", projectID))
	return nil
}

func orZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
