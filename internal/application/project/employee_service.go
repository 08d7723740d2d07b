package project

import (
	"context"
	"strings"

	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
)

// EmployeeService handles employee master data
type EmployeeService struct {
	employeeRepo project.EmployeeRepository
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(employeeRepo project.EmployeeRepository) *EmployeeService {
	return &EmployeeService{employeeRepo: employeeRepo}
}

// Create creates a new employee
func (s *EmployeeService) Create(ctx context.Context, caller identity.Caller, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, err
	}
	e, err := project.NewEmployee(caller.TenantID, req.FirstName, req.LastName, req.HourlyRate)
	if err != nil {
		return nil, err
	}
	e.Position = strings.TrimSpace(req.Position)
	e.UserID = req.UserID

	if err := s.employeeRepo.Save(ctx, e); err != nil {
		return nil, err
	}
	response := ToEmployeeResponse(e)
	return &response, nil
}

// Get retrieves an employee by ID
func (s *EmployeeService) Get(ctx context.Context, caller identity.Caller, employeeID int64) (*EmployeeResponse, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, err
	}
	e, err := s.employeeRepo.FindByIDForTenant(ctx, caller.TenantID, employeeID)
	if err != nil {
		return nil, err
	}
	response := ToEmployeeResponse(e)
	return &response, nil
}

// List retrieves the tenant's employees
func (s *EmployeeService) List(ctx context.Context, caller identity.Caller, filter shared.Filter) ([]EmployeeResponse, int64, error) {
	if err := caller.Require(identity.CapabilityOperations); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	employees, total, err := s.employeeRepo.FindAllForTenant(ctx, caller.TenantID, filter)
	if err != nil {
		return nil, 0, err
	}
	responses := make([]EmployeeResponse, len(employees))
	for i := range employees {
		responses[i] = ToEmployeeResponse(&employees[i])
	}
	return responses, total, nil
}
