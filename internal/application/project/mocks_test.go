package project

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProjectRepository is a mock implementation of ProjectRepository
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*project.Project, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAllForTenant(ctx context.Context, tenantID int64, filter project.ProjectFilter) ([]project.Project, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]project.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) Save(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) DeleteWithDependents(ctx context.Context, tenantID, id int64) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockEmployeeRepository is a mock implementation of EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*project.Employee, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindByIDsForTenant(ctx context.Context, tenantID int64, ids []int64) ([]project.Employee, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) FindAllForTenant(ctx context.Context, tenantID int64, filter shared.Filter) ([]project.Employee, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]project.Employee), args.Get(1).(int64), args.Error(2)
}

func (m *MockEmployeeRepository) Save(ctx context.Context, e *project.Employee) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockTimeEntryRepository is a mock implementation of TimeEntryRepository
type MockTimeEntryRepository struct {
	mock.Mock
}

func (m *MockTimeEntryRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*project.TimeEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) FindByProject(ctx context.Context, tenantID, projectID int64, rng *project.DateRange) ([]project.TimeEntry, error) {
	args := m.Called(ctx, tenantID, projectID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.TimeEntry), args.Error(1)
}

func (m *MockTimeEntryRepository) Save(ctx context.Context, e *project.TimeEntry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// MockMaterialUsageRepository is a mock implementation of MaterialUsageRepository
type MockMaterialUsageRepository struct {
	mock.Mock
}

func (m *MockMaterialUsageRepository) FindByProject(ctx context.Context, tenantID, projectID int64, rng *project.DateRange) ([]project.MaterialUsage, error) {
	args := m.Called(ctx, tenantID, projectID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.MaterialUsage), args.Error(1)
}

func (m *MockMaterialUsageRepository) Save(ctx context.Context, u *project.MaterialUsage) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// MockReportRepository is a mock implementation of ReportRepository
type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) FindByProject(ctx context.Context, tenantID, projectID int64, rng *project.DateRange) ([]project.Report, error) {
	args := m.Called(ctx, tenantID, projectID, rng)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.Report), args.Error(1)
}

func (m *MockReportRepository) Save(ctx context.Context, r *project.Report) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}
