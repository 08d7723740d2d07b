package billing

import (
	"context"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
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

// MockOfferRepository is a mock implementation of OfferRepository
type MockOfferRepository struct {
	mock.Mock
}

func (m *MockOfferRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*billing.Offer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Offer), args.Error(1)
}

func (m *MockOfferRepository) FindByProject(ctx context.Context, tenantID, projectID int64) ([]billing.Offer, error) {
	args := m.Called(ctx, tenantID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Offer), args.Error(1)
}

func (m *MockOfferRepository) Save(ctx context.Context, o *billing.Offer) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

// MockInvoiceRepository is a mock implementation of InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id int64) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByOffer(ctx context.Context, tenantID, offerID int64) (*billing.Invoice, error) {
	args := m.Called(ctx, tenantID, offerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID int64, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]billing.Invoice), args.Get(1).(int64), args.Error(2)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SumTotalByStatus(ctx context.Context, tenantID int64, status billing.InvoiceStatus) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID, status)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockSettingsRepository is a mock implementation of SettingsRepository
type MockSettingsRepository struct {
	mock.Mock
}

func (m *MockSettingsRepository) FindForTenant(ctx context.Context, tenantID int64) (*billing.TenantSettings, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.TenantSettings), args.Error(1)
}

func (m *MockSettingsRepository) Save(ctx context.Context, s *billing.TenantSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockInvoiceSequence is a mock implementation of InvoiceSequence
type MockInvoiceSequence struct {
	mock.Mock
}

func (m *MockInvoiceSequence) Next(ctx context.Context, tenantID int64) (int64, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(int64), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
