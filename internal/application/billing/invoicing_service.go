package billing

import (
	"context"
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/billing"
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/handwerk/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const invoicingServiceName = "InvoicingService"

// Repositories groups the read repositories the invoicing service draws from
type Repositories struct {
	Projects    project.ProjectRepository
	Employees   project.EmployeeRepository
	TimeEntries project.TimeEntryRepository
	Materials   project.MaterialUsageRepository
	Reports     project.ReportRepository
	Offers      billing.OfferRepository
	Invoices    billing.InvoiceRepository
	Settings    billing.SettingsRepository
}

// InvoicingService generates invoice calculations from project data and turns
// calculations and accepted offers into persisted invoices
type InvoicingService struct {
	repos          Repositories
	sequence       billing.InvoiceSequence
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	now            func() time.Time
	numberRetries  int
}

// NewInvoicingService creates a new InvoicingService
func NewInvoicingService(repos Repositories, sequence billing.InvoiceSequence, txScope TransactionScope) *InvoicingService {
	return &InvoicingService{
		repos:         repos,
		sequence:      sequence,
		txScope:       txScope,
		now:           time.Now,
		numberRetries: 1,
	}
}

// SetEventPublisher sets the event publisher for invoice and offer events
func (s *InvoicingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock replaces the time source
func (s *InvoicingService) SetClock(now func() time.Time) {
	s.now = now
}

// SetNumberRetries sets how often a duplicate allocated invoice number is retried
func (s *InvoicingService) SetNumberRetries(n int) {
	if n >= 0 {
		s.numberRetries = n
	}
}

// Methods lists the generation methods and the mandatory invoice contents
func (s *InvoicingService) Methods(caller identity.Caller) (*MethodsResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	return &MethodsResponse{
		Methods:         billing.Methods(),
		MandatoryFields: billing.MandatoryInvoiceFields(),
	}, nil
}

// Calculate computes an itemized invoice for a project without persisting anything.
// Calling it twice over unchanged data yields the same result.
func (s *InvoicingService) Calculate(ctx context.Context, caller identity.Caller, req CalculateRequest) (*billing.CalculationResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, invoicingServiceName, "Calculate",
		telemetry.WithAttribute("tenant.id", caller.TenantID),
		telemetry.WithAttribute("project.id", req.ProjectID),
	)
	defer span.End()

	result, _, err := s.calculate(ctx, caller, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "invoice.items", len(result.Items), "invoice.total", result.TotalAmount.String())
	telemetry.SetOK(span)
	return result, nil
}

// Summary computes a calculation and condenses it into totals and a per-type breakdown
func (s *InvoicingService) Summary(ctx context.Context, caller identity.Caller, req CalculateRequest) (*billing.CalculationSummary, error) {
	result, _, err := s.calculate(ctx, caller, req)
	if err != nil {
		return nil, err
	}
	summary := billing.Summarize(*result)
	return &summary, nil
}

// Export computes a calculation and encodes it as JSON or CSV.
// It returns the document and its content type.
func (s *InvoicingService) Export(ctx context.Context, caller identity.Caller, req CalculateRequest, format billing.ExportFormat) ([]byte, string, error) {
	if format != billing.ExportJSON && format != billing.ExportCSV {
		return nil, "", shared.NewInvalidArgumentError("unknown export format %q", format)
	}
	result, _, err := s.calculate(ctx, caller, req)
	if err != nil {
		return nil, "", err
	}
	data, err := billing.Export(*result, format)
	if err != nil {
		return nil, "", err
	}
	return data, format.ContentType(), nil
}

// Validate checks whether a project has billable data for the requested range.
// An unknown project is reported in the result rather than as an error.
func (s *InvoicingService) Validate(ctx context.Context, caller identity.Caller, req CalculateRequest) (*billing.ValidationReport, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	resolved, err := s.resolve(ctx, caller.TenantID, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Projects.FindByIDForTenant(ctx, caller.TenantID, resolved.ProjectID); err != nil {
		if shared.HasCode(err, shared.CodeNotFound) {
			return &billing.ValidationReport{Valid: false, Errors: []string{"Projekt nicht gefunden"}}, nil
		}
		return nil, err
	}
	in, err := s.loadInput(ctx, caller.TenantID, resolved, allSources)
	if err != nil {
		return nil, err
	}
	report := billing.ValidateInput(in)
	return &report, nil
}

// Materialize persists a calculation as a draft invoice.
// An empty invoice number is allocated from the tenant's sequence.
func (s *InvoicingService) Materialize(ctx context.Context, caller identity.Caller, req MaterializeRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, invoicingServiceName, "Materialize",
		telemetry.WithAttribute("tenant.id", caller.TenantID),
		telemetry.WithAttribute("project.id", req.ProjectID),
	)
	defer span.End()

	if err := caller.Require(identity.CapabilityBilling); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(req.Calculation.Items) == 0 {
		err := shared.NewInvalidArgumentError("cannot create an invoice without line items")
		telemetry.RecordError(span, err)
		return nil, err
	}
	settings, err := s.settingsFor(ctx, caller.TenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	taxRate := settings.DefaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	calc, err := billing.Retotal(req.Calculation.Items, taxRate)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	clientAddress := ""
	if req.ClientAddress != nil {
		clientAddress = *req.ClientAddress
	}
	inv, err := s.materialize(ctx, caller.TenantID, req.ProjectID, calc, req.InvoiceNumber, req.ClientName, clientAddress, settings)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "invoice.id", inv.ID, "invoice.number", inv.InvoiceNumber)
	telemetry.SetOK(span)
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// AutoGenerate calculates and materializes an invoice for a project in one step,
// billing the project's client under an allocated number
func (s *InvoicingService) AutoGenerate(ctx context.Context, caller identity.Caller, projectID int64, req CalculateRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, invoicingServiceName, "AutoGenerate",
		telemetry.WithAttribute("tenant.id", caller.TenantID),
		telemetry.WithAttribute("project.id", projectID),
	)
	defer span.End()

	req.ProjectID = projectID
	result, proj, err := s.calculate(ctx, caller, req)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if len(result.Items) == 0 {
		err := shared.NewInvalidArgumentError("Keine abrechenbaren Positionen")
		telemetry.RecordError(span, err)
		return nil, err
	}
	settings, err := s.settingsFor(ctx, caller.TenantID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	inv, err := s.materialize(ctx, caller.TenantID, projectID, *result, "", proj.ClientName, proj.Address, settings)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetOK(span)
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// FromOffer converts an accepted offer into a draft invoice and marks the offer billed.
// An offer can be invoiced once; a second attempt is a CONFLICT.
func (s *InvoicingService) FromOffer(ctx context.Context, caller identity.Caller, offerID int64) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, invoicingServiceName, "FromOffer",
		telemetry.WithAttribute("tenant.id", caller.TenantID),
		telemetry.WithAttribute("offer.id", offerID),
	)
	defer span.End()

	inv, offer, err := s.fromOffer(ctx, caller, offerID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	inv.RecordCreated()
	s.publish(ctx, inv)
	s.publish(ctx, offer)

	logger.L(ctx).Info("Invoice created from offer",
		zap.Int64("offer_id", offerID),
		zap.Int64("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
	)
	telemetry.SetOK(span)
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

func (s *InvoicingService) fromOffer(ctx context.Context, caller identity.Caller, offerID int64) (*billing.Invoice, *billing.Offer, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, nil, err
	}
	tenantID := caller.TenantID

	offer, err := s.repos.Offers.FindByIDForTenant(ctx, tenantID, offerID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.ensureNotInvoiced(ctx, s.repos.Invoices, tenantID, offerID); err != nil {
		return nil, nil, err
	}
	if !offer.IsAccepted() {
		return nil, nil, shared.NewInvalidArgumentError("only accepted offers can be invoiced (offer %d is %s)", offer.ID, offer.Status)
	}

	settings, err := s.settingsFor(ctx, tenantID)
	if err != nil {
		return nil, nil, err
	}

	var inv *billing.Invoice
	var billed *billing.Offer
	err = s.withAllocatedNumber(ctx, tenantID, offer.ProjectID, settings.InvoicePrefix, func(number string) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			o, err := repos.Offers().FindByIDForTenant(ctx, tenantID, offerID)
			if err != nil {
				return err
			}
			if err := s.ensureNotInvoiced(ctx, repos.Invoices(), tenantID, offerID); err != nil {
				return err
			}
			created, err := billing.NewInvoiceFromOffer(o, number, settings.PaymentTermsDays, s.now())
			if err != nil {
				return err
			}
			if err := repos.Invoices().Save(ctx, created); err != nil {
				return err
			}
			if err := o.MarkBilled(created.ID, created.InvoiceNumber); err != nil {
				return err
			}
			if err := repos.Offers().Save(ctx, o); err != nil {
				return err
			}
			inv, billed = created, o
			return nil
		})
	})
	if err != nil {
		return nil, nil, err
	}
	return inv, billed, nil
}

func (s *InvoicingService) ensureNotInvoiced(ctx context.Context, invoices billing.InvoiceRepository, tenantID, offerID int64) error {
	existing, err := invoices.FindByOffer(ctx, tenantID, offerID)
	if err == nil {
		return shared.NewConflictError("Für dieses Angebot existiert bereits die Rechnung " + existing.InvoiceNumber)
	}
	if shared.HasCode(err, shared.CodeNotFound) {
		return nil
	}
	return err
}

// UpdateStatus moves an invoice along its lifecycle
func (s *InvoicingService) UpdateStatus(ctx context.Context, caller identity.Caller, invoiceID int64, req UpdateInvoiceStatusRequest) (*InvoiceResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	inv, err := s.repos.Invoices.FindByIDForTenant(ctx, caller.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := inv.ChangeStatus(billing.InvoiceStatus(req.Status)); err != nil {
		return nil, err
	}
	if err := s.repos.Invoices.Save(ctx, inv); err != nil {
		return nil, err
	}
	s.publish(ctx, inv)

	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// TotalRevenue sums the totals of the tenant's paid invoices
func (s *InvoicingService) TotalRevenue(ctx context.Context, caller identity.Caller) (*RevenueResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	total, err := s.repos.Invoices.SumTotalByStatus(ctx, caller.TenantID, billing.InvoiceStatusPaid)
	if err != nil {
		return nil, err
	}
	total = valueobject.RoundCents(total)
	return &RevenueResponse{
		TotalRevenue: total,
		Currency:     string(valueobject.DefaultCurrency),
		Formatted:    valueobject.NewMoneyEUR(total).Format(language.German),
	}, nil
}

// Get retrieves an invoice by ID
func (s *InvoicingService) Get(ctx context.Context, caller identity.Caller, invoiceID int64) (*InvoiceResponse, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, err
	}
	inv, err := s.repos.Invoices.FindByIDForTenant(ctx, caller.TenantID, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv, s.now())
	return &response, nil
}

// List retrieves the tenant's invoices with filtering and pagination
func (s *InvoicingService) List(ctx context.Context, caller identity.Caller, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, 0, err
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "invoice_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := billing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		},
		ProjectID: filter.ProjectID,
	}
	if filter.Status != "" {
		status := billing.InvoiceStatus(filter.Status)
		domainFilter.Status = &status
	}

	invoices, total, err := s.repos.Invoices.FindAllForTenant(ctx, caller.TenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	now := s.now()
	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i], now)
	}
	return responses, total, nil
}

// ListByProject retrieves the invoices of one project
func (s *InvoicingService) ListByProject(ctx context.Context, caller identity.Caller, projectID int64, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, 0, err
	}
	if _, err := s.repos.Projects.FindByIDForTenant(ctx, caller.TenantID, projectID); err != nil {
		return nil, 0, err
	}
	filter.ProjectID = &projectID
	return s.List(ctx, caller, filter)
}

// calculate resolves the request, verifies the project belongs to the caller's
// tenant and runs the engine over the project's data
func (s *InvoicingService) calculate(ctx context.Context, caller identity.Caller, req CalculateRequest) (*billing.CalculationResult, *project.Project, error) {
	if err := caller.Require(identity.CapabilityBilling); err != nil {
		return nil, nil, err
	}
	resolved, err := s.resolve(ctx, caller.TenantID, req)
	if err != nil {
		return nil, nil, err
	}
	proj, err := s.repos.Projects.FindByIDForTenant(ctx, caller.TenantID, resolved.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	in, err := s.loadInput(ctx, caller.TenantID, resolved, sourcesFor(resolved))
	if err != nil {
		return nil, nil, err
	}
	result := billing.Calculate(in, resolved)

	logger.L(ctx).Debug("Invoice calculated",
		zap.Int64("project_id", resolved.ProjectID),
		zap.String("method", string(resolved.Method)),
		zap.Int("items", len(result.Items)),
		zap.String("total", result.TotalAmount.String()),
	)
	return &result, proj, nil
}

type sources struct {
	labor     bool
	materials bool
	reports   bool
	offers    bool
}

var allSources = sources{labor: true, materials: true, reports: true, offers: true}

func sourcesFor(r billing.ResolvedRequest) sources {
	switch r.Method {
	case billing.MethodTimeEntries:
		return sources{labor: true}
	case billing.MethodReports:
		return sources{reports: true}
	case billing.MethodOffers:
		return sources{offers: true}
	default:
		return sources{labor: r.IncludeLabor, materials: r.IncludeMaterials, reports: true}
	}
}

// loadInput fetches the tenant-scoped records a calculation needs. Only accepted offers are returned.
func (s *InvoicingService) loadInput(ctx context.Context, tenantID int64, r billing.ResolvedRequest, src sources) (billing.CalculationInput, error) {
	var in billing.CalculationInput
	rng := r.Range

	if src.labor {
		entries, err := s.repos.TimeEntries.FindByProject(ctx, tenantID, r.ProjectID, &rng)
		if err != nil {
			return in, err
		}
		in.TimeEntries = entries
		if len(entries) > 0 {
			employees, err := s.repos.Employees.FindByIDsForTenant(ctx, tenantID, employeeIDs(entries))
			if err != nil {
				return in, err
			}
			in.Employees = employees
		}
	}
	if src.materials {
		materials, err := s.repos.Materials.FindByProject(ctx, tenantID, r.ProjectID, &rng)
		if err != nil {
			return in, err
		}
		in.Materials = materials
	}
	if src.reports {
		reports, err := s.repos.Reports.FindByProject(ctx, tenantID, r.ProjectID, &rng)
		if err != nil {
			return in, err
		}
		in.Reports = reports
	}
	if src.offers {
		offers, err := s.repos.Offers.FindByProject(ctx, tenantID, r.ProjectID)
		if err != nil {
			return in, err
		}
		accepted := make([]billing.Offer, 0, len(offers))
		for i := range offers {
			if offers[i].IsAccepted() {
				accepted = append(accepted, offers[i])
			}
		}
		in.Offers = accepted
	}
	return in, nil
}

func employeeIDs(entries []project.TimeEntry) []int64 {
	seen := make(map[int64]struct{}, len(entries))
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.EmployeeID]; ok {
			continue
		}
		seen[e.EmployeeID] = struct{}{}
		ids = append(ids, e.EmployeeID)
	}
	return ids
}

func (s *InvoicingService) materialize(
	ctx context.Context,
	tenantID, projectID int64,
	calc billing.CalculationResult,
	number, clientName, clientAddress string,
	settings billing.TenantSettings,
) (*billing.Invoice, error) {
	if len(calc.Items) == 0 {
		return nil, shared.NewInvalidArgumentError("cannot create an invoice without line items")
	}
	if projectID <= 0 {
		return nil, shared.NewInvalidArgumentError("project_id must be positive")
	}

	var inv *billing.Invoice
	create := func(number string) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			if _, err := repos.Projects().FindByIDForTenant(ctx, tenantID, projectID); err != nil {
				return err
			}
			created, err := billing.NewInvoiceFromCalculation(tenantID, projectID, calc, number, clientName, clientAddress, settings.PaymentTermsDays, s.now())
			if err != nil {
				return err
			}
			if err := repos.Invoices().Save(ctx, created); err != nil {
				return err
			}
			inv = created
			return nil
		})
	}

	var err error
	if number = strings.TrimSpace(number); number != "" {
		err = create(number)
	} else {
		err = s.withAllocatedNumber(ctx, tenantID, projectID, settings.InvoicePrefix, create)
	}
	if err != nil {
		return nil, err
	}

	inv.RecordCreated()
	s.publish(ctx, inv)
	logger.L(ctx).Info("Invoice materialized",
		zap.Int64("invoice_id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.Int64("project_id", projectID),
		zap.String("total", inv.TotalAmount.String()),
	)
	return inv, nil
}

// withAllocatedNumber allocates an invoice number and runs fn with it. When fn reports a
// CONFLICT the allocation is repeated up to numberRetries times.
func (s *InvoicingService) withAllocatedNumber(ctx context.Context, tenantID, projectID int64, prefix string, fn func(number string) error) error {
	for attempt := 0; ; attempt++ {
		seq, err := s.sequence.Next(ctx, tenantID)
		if err != nil {
			return err
		}
		number := billing.FormatInvoiceNumber(prefix, s.now(), projectID, seq)
		err = fn(number)
		if err == nil || !shared.HasCode(err, shared.CodeConflict) || attempt >= s.numberRetries {
			return err
		}
		logger.L(ctx).Warn("Allocated invoice number already taken, retrying",
			zap.String("invoice_number", number),
			zap.Int("attempt", attempt+1),
		)
	}
}

// resolve applies the request defaults. An omitted tax rate falls back to the
// tenant's default rate.
func (s *InvoicingService) resolve(ctx context.Context, tenantID int64, req CalculateRequest) (billing.ResolvedRequest, error) {
	domainReq := req.ToDomain()
	defaultTax := billing.DefaultTaxRate
	if domainReq.TaxRate == nil {
		settings, err := s.settingsFor(ctx, tenantID)
		if err != nil {
			return billing.ResolvedRequest{}, err
		}
		defaultTax = settings.DefaultTaxRate
	}
	return domainReq.Resolve(s.now(), defaultTax)
}

// settingsFor returns the tenant's invoicing settings, or the defaults when none are stored
func (s *InvoicingService) settingsFor(ctx context.Context, tenantID int64) (billing.TenantSettings, error) {
	settings, err := s.repos.Settings.FindForTenant(ctx, tenantID)
	if err != nil {
		if shared.HasCode(err, shared.CodeNotFound) {
			return billing.DefaultTenantSettings(tenantID), nil
		}
		return billing.TenantSettings{}, err
	}
	return *settings, nil
}

type eventSource interface {
	GetDomainEvents() []shared.DomainEvent
	ClearDomainEvents()
}

// publish hands the aggregate's events to the publisher after commit.
// Publishing errors are logged and never undo the write.
func (s *InvoicingService) publish(ctx context.Context, agg eventSource) {
	if s.eventPublisher == nil {
		agg.ClearDomainEvents()
		return
	}
	events := agg.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("Failed to publish billing events", zap.Error(err))
	}
	agg.ClearDomainEvents()
}

