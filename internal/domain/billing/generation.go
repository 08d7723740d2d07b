package billing

import (
	"time"

	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// GenerationMethod selects the data sources an invoice calculation draws from
type GenerationMethod string

const (
	MethodTimeEntries GenerationMethod = "time_entries"
	MethodReports     GenerationMethod = "reports"
	MethodOffers      GenerationMethod = "offers"
	MethodHybrid      GenerationMethod = "hybrid"
)

// IsValid checks if the method is known
func (m GenerationMethod) IsValid() bool {
	switch m {
	case MethodTimeEntries, MethodReports, MethodOffers, MethodHybrid:
		return true
	}
	return false
}

// MethodInfo describes a generation method for clients
type MethodInfo struct {
	ID          GenerationMethod `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
}

// Methods lists the supported generation methods
func Methods() []MethodInfo {
	return []MethodInfo{
		{MethodTimeEntries, "Stundeneinträge", "Rechnung basierend auf erfassten Arbeitsstunden"},
		{MethodReports, "Berichte", "Rechnung basierend auf Baustellenberichten"},
		{MethodOffers, "Angebote", "Rechnung basierend auf angenommenen Angeboten"},
		{MethodHybrid, "Hybrid", "Kombination aus Stunden, Material und Berichten"},
	}
}

// MandatoryInvoiceFields lists the mandatory contents of an invoice under §14 UStG
func MandatoryInvoiceFields() []string {
	return []string{
		"Vollständiger Name und Anschrift des leistenden Unternehmers",
		"Vollständiger Name und Anschrift des Leistungsempfängers",
		"Steuernummer oder Umsatzsteuer-Identifikationsnummer",
		"Ausstellungsdatum",
		"Fortlaufende Rechnungsnummer",
		"Menge und Art der gelieferten Gegenstände oder Umfang und Art der Leistung",
		"Zeitpunkt der Lieferung oder Leistung",
		"Nach Steuersätzen aufgeschlüsseltes Entgelt",
		"Anzuwendender Steuersatz und Steuerbetrag",
		"Ausweis des Lohnanteils bei Handwerkerleistungen (§35a EStG)",
	}
}

const (
	// DefaultLookbackDays is the range used when no dates are given
	DefaultLookbackDays = 30
)

var (
	// DefaultTaxRate is the German standard VAT rate
	DefaultTaxRate = decimal.NewFromInt(19)
	hundredPercent = decimal.NewFromInt(100)
)

// CalculationRequest is the input to an invoice calculation.
// Dates are accepted as YYYY-MM-DD or RFC 3339 strings.
type CalculationRequest struct {
	ProjectID           int64
	Method              GenerationMethod
	StartDate           string
	EndDate             string
	IncludeMaterials    *bool
	IncludeLabor        *bool
	TaxRate             *decimal.Decimal
	LaborCostPercentage *decimal.Decimal
}

// ResolvedRequest is a validated CalculationRequest with every default applied
type ResolvedRequest struct {
	ProjectID           int64
	Method              GenerationMethod
	Range               project.DateRange
	IncludeMaterials    bool
	IncludeLabor        bool
	TaxRate             decimal.Decimal
	LaborCostPercentage decimal.Decimal
}

// Resolve validates the request and fills in defaults: hybrid method, both
// include flags on, defaultTax as the tax rate, 0% labor share and the 30
// days ending today.
func (r CalculationRequest) Resolve(now time.Time, defaultTax decimal.Decimal) (ResolvedRequest, error) {
	out := ResolvedRequest{
		ProjectID:           r.ProjectID,
		Method:              r.Method,
		IncludeMaterials:    true,
		IncludeLabor:        true,
		TaxRate:             defaultTax,
		LaborCostPercentage: decimal.Zero,
	}
	if r.ProjectID <= 0 {
		return out, shared.NewInvalidArgumentError("project_id must be positive")
	}
	if out.Method == "" {
		out.Method = MethodHybrid
	}
	if !out.Method.IsValid() {
		return out, shared.NewInvalidArgumentError("unknown generation method %q", r.Method)
	}
	if r.IncludeMaterials != nil {
		out.IncludeMaterials = *r.IncludeMaterials
	}
	if r.IncludeLabor != nil {
		out.IncludeLabor = *r.IncludeLabor
	}
	if r.TaxRate != nil {
		out.TaxRate = *r.TaxRate
	}
	if r.LaborCostPercentage != nil {
		out.LaborCostPercentage = *r.LaborCostPercentage
	}
	if err := checkPercent("tax_rate", out.TaxRate); err != nil {
		return out, err
	}
	if err := checkPercent("labor_cost_percentage", out.LaborCostPercentage); err != nil {
		return out, err
	}

	rng := project.LastDays(now, DefaultLookbackDays)
	if r.StartDate != "" {
		start, _, err := project.ParseDay("start_date", r.StartDate)
		if err != nil {
			return out, err
		}
		rng.From = start
	}
	if r.EndDate != "" {
		end, dateOnly, err := project.ParseDay("end_date", r.EndDate)
		if err != nil {
			return out, err
		}
		if dateOnly {
			end = project.EndOfDay(end)
		}
		rng.To = end
	}
	if rng.From.After(rng.To) {
		return out, shared.NewInvalidArgumentError("start_date must not be after end_date")
	}
	out.Range = rng
	return out, nil
}

func checkPercent(field string, v decimal.Decimal) error {
	if v.IsNegative() || v.GreaterThan(hundredPercent) {
		return shared.NewInvalidArgumentError("%s must be between 0 and 100, got %s", field, v)
	}
	return nil
}
