package billing

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
)

// Summary condenses a calculation result for display
type Summary struct {
	TotalItems      int             `json:"total_items"`
	LaborCost       decimal.Decimal `json:"labor_cost"`
	MaterialCost    decimal.Decimal `json:"material_cost"`
	ServiceCost     decimal.Decimal `json:"service_cost"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TaxAmount       decimal.Decimal `json:"tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	LaborPercentage decimal.Decimal `json:"labor_percentage"`
	// TotalFormatted is the gross total in German notation, e.g. "190,40 €"
	TotalFormatted string `json:"total_formatted"`
}

// MarshalJSON writes the amounts with two decimal places
func (s Summary) MarshalJSON() ([]byte, error) {
	type plain Summary
	return json.Marshal(struct {
		plain
		LaborCost       string `json:"labor_cost"`
		MaterialCost    string `json:"material_cost"`
		ServiceCost     string `json:"service_cost"`
		Subtotal        string `json:"subtotal"`
		TaxAmount       string `json:"tax_amount"`
		TotalAmount     string `json:"total_amount"`
		LaborPercentage string `json:"labor_percentage"`
	}{
		plain:           plain(s),
		LaborCost:       valueobject.FixedCents(s.LaborCost),
		MaterialCost:    valueobject.FixedCents(s.MaterialCost),
		ServiceCost:     valueobject.FixedCents(s.ServiceCost),
		Subtotal:        valueobject.FixedCents(s.Subtotal),
		TaxAmount:       valueobject.FixedCents(s.TaxAmount),
		TotalAmount:     valueobject.FixedCents(s.TotalAmount),
		LaborPercentage: valueobject.FixedCents(s.LaborPercentage),
	})
}

// Breakdown groups the items of a calculation by type
type Breakdown struct {
	LaborItems    LineItems `json:"labor_items"`
	MaterialItems LineItems `json:"material_items"`
	ServiceItems  LineItems `json:"service_items"`
}

// CalculationSummary is the summary view of a calculation
type CalculationSummary struct {
	Summary   Summary   `json:"summary"`
	Breakdown Breakdown `json:"breakdown"`
}

// Summarize builds the summary view of a calculation result
func Summarize(r CalculationResult) CalculationSummary {
	return CalculationSummary{
		Summary: Summary{
			TotalItems:      len(r.Items),
			LaborCost:       r.TotalLaborCost,
			MaterialCost:    r.TotalMaterialCost,
			ServiceCost:     r.TotalServiceCost,
			Subtotal:        r.Subtotal,
			TaxAmount:       r.TaxAmount,
			TotalAmount:     r.TotalAmount,
			LaborPercentage: r.LaborPercentage,
			TotalFormatted:  valueobject.NewMoneyEUR(r.TotalAmount).Format(language.German),
		},
		Breakdown: Breakdown{
			LaborItems:    r.Items.OfType(ItemTypeLabor),
			MaterialItems: r.Items.OfType(ItemTypeMaterial),
			ServiceItems:  r.Items.OfType(ItemTypeService),
		},
	}
}

// ExportFormat selects the export encoding
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

// ContentType returns the MIME type of the format
func (f ExportFormat) ContentType() string {
	if f == ExportCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}

// CSVHeader is the header row of a CSV export
var CSVHeader = []string{"Beschreibung", "Menge", "Einheit", "Einzelpreis", "Gesamtpreis", "Typ"}

type exportTotals struct {
	Subtotal    string `json:"subtotal"`
	TaxAmount   string `json:"tax_amount"`
	TotalAmount string `json:"total_amount"`
}

type exportDocument struct {
	Items  LineItems    `json:"items"`
	Totals exportTotals `json:"totals"`
}

// Export renders a calculation result as JSON (items and totals) or CSV (one row per item)
func Export(r CalculationResult, format ExportFormat) ([]byte, error) {
	switch ExportFormat(strings.ToLower(string(format))) {
	case ExportJSON:
		items := r.Items
		if items == nil {
			items = LineItems{}
		}
		return json.MarshalIndent(exportDocument{
			Items: items,
			Totals: exportTotals{
				Subtotal:    valueobject.FixedCents(r.Subtotal),
				TaxAmount:   valueobject.FixedCents(r.TaxAmount),
				TotalAmount: valueobject.FixedCents(r.TotalAmount),
			},
		}, "", "  ")
	case ExportCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(CSVHeader); err != nil {
			return nil, err
		}
		for _, it := range r.Items {
			row := []string{
				it.Description,
				it.Quantity.String(),
				it.Unit,
				it.UnitPrice.StringFixed(valueobject.CentPlaces),
				it.TotalPrice.StringFixed(valueobject.CentPlaces),
				string(it.ItemType),
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, shared.NewInvalidArgumentError("unknown export format %q", format)
	}
}

// ValidationReport lists the problems that would block generating an invoice
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateInput checks that there is billable data and every time entry has hours
func ValidateInput(in CalculationInput) ValidationReport {
	errs := make([]string, 0)
	if len(in.TimeEntries) == 0 && len(in.Reports) == 0 && len(in.Offers) == 0 && len(in.Materials) == 0 {
		errs = append(errs, "Keine abrechenbaren Daten gefunden")
	}
	for _, e := range in.TimeEntries {
		if !e.HoursWorked.IsPositive() {
			errs = append(errs, fmt.Sprintf("Ungültige Arbeitsstunden in Eintrag %d", e.ID))
		}
	}
	return ValidationReport{Valid: len(errs) == 0, Errors: errs}
}
