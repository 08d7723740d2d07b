package billing

import (
	"encoding/json"
	"sort"

	"github.com/handwerk/backoffice/internal/domain/project"
	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// CalculationInput is the tenant-scoped project data a calculation runs over
type CalculationInput struct {
	TimeEntries []project.TimeEntry
	Employees   []project.Employee
	Materials   []project.MaterialUsage
	Reports     []project.Report
	Offers      []Offer
}

// CalculationResult is the itemized, unpersisted outcome of Calculate
type CalculationResult struct {
	TotalLaborCost    decimal.Decimal `json:"total_labor_cost"`
	TotalMaterialCost decimal.Decimal `json:"total_material_cost"`
	TotalServiceCost  decimal.Decimal `json:"total_service_cost"`
	Subtotal          decimal.Decimal `json:"subtotal"`
	TaxAmount         decimal.Decimal `json:"tax_amount"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	LaborPercentage   decimal.Decimal `json:"labor_percentage"`
	Items             LineItems       `json:"items"`
}

// MarshalJSON writes the amounts with two decimal places
func (r CalculationResult) MarshalJSON() ([]byte, error) {
	type plain CalculationResult
	return json.Marshal(struct {
		plain
		TotalLaborCost    string `json:"total_labor_cost"`
		TotalMaterialCost string `json:"total_material_cost"`
		TotalServiceCost  string `json:"total_service_cost"`
		Subtotal          string `json:"subtotal"`
		TaxAmount         string `json:"tax_amount"`
		TotalAmount       string `json:"total_amount"`
		LaborPercentage   string `json:"labor_percentage"`
	}{
		plain:             plain(r),
		TotalLaborCost:    valueobject.FixedCents(r.TotalLaborCost),
		TotalMaterialCost: valueobject.FixedCents(r.TotalMaterialCost),
		TotalServiceCost:  valueobject.FixedCents(r.TotalServiceCost),
		Subtotal:          valueobject.FixedCents(r.Subtotal),
		TaxAmount:         valueobject.FixedCents(r.TaxAmount),
		TotalAmount:       valueobject.FixedCents(r.TotalAmount),
		LaborPercentage:   valueobject.FixedCents(r.LaborPercentage),
	})
}

// Calculate builds the invoice positions for the requested method and totals them.
// Records outside the request's date range are ignored. Offers are not date bound.
// Rounding to cents happens per line and per total only.
func Calculate(in CalculationInput, req ResolvedRequest) CalculationResult {
	items := make(LineItems, 0)

	switch req.Method {
	case MethodTimeEntries:
		items = append(items, laborLines(in, req)...)
	case MethodReports:
		items = append(items, reportLines(in.Reports, req.Range)...)
	case MethodOffers:
		items = append(items, offerLines(in.Offers)...)
	case MethodHybrid:
		if req.IncludeLabor {
			items = append(items, laborLines(in, req)...)
		}
		if req.IncludeMaterials {
			items = append(items, materialLines(in.Materials, req.Range)...)
		}
		items = append(items, reportLines(in.Reports, req.Range)...)
	}

	return totals(items, req.TaxRate)
}

// Retotal recomputes the totals of previously calculated items at taxRate.
// Items without a cost breakdown are bucketed by their type. Unknown item types,
// negative amounts and breakdowns that do not add up to the line total are rejected.
func Retotal(items LineItems, taxRate decimal.Decimal) (CalculationResult, error) {
	if err := checkPercent("tax_rate", taxRate); err != nil {
		return CalculationResult{}, err
	}
	bucketed := make(LineItems, 0, len(items))
	for i, it := range items {
		pos := i + 1
		if !it.ItemType.IsValid() {
			return CalculationResult{}, shared.NewInvalidArgumentError("item %d: unknown item type %q", pos, it.ItemType)
		}
		if it.Quantity.IsNegative() || it.UnitPrice.IsNegative() || it.TotalPrice.IsNegative() {
			return CalculationResult{}, shared.NewInvalidArgumentError("item %d: amounts must not be negative", pos)
		}
		b := it.WithBucketBreakdown()
		labor, material, service := valueOrZero(b.LaborCost), valueOrZero(b.MaterialCost), valueOrZero(b.ServiceCost)
		if labor.IsNegative() || material.IsNegative() || service.IsNegative() {
			return CalculationResult{}, shared.NewInvalidArgumentError("item %d: amounts must not be negative", pos)
		}
		parts := valueobject.RoundCents(labor.Add(material).Add(service))
		if !parts.Equal(valueobject.RoundCents(it.TotalPrice)) {
			return CalculationResult{}, shared.NewInvalidArgumentError("item %d: cost breakdown %s does not match total price %s", pos, parts, it.TotalPrice)
		}
		bucketed = append(bucketed, b)
	}
	result := totals(bucketed, taxRate)
	result.Items = items
	return result, nil
}

type employeeHours struct {
	hours decimal.Decimal
	cost  decimal.Decimal
}

func laborLines(in CalculationInput, req ResolvedRequest) LineItems {
	employees := make(map[int64]*project.Employee, len(in.Employees))
	for i := range in.Employees {
		employees[in.Employees[i].ID] = &in.Employees[i]
	}

	grouped := make(map[int64]*employeeHours)
	ids := make([]int64, 0)
	for i := range in.TimeEntries {
		entry := &in.TimeEntries[i]
		if !req.Range.Contains(entry.WorkDate) {
			continue
		}
		var employeeRate *decimal.Decimal
		if emp, ok := employees[entry.EmployeeID]; ok {
			employeeRate = &emp.HourlyRate
		}
		g, ok := grouped[entry.EmployeeID]
		if !ok {
			g = &employeeHours{hours: decimal.Zero, cost: decimal.Zero}
			grouped[entry.EmployeeID] = g
			ids = append(ids, entry.EmployeeID)
		}
		g.hours = g.hours.Add(entry.HoursWorked)
		g.cost = g.cost.Add(entry.HoursWorked.Mul(entry.EffectiveRate(employeeRate)))
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	lines := make(LineItems, 0, len(ids))
	for _, id := range ids {
		g := grouped[id]
		if !g.hours.IsPositive() {
			continue
		}
		name := unknownEmployeeName(id)
		if emp, ok := employees[id]; ok {
			name = emp.FullName()
		}

		total := valueobject.RoundCents(g.cost)
		labor := valueobject.RoundCents(valueobject.Percent(total, req.LaborCostPercentage))
		service := total.Sub(labor)
		lines = append(lines, LineItem{
			Description: "Arbeitsstunden - " + name,
			Quantity:    valueobject.RoundCents(g.hours),
			Unit:        "Std",
			UnitPrice:   valueobject.RoundCents(g.cost.Div(g.hours)),
			TotalPrice:  total,
			ItemType:    ItemTypeLabor,
			LaborCost:   &labor,
			ServiceCost: &service,
		})
	}
	return lines
}

func unknownEmployeeName(id int64) string {
	e := project.Employee{}
	e.ID = id
	return e.FullName()
}

func reportLines(reports []project.Report, rng project.DateRange) LineItems {
	lines := make(LineItems, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		if !rng.Contains(r.ReportDate) {
			continue
		}
		// Reports carry no price of their own; the line is a placeholder for manual pricing.
		lines = append(lines, LineItem{
			Description: "Bericht: " + r.WorkTypeLabel(),
			Quantity:    decimal.NewFromInt(1),
			Unit:        "Stk",
			UnitPrice:   decimal.Zero,
			TotalPrice:  decimal.Zero,
			ItemType:    ItemTypeService,
		})
	}
	return lines
}

func offerLines(offers []Offer) LineItems {
	lines := make(LineItems, 0)
	for i := range offers {
		if !offers[i].IsAccepted() {
			continue
		}
		for _, it := range offers[i].InvoiceLines() {
			lines = append(lines, it.WithBucketBreakdown().Rounded())
		}
	}
	return lines
}

func materialLines(materials []project.MaterialUsage, rng project.DateRange) LineItems {
	lines := make(LineItems, 0, len(materials))
	for i := range materials {
		m := &materials[i]
		if !rng.Contains(m.UsageDate) {
			continue
		}
		total := valueobject.RoundCents(m.Cost())
		unit := m.Unit
		if unit == "" {
			unit = "Stk"
		}
		lines = append(lines, LineItem{
			Description:  "Material: " + m.MaterialName,
			Quantity:     valueobject.RoundCents(m.Quantity),
			Unit:         unit,
			UnitPrice:    valueobject.RoundCents(m.UnitPrice),
			TotalPrice:   total,
			ItemType:     ItemTypeMaterial,
			MaterialCost: &total,
		})
	}
	return lines
}

func totals(items LineItems, taxRate decimal.Decimal) CalculationResult {
	labor, material, service := decimal.Zero, decimal.Zero, decimal.Zero
	for _, it := range items {
		labor = labor.Add(valueOrZero(it.LaborCost))
		material = material.Add(valueOrZero(it.MaterialCost))
		service = service.Add(valueOrZero(it.ServiceCost))
	}
	labor = valueobject.RoundCents(labor)
	material = valueobject.RoundCents(material)
	service = valueobject.RoundCents(service)

	subtotal := valueobject.RoundCents(labor.Add(material).Add(service))
	tax := valueobject.RoundCents(valueobject.Percent(subtotal, taxRate))
	return CalculationResult{
		TotalLaborCost:    labor,
		TotalMaterialCost: material,
		TotalServiceCost:  service,
		Subtotal:          subtotal,
		TaxAmount:         tax,
		TotalAmount:       valueobject.RoundCents(subtotal.Add(tax)),
		LaborPercentage:   valueobject.RoundCents(valueobject.Ratio(labor, subtotal)),
		Items:             items,
	}
}
