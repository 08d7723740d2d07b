package project

import (
	"strings"
	"time"

	"github.com/handwerk/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaterialUsage records material consumed on a project
type MaterialUsage struct {
	shared.TenantEntity
	ProjectID    int64
	MaterialName string
	Quantity     decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	TotalCost    *decimal.Decimal // stored cost; derived from price × quantity when nil
	UsageDate    time.Time
	Notes        string
}

// NewMaterialUsage creates a material usage record
func NewMaterialUsage(tenantID, projectID int64, name string, quantity decimal.Decimal, unit string, unitPrice decimal.Decimal, usageDate time.Time) (*MaterialUsage, error) {
	name = strings.TrimSpace(name)
	if projectID <= 0 {
		return nil, shared.NewInvalidArgumentError("material usage requires a project")
	}
	if name == "" {
		return nil, shared.NewInvalidArgumentError("material name cannot be empty")
	}
	if !quantity.IsPositive() {
		return nil, shared.NewInvalidArgumentError("quantity must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewInvalidArgumentError("unit price cannot be negative")
	}
	if strings.TrimSpace(unit) == "" {
		unit = "Stk"
	}
	if usageDate.IsZero() {
		usageDate = time.Now()
	}
	usageDate = Day(usageDate)
	return &MaterialUsage{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProjectID:    projectID,
		MaterialName: name,
		Quantity:     quantity,
		Unit:         unit,
		UnitPrice:    unitPrice,
		UsageDate:    usageDate,
	}, nil
}

// Cost returns the stored cost when present, otherwise unit price × quantity
func (m *MaterialUsage) Cost() decimal.Decimal {
	if m.TotalCost != nil {
		return *m.TotalCost
	}
	return m.UnitPrice.Mul(m.Quantity)
}
