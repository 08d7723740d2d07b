package billing

import (
	"encoding/json"

	"github.com/handwerk/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// ItemType classifies a line item
type ItemType string

const (
	ItemTypeLabor    ItemType = "labor"
	ItemTypeMaterial ItemType = "material"
	ItemTypeService  ItemType = "service"
)

// IsValid checks if the item type is known
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeLabor, ItemTypeMaterial, ItemTypeService:
		return true
	}
	return false
}

// LineItem is one priced position on an offer, invoice or calculation.
// The optional cost fields carry the labor/material/service breakdown that
// German invoices must disclose per line.
type LineItem struct {
	Description  string           `json:"description"`
	Quantity     decimal.Decimal  `json:"quantity"`
	Unit         string           `json:"unit"`
	UnitPrice    decimal.Decimal  `json:"unit_price"`
	TotalPrice   decimal.Decimal  `json:"total_price"`
	ItemType     ItemType         `json:"item_type"`
	LaborCost    *decimal.Decimal `json:"labor_cost,omitempty"`
	MaterialCost *decimal.Decimal `json:"material_cost,omitempty"`
	ServiceCost  *decimal.Decimal `json:"service_cost,omitempty"`
}

// MarshalJSON writes the money fields with two decimal places
func (i LineItem) MarshalJSON() ([]byte, error) {
	type plain LineItem
	return json.Marshal(struct {
		plain
		UnitPrice    string  `json:"unit_price"`
		TotalPrice   string  `json:"total_price"`
		LaborCost    *string `json:"labor_cost,omitempty"`
		MaterialCost *string `json:"material_cost,omitempty"`
		ServiceCost  *string `json:"service_cost,omitempty"`
	}{
		plain:        plain(i),
		UnitPrice:    valueobject.FixedCents(i.UnitPrice),
		TotalPrice:   valueobject.FixedCents(i.TotalPrice),
		LaborCost:    valueobject.FixedCentsPtr(i.LaborCost),
		MaterialCost: valueobject.FixedCentsPtr(i.MaterialCost),
		ServiceCost:  valueobject.FixedCentsPtr(i.ServiceCost),
	})
}

// HasBreakdown reports whether any cost breakdown field is set
func (i LineItem) HasBreakdown() bool {
	return i.LaborCost != nil || i.MaterialCost != nil || i.ServiceCost != nil
}

// WithBucketBreakdown returns a copy whose whole total is assigned to the bucket
// matching its item type, unless the item already carries a breakdown.
func (i LineItem) WithBucketBreakdown() LineItem {
	if i.HasBreakdown() {
		return i
	}
	total := i.TotalPrice
	switch i.ItemType {
	case ItemTypeLabor:
		i.LaborCost = &total
	case ItemTypeMaterial:
		i.MaterialCost = &total
	default:
		i.ServiceCost = &total
	}
	return i
}

// Rounded returns a copy with every money and quantity field rounded to cents
func (i LineItem) Rounded() LineItem {
	i.Quantity = valueobject.RoundCents(i.Quantity)
	i.UnitPrice = valueobject.RoundCents(i.UnitPrice)
	i.TotalPrice = valueobject.RoundCents(i.TotalPrice)
	i.LaborCost = roundPtr(i.LaborCost)
	i.MaterialCost = roundPtr(i.MaterialCost)
	i.ServiceCost = roundPtr(i.ServiceCost)
	return i
}

func roundPtr(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	r := valueobject.RoundCents(*d)
	return &r
}

func valueOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// LineItems is the ordered list of positions owned by an offer or invoice
type LineItems []LineItem

// Total returns the sum of all total prices
func (items LineItems) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.TotalPrice)
	}
	return sum
}

// OfType returns the items of one type, preserving order
func (items LineItems) OfType(t ItemType) LineItems {
	out := make(LineItems, 0)
	for _, it := range items {
		if it.ItemType == t {
			out = append(out, it)
		}
	}
	return out
}

// Marshal encodes the items as a JSON array; nil encodes as []
func (items LineItems) Marshal() ([]byte, error) {
	if items == nil {
		items = LineItems{}
	}
	return json.Marshal(items)
}

// DecodeLineItems decodes a stored JSON array. Missing unit and item type
// fall back to "Stk" and service.
func DecodeLineItems(data []byte) (LineItems, error) {
	if len(data) == 0 {
		return LineItems{}, nil
	}
	var items LineItems
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].Unit == "" {
			items[i].Unit = "Stk"
		}
		if !items[i].ItemType.IsValid() {
			items[i].ItemType = ItemTypeService
		}
	}
	return items, nil
}
