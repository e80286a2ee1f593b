package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/enum"
)

// DiscountType selects one of the mutually exclusive discount modes.
type DiscountType string

const (
	DiscountNone     DiscountType = ""
	DiscountFlat     DiscountType = enum.DiscountTypeFlat
	DiscountReferral DiscountType = enum.DiscountTypeReferral
	DiscountLoyalty  DiscountType = enum.DiscountTypeLoyalty
	DiscountByValue  DiscountType = enum.DiscountTypeByValue
)

// IsValid reports whether t is a known mode. The empty mode means no discount.
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountNone, DiscountFlat, DiscountReferral, DiscountLoyalty, DiscountByValue:
		return true
	}
	return false
}

// IsPercentage reports whether the mode is a percentage of the subtotal.
func (t DiscountType) IsPercentage() bool {
	switch t {
	case DiscountFlat, DiscountReferral, DiscountLoyalty:
		return true
	}
	return false
}

// Discount is the discount state held by a checkout. Value is the discount in
// currency; for percentage modes it is derived from Percentage and the
// subtotal and must be recomputed whenever either changes.
type Discount struct {
	Type       DiscountType
	Percentage decimal.Decimal
	Value      decimal.Decimal
}

// SwitchType changes the mode and resets percentage and value together.
func (d *Discount) SwitchType(t DiscountType) {
	d.Type = t
	d.Percentage = decimal.Zero
	d.Value = decimal.Zero
}

// SetPercentage stores pct and recomputes the derived value. It is a no-op
// outside percentage modes. Out-of-range percentages are stored as given.
func (d *Discount) SetPercentage(pct, subtotal decimal.Decimal) {
	if !d.Type.IsPercentage() {
		return
	}
	d.Percentage = pct
	d.Recompute(subtotal)
}

// SetValue stores a cash discount. It is a no-op outside the by_value mode.
func (d *Discount) SetValue(v decimal.Decimal) {
	if d.Type != DiscountByValue {
		return
	}
	d.Value = NonNegative(v)
}

// Recompute refreshes the derived value after the subtotal changed.
func (d *Discount) Recompute(subtotal decimal.Decimal) {
	if d.Type.IsPercentage() {
		d.Value = PercentOf(subtotal, d.Percentage)
	}
}

// PercentOf returns subtotal × pct / 100 rounded to two places.
func PercentOf(subtotal, pct decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(pct).Div(hundred).Round(2)
}

// Amount is the discount in currency for subtotal.
func (d Discount) Amount(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case d.Type.IsPercentage():
		return PercentOf(subtotal, d.Percentage)
	case d.Type == DiscountByValue:
		return NonNegative(d.Value)
	}
	return decimal.Zero
}

// DiscountResult is the outcome of applying a discount to a subtotal.
// FinalTotal is the unclamped arithmetic result and is what gets stored;
// DisplayTotal is the same value clamped at zero for presentation.
type DiscountResult struct {
	Amount       decimal.Decimal
	FinalTotal   decimal.Decimal
	DisplayTotal decimal.Decimal
}

// Apply computes the discount amount and final totals for subtotal.
func (d Discount) Apply(subtotal decimal.Decimal) DiscountResult {
	amount := d.Amount(subtotal)
	final := subtotal.Sub(amount)
	return DiscountResult{
		Amount:       amount,
		FinalTotal:   final,
		DisplayTotal: NonNegative(final),
	}
}
