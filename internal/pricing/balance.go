package pricing

import "github.com/shopspring/decimal"

// Balance is finalTotal minus paid. A nil paid amount counts as zero and an
// overpayment yields a negative balance.
func Balance(finalTotal decimal.Decimal, paid *decimal.Decimal) decimal.Decimal {
	if paid == nil {
		return finalTotal
	}
	return finalTotal.Sub(*paid)
}

// DisplayBalance is Balance clamped at zero.
func DisplayBalance(finalTotal decimal.Decimal, paid *decimal.Decimal) decimal.Decimal {
	return NonNegative(Balance(finalTotal, paid))
}

// Quote is the full checkout computation shown on the review step.
type Quote struct {
	Totals         Totals
	Discount       DiscountResult
	Paid           decimal.Decimal
	Balance        decimal.Decimal
	DisplayBalance decimal.Decimal
}

// BuildQuote applies d to the totals and computes the balance against paid.
func BuildQuote(t Totals, d Discount, paid *decimal.Decimal) Quote {
	res := d.Apply(t.Total)
	q := Quote{
		Totals:         t,
		Discount:       res,
		Paid:           decimal.Zero,
		Balance:        Balance(res.FinalTotal, paid),
		DisplayBalance: DisplayBalance(res.FinalTotal, paid),
	}
	if paid != nil {
		q.Paid = *paid
	}
	return q
}
