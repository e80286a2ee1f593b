package pricing

import "github.com/shopspring/decimal"

// GarmentQuote is the charge breakdown of one garment line.
type GarmentQuote struct {
	Fabric    decimal.Decimal
	Stitching decimal.Decimal
	Style     decimal.Decimal
}

// Total is the sum of the line's charges.
func (q GarmentQuote) Total() decimal.Decimal {
	return q.Fabric.Add(q.Stitching).Add(q.Style)
}

// PriceSnapshot holds the prices frozen onto a garment row.
type PriceSnapshot struct {
	Fabric    decimal.Decimal
	Stitching decimal.Decimal
	Style     decimal.Decimal
}

// QuoteGarment prices g live against the current price table. It is only
// meaningful before the order is confirmed.
func QuoteGarment(g Garment, table PriceTable, stitchingBase *decimal.Decimal) GarmentQuote {
	n := pieces(g.Quantity)
	return GarmentQuote{
		Fabric:    NonNegative(g.FabricAmount),
		Stitching: StitchingPrice(g, table, stitchingBase).Mul(n),
		Style:     StylePrice(g, table).Mul(n),
	}
}

// SettledPrice returns the frozen prices of a confirmed garment line. It never
// consults the price table.
func SettledPrice(s PriceSnapshot) GarmentQuote {
	return GarmentQuote{
		Fabric:    NonNegative(s.Fabric),
		Stitching: NonNegative(s.Stitching),
		Style:     NonNegative(s.Style),
	}
}

// ShelfLine is the pricing view of one shelf item on an order.
type ShelfLine struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal is quantity times unit price, both clamped at zero.
func (l ShelfLine) Subtotal() decimal.Decimal {
	return decimal.NewFromInt(Count(l.Quantity)).Mul(NonNegative(l.UnitPrice))
}

// ShelfTotal sums every shelf line.
func ShelfTotal(lines []ShelfLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Fulfilment carries the order-level delivery flags.
type Fulfilment struct {
	HomeDelivery bool
	Express      bool
}

// ResolveFulfilment applies the garment flags to the order: a single garment
// flagged for home delivery or express turns the flag on for the whole order.
func ResolveFulfilment(order Fulfilment, garments []Garment) Fulfilment {
	for _, g := range garments {
		if g.HomeDelivery {
			order.HomeDelivery = true
		}
		if g.Express {
			order.Express = true
		}
	}
	return order
}

// Charges returns the delivery and express surcharges for f.
func Charges(f Fulfilment, table PriceTable) (delivery, express decimal.Decimal) {
	delivery, express = decimal.Zero, decimal.Zero
	if f.HomeDelivery {
		delivery = table.Price(KeyHomeDelivery)
	}
	if f.Express {
		express = table.Price(KeyExpress)
	}
	return delivery, express
}

// Totals is the charge breakdown of a whole order.
type Totals struct {
	Fabric    decimal.Decimal
	Stitching decimal.Decimal
	Style     decimal.Decimal
	Delivery  decimal.Decimal
	Express   decimal.Decimal
	Shelf     decimal.Decimal
	Total     decimal.Decimal
}

// OrderInput is everything ComputeOrderTotals needs to price a draft order.
type OrderInput struct {
	Garments      []Garment
	Shelf         []ShelfLine
	Fulfilment    Fulfilment
	StitchingBase *decimal.Decimal
}

// ComputeOrderTotals prices a draft order live.
func ComputeOrderTotals(in OrderInput, table PriceTable) Totals {
	quotes := make([]GarmentQuote, len(in.Garments))
	for i, g := range in.Garments {
		quotes[i] = QuoteGarment(g, table, in.StitchingBase)
	}
	f := ResolveFulfilment(in.Fulfilment, in.Garments)
	delivery, express := Charges(f, table)
	return Aggregate(quotes, in.Shelf, delivery, express)
}

// Aggregate sums garment quotes, shelf lines and the order surcharges.
func Aggregate(quotes []GarmentQuote, shelf []ShelfLine, delivery, express decimal.Decimal) Totals {
	t := Totals{
		Fabric:    decimal.Zero,
		Stitching: decimal.Zero,
		Style:     decimal.Zero,
		Delivery:  NonNegative(delivery),
		Express:   NonNegative(express),
		Shelf:     ShelfTotal(shelf),
	}
	for _, q := range quotes {
		t.Fabric = t.Fabric.Add(q.Fabric)
		t.Stitching = t.Stitching.Add(q.Stitching)
		t.Style = t.Style.Add(q.Style)
	}
	t.Total = t.Fabric.Add(t.Stitching).Add(t.Style).Add(t.Delivery).Add(t.Express).Add(t.Shelf)
	return t
}
