package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/tailor-pos/api/internal/enum"
)

// Garment is the pricing view of one tailored garment line.
type Garment struct {
	Style           string
	Lines           int
	CollarType      PriceKey
	CollarButton    PriceKey
	JabzourType     PriceKey
	FrontPocketType PriceKey
	CuffType        PriceKey
	FabricAmount    decimal.Decimal
	HomeDelivery    bool
	Express         bool
	Quantity        int
}

// IsDesign reports whether the garment uses the flat-priced design style.
func (g Garment) IsDesign() bool {
	return g.Style == enum.StyleDesign
}

// StylePrice is the style surcharge for a single piece of g.
//
// A design garment is priced at the design style rate and every other style
// option is ignored. Otherwise the surcharge is the line price times the line
// count plus the collar, button, jabzour, pocket and cuff prices.
func StylePrice(g Garment, table PriceTable) decimal.Decimal {
	if g.IsDesign() {
		return table.PriceOr(KeyDesignStyle, DesignStyleFallback)
	}

	total := table.Price(KeyLine).Mul(decimal.NewFromInt(Count(g.Lines)))
	for _, code := range []PriceKey{
		g.CollarType,
		g.CollarButton,
		g.JabzourType,
		g.FrontPocketType,
		g.CuffType,
	} {
		total = total.Add(table.Price(code))
	}
	return total
}

// StitchingPrice is the stitching rate for a single piece of g. Design
// garments always use the design rate; base overrides the standard rate when
// set (negotiated per-order rates).
func StitchingPrice(g Garment, table PriceTable, base *decimal.Decimal) decimal.Decimal {
	if g.IsDesign() {
		return table.PriceOr(KeyStitchingDesign, DesignStitchingFallback)
	}
	if base != nil {
		return NonNegative(*base)
	}
	return table.Price(KeyStitchingStandard)
}
