package pricing

import "github.com/shopspring/decimal"

// PriceEntry is one row of the flat price list.
type PriceEntry struct {
	Key         string
	Value       decimal.Decimal
	Description string
}

// Fallbacks used when the design keys are missing from the price list.
var (
	DesignStyleFallback     = decimal.NewFromInt(10)
	DesignStitchingFallback = decimal.NewFromInt(9)
)

// PriceTable is an immutable typed view over the price list.
type PriceTable struct {
	prices map[PriceKey]decimal.Decimal
}

// NewPriceTable builds a table from price list rows. Rows whose key is not a
// known option code are ignored; when a key repeats, the last row wins.
func NewPriceTable(entries []PriceEntry) PriceTable {
	prices := make(map[PriceKey]decimal.Decimal, len(entries))
	for _, e := range entries {
		k := PriceKey(e.Key)
		if !k.Known() {
			continue
		}
		prices[k] = NonNegative(e.Value)
	}
	return PriceTable{prices: prices}
}

// Lookup returns the price for key and whether the list has an entry for it.
func (t PriceTable) Lookup(key PriceKey) (decimal.Decimal, bool) {
	v, ok := t.prices[key]
	return v, ok
}

// Price returns the price for key. A missing entry is priced at zero: an
// option without a price row is free, not an error.
func (t PriceTable) Price(key PriceKey) decimal.Decimal {
	if key == "" {
		return decimal.Zero
	}
	return t.prices[key]
}

// PriceOr returns the price for key, or fallback when the list has no entry.
func (t PriceTable) PriceOr(key PriceKey, fallback decimal.Decimal) decimal.Decimal {
	if v, ok := t.prices[key]; ok {
		return v
	}
	return fallback
}

// Len reports the number of resolved entries.
func (t PriceTable) Len() int {
	return len(t.prices)
}
