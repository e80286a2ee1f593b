package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Amount parses a user-entered numeric string. Empty, malformed and negative
// input all coerce to zero.
func Amount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return NonNegative(d)
}

// NonNegative clamps d at zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Count clamps a quantity at zero.
func Count(n int) int64 {
	if n < 0 {
		return 0
	}
	return int64(n)
}

// pieces is the multiplier for per-garment charges. A garment line always
// represents at least one piece.
func pieces(n int) decimal.Decimal {
	if n < 1 {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(int64(n))
}

// FabricCharge is the fabric amount for one garment line. Externally
// supplied fabric is never charged.
func FabricCharge(internal bool, length, pricePerMeter decimal.Decimal) decimal.Decimal {
	if !internal {
		return decimal.Zero
	}
	return NonNegative(length).Mul(NonNegative(pricePerMeter)).Round(3)
}
