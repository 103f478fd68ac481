package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Fee computes the service fee on a net amount at the given percent, rounded
// half away from zero to whole cents. Decimal arithmetic keeps fractional
// percents (e.g. 2.5) exact instead of accumulating float error.
func Fee(netCents int64, percent float64) int64 {
	if netCents <= 0 || percent <= 0 {
		return 0
	}
	return decimal.NewFromInt(netCents).
		Mul(decimal.NewFromFloat(percent)).
		Div(hundred).
		Round(0).
		IntPart()
}

// ValidPercent reports whether p is a usable fee percentage.
func ValidPercent(p float64) bool {
	return p >= 0 && p <= 100
}
