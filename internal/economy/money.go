package economy

import "github.com/shopspring/decimal"

// RoundCents rounds v to two decimals, halves away from zero.
func RoundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// FloorCents truncates v toward negative infinity at two decimals.
func FloorCents(v float64) float64 {
	return decimal.NewFromFloat(v).RoundFloor(2).InexactFloat64()
}

// CeilCents rounds v toward positive infinity at two decimals.
func CeilCents(v float64) float64 {
	return decimal.NewFromFloat(v).RoundCeil(2).InexactFloat64()
}

// Total returns price*qty rounded to cents.
func Total(price float64, qty int) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(int64(qty))).Round(2).InexactFloat64()
}

// AddCents sums amounts exactly and rounds the result to cents.
func AddCents(amounts ...float64) float64 {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(decimal.NewFromFloat(a))
	}
	return sum.Round(2).InexactFloat64()
}

// FormatCents renders an amount with exactly two decimals.
func FormatCents(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
