// Package money holds the currency conventions shared by pricing and reporting.
package money

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept on stored amounts.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to two places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// HasCents reports whether d needs no more than two fractional digits.
func HasCents(d decimal.Decimal) bool {
	return d.Equal(Round(d))
}

// Percent returns value percent of amount, rounded.
func Percent(amount, value decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(value).Div(hundred))
}

// Clamp bounds d to [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Max(lo, decimal.Min(d, hi))
}

// Format renders d with exactly two decimals.
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
