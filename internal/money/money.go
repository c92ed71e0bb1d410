// Package money holds the single currency rounding policy shared by pricing,
// payment and persistence.
package money

import "github.com/shopspring/decimal"

// Places is the number of fractional digits kept for persisted and displayed amounts.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round applies the currency rounding policy (two places, half away from zero).
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(Places)
}

// Percent returns amount * pct / 100 without rounding.
func Percent(amount decimal.Decimal, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred)
}

// Format renders an amount with exactly two fractional digits.
func Format(amount decimal.Decimal) string {
	return amount.StringFixed(Places)
}

// Parse reads a decimal amount from text; empty input is zero.
func Parse(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}
