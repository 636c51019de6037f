// Package money provides the decimal arithmetic behind a conversion.
//
// Invariants:
//   - Amounts entered by a user are never negative.
//   - Rates are strictly positive.
//   - Display rounding is half away from zero, to a fixed number of places.
package money

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// ResultPlaces is the number of decimal places a converted amount is shown with.
	ResultPlaces = 2
	// RatePlaces is the number of decimal places a rate is shown with.
	RatePlaces = 4
	// MaxAmountDigits bounds the digits accepted on either side of the decimal point.
	MaxAmountDigits = 18
)

// amountPattern matches plain decimal notation with an optional leading '-'.
var amountPattern = regexp.MustCompile(`^-?(\d+)?(?:\.(\d*))?$`)

// ParseAmount parses user input for the amount field.
// Empty input normalizes to zero. Exponent notation and inputs with more than
// MaxAmountDigits integer or fractional digits are rejected as ErrInvalidAmount.
func ParseAmount(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, nil
	}
	m := amountPattern.FindStringSubmatch(value)
	if m == nil || (m[1] == "" && m[2] == "") {
		return decimal.Zero, ErrInvalidAmount
	}
	if len(m[1]) > MaxAmountDigits || len(m[2]) > MaxAmountDigits {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrNegativeAmount
	}
	return d, nil
}

// NewRate converts a provider float rate into a decimal, rejecting non-positive values.
func NewRate(rate float64) (decimal.Decimal, error) {
	d := decimal.NewFromFloat(rate)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return d, nil
}

// Convert multiplies amount by rate and rounds to ResultPlaces.
func Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(ResultPlaces)
}

// FormatResult renders a converted amount the way the form displays it, e.g. "92.34".
func FormatResult(d decimal.Decimal) string {
	return d.StringFixed(ResultPlaces)
}

// FormatRate renders a rate with RatePlaces decimals, e.g. "0.9234".
func FormatRate(d decimal.Decimal) string {
	return d.StringFixed(RatePlaces)
}
