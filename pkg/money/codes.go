package money

// Code represents a currency code (e.g., "USD", "EUR").
type Code string

// Supported currency codes
const (
	USD Code = "USD" // US Dollar
	EUR Code = "EUR" // Euro
	GBP Code = "GBP" // British Pound
	JPY Code = "JPY" // Japanese Yen
	CAD Code = "CAD" // Canadian Dollar
	AUD Code = "AUD" // Australian Dollar
	CHF Code = "CHF" // Swiss Franc
	CNY Code = "CNY" // Chinese Yuan
	INR Code = "INR" // Indian Rupee
	MXN Code = "MXN" // Mexican Peso
)

// Supported lists the codes offered by both currency selectors, in display order.
var Supported = []Code{USD, EUR, GBP, JPY, CAD, AUD, CHF, CNY, INR, MXN}

// IsValid checks that the code has the ISO 4217 shape (3 uppercase letters).
func (c Code) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	return c[0] >= 'A' && c[0] <= 'Z' &&
		c[1] >= 'A' && c[1] <= 'Z' &&
		c[2] >= 'A' && c[2] <= 'Z'
}

// String returns the string representation of the currency code.
func (c Code) String() string {
	return string(c)
}
