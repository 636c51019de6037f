package money

// Currency holds display metadata for a supported code.
type Currency struct {
	Code     Code   `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

var currencies = map[Code]Currency{
	USD: {Code: USD, Name: "US Dollar", Symbol: "$", Decimals: 2},
	EUR: {Code: EUR, Name: "Euro", Symbol: "€", Decimals: 2},
	GBP: {Code: GBP, Name: "British Pound", Symbol: "£", Decimals: 2},
	JPY: {Code: JPY, Name: "Japanese Yen", Symbol: "¥", Decimals: 0},
	CAD: {Code: CAD, Name: "Canadian Dollar", Symbol: "C$", Decimals: 2},
	AUD: {Code: AUD, Name: "Australian Dollar", Symbol: "A$", Decimals: 2},
	CHF: {Code: CHF, Name: "Swiss Franc", Symbol: "CHF", Decimals: 2},
	CNY: {Code: CNY, Name: "Chinese Yuan", Symbol: "¥", Decimals: 2},
	INR: {Code: INR, Name: "Indian Rupee", Symbol: "₹", Decimals: 2},
	MXN: {Code: MXN, Name: "Mexican Peso", Symbol: "MX$", Decimals: 2},
}

// Lookup returns the metadata for a supported code.
func Lookup(c Code) (Currency, bool) {
	cur, ok := currencies[c]
	return cur, ok
}

// String returns the currency code as a string
func (c Currency) String() string { return string(c.Code) }
