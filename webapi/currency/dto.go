package currency

import "github.com/amirasaad/fxconv/pkg/money"

// CurrencyResponse represents one entry of the selector list
type CurrencyResponse struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ToResponse converts currency metadata to a response DTO
func ToResponse(c money.Currency) CurrencyResponse {
	return CurrencyResponse{
		Code:     c.Code.String(),
		Name:     c.Name,
		Symbol:   c.Symbol,
		Decimals: c.Decimals,
	}
}
