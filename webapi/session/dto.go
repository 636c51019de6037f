package session

import "github.com/amirasaad/fxconv/pkg/converter"

// AmountRequest carries the raw text of the amount field. An empty string means zero.
type AmountRequest struct {
	Amount string `json:"amount" validate:"max=64"`
}

// CurrencyRequest selects a source or target currency.
type CurrencyRequest struct {
	Currency string `json:"currency" validate:"required,len=3,alpha"`
}

// Response is the session representation returned by every session endpoint.
type Response struct {
	ID string `json:"id"`
	converter.View
	Summary string `json:"summary"`
}

// ToResponse builds the response DTO for a view.
func ToResponse(id string, v converter.View) Response {
	return Response{ID: id, View: v, Summary: v.Summary()}
}
