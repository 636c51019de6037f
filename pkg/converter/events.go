package converter

import "github.com/amirasaad/fxconv/pkg/money"

// Event types emitted by a Controller.
const (
	EventRatesRequested    = "rates.requested"
	EventRatesLoaded       = "rates.loaded"
	EventRatesFailed       = "rates.failed"
	EventRatesDiscarded    = "rates.discarded"
	EventConversionUpdated = "conversion.updated"
)

// RatesRequested is emitted when a fetch is issued.
type RatesRequested struct {
	SessionID string     `json:"session_id"`
	Base      money.Code `json:"base"`
	Token     uint64     `json:"token"`
}

func (RatesRequested) Type() string { return EventRatesRequested }

// RatesLoaded is emitted when a fetch result replaced the rate table.
type RatesLoaded struct {
	SessionID   string     `json:"session_id"`
	Base        money.Code `json:"base"`
	Token       uint64     `json:"token"`
	Count       int        `json:"count"`
	LastUpdated string     `json:"last_updated"`
}

func (RatesLoaded) Type() string { return EventRatesLoaded }

// RatesFailed is emitted when the latest fetch failed; the old table is kept.
type RatesFailed struct {
	SessionID string     `json:"session_id"`
	Base      money.Code `json:"base"`
	Token     uint64     `json:"token"`
	Message   string     `json:"message"`
	Cause     string     `json:"cause"`
}

func (RatesFailed) Type() string { return EventRatesFailed }

// RatesDiscarded is emitted when a completion arrived for a superseded request.
type RatesDiscarded struct {
	SessionID string     `json:"session_id"`
	Base      money.Code `json:"base"`
	Token     uint64     `json:"token"`
	Latest    uint64     `json:"latest"`
}

func (RatesDiscarded) Type() string { return EventRatesDiscarded }

// ConversionUpdated is emitted whenever the displayed result changes.
type ConversionUpdated struct {
	SessionID string     `json:"session_id"`
	Amount    string     `json:"amount"`
	Source    money.Code `json:"source"`
	Target    money.Code `json:"target"`
	Rate      string     `json:"rate"`
	Result    string     `json:"result"`
}

func (ConversionUpdated) Type() string { return EventConversionUpdated }
