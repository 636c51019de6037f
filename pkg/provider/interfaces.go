package provider

import (
	"context"
	"time"

	"github.com/amirasaad/fxconv/pkg/money"
	"github.com/shopspring/decimal"
)

// RateTable is a snapshot of rates from one base currency, as reported by a provider.
// Rates are always positive and keyed by valid ISO 4217 codes.
type RateTable struct {
	Base        money.Code                     `json:"base"`
	Rates       map[money.Code]decimal.Decimal `json:"rates"`
	LastUpdated string                         `json:"last_updated"`
	FetchedAt   time.Time                      `json:"fetched_at"`
	Provider    string                         `json:"provider"`
}

// Rate returns the rate from Base to the given code.
func (t *RateTable) Rate(to money.Code) (decimal.Decimal, bool) {
	if t == nil {
		return decimal.Zero, false
	}
	r, ok := t.Rates[to]
	return r, ok
}

// Len returns the number of rates in the table.
func (t *RateTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rates)
}

// RateFetcher defines the interface for fetching a full rate table for a base currency
type RateFetcher interface {
	// FetchRates gets every rate the provider has for base in a single request
	FetchRates(ctx context.Context, base money.Code) (*RateTable, error)

	// Name returns the provider's name for logging and identification.
	Name() string
}

// HealthChecker defines the interface for checking provider health
type HealthChecker interface {
	// CheckHealth checks if the provider is healthy
	CheckHealth(ctx context.Context) error
}
