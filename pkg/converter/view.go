package converter

import (
	"fmt"

	"github.com/amirasaad/fxconv/pkg/money"
)

// Status is the fetch-cycle state of a Controller.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
)

// View is an immutable snapshot of the form, taken under the controller's lock.
type View struct {
	Version           uint64     `json:"version"`
	Amount            string     `json:"amount"`
	Source            money.Code `json:"source"`
	Target            money.Code `json:"target"`
	Result            string     `json:"result"`
	Rate              string     `json:"rate,omitempty"`
	RateLine          string     `json:"rate_line,omitempty"`
	Status            Status     `json:"status"`
	SelectorsDisabled bool       `json:"selectors_disabled"`
	Error             string     `json:"error,omitempty"`
	LastUpdated       string     `json:"last_updated,omitempty"`
	RatesBase         money.Code `json:"rates_base,omitempty"`
	RatesCount        int        `json:"rates_count"`
}

// Loading reports whether a fetch is in flight.
func (v View) Loading() bool { return v.Status == StatusLoading }

// Summary renders the result line, e.g. "100 USD = 92.34 EUR".
func (v View) Summary() string {
	return fmt.Sprintf("%s %s = %s %s", v.Amount, v.Source, v.Result, v.Target)
}
