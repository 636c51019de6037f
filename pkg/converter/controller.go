// Package converter holds the state of a single currency conversion form.
//
// A Controller owns the amount, the two currency selectors, the current rate
// table and the derived result. Every mutation recomputes the result before
// the lock is released, so a View never shows a half-applied change.
//
// Rate fetches are ordered by a request token: each fetch takes the next token
// and its completion is applied only if no later fetch has been issued since.
package converter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/amirasaad/fxconv/pkg/currency"
	"github.com/amirasaad/fxconv/pkg/eventbus"
	"github.com/amirasaad/fxconv/pkg/money"
	"github.com/amirasaad/fxconv/pkg/provider"
	"github.com/shopspring/decimal"
)

var (
	// ErrBusy is returned by the currency selectors while rates are loading.
	ErrBusy = errors.New("exchange rates are loading; currency selection is disabled")
	// ErrSuperseded is returned by RefreshRates when a later fetch was issued
	// before this one completed. Its result was discarded.
	ErrSuperseded = errors.New("rate fetch superseded by a newer request")
)

// Controller is the conversion form state machine.
type Controller struct {
	mu       sync.Mutex
	fetcher  provider.RateFetcher
	registry *currency.Registry
	bus      eventbus.Bus
	logger   *slog.Logger
	id       string

	amount  decimal.Decimal
	source  money.Code
	target  money.Code
	rates   *provider.RateTable
	result  decimal.Decimal
	status  Status
	errMsg  string
	lastErr error
	issued  uint64
	version uint64

	initial *initialValues
}

type initialValues struct {
	amount, source, target string
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegistry sets the currency registry used to validate selector input.
func WithRegistry(r *currency.Registry) Option {
	return func(c *Controller) { c.registry = r }
}

// WithBus publishes controller events on b.
func WithBus(b eventbus.Bus) Option {
	return func(c *Controller) { c.bus = b }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithID labels the controller's log lines and events.
func WithID(id string) Option {
	return func(c *Controller) { c.id = id }
}

// WithInitial sets the starting form values. Invalid values fall back to defaults.
func WithInitial(amount, source, target string) Option {
	return func(c *Controller) {
		c.initial = &initialValues{amount: amount, source: source, target: target}
	}
}

// New creates an Idle controller with an empty rate table:
// amount 1, USD to EUR unless overridden.
func New(fetcher provider.RateFetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		registry: currency.NewRegistry(),
		logger:   slog.Default(),
		amount:   decimal.NewFromInt(1),
		source:   currency.DefaultSource,
		target:   currency.DefaultTarget,
		status:   StatusIdle,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if in := c.initial; in != nil {
		if a, err := money.ParseAmount(in.amount); err == nil {
			c.amount = a
		}
		if code, err := c.registry.Validate(in.source); err == nil {
			c.source = code
		}
		if code, err := c.registry.Validate(in.target); err == nil {
			c.target = code
		}
		c.initial = nil
	}
	c.logger = c.logger.With("component", "converter", "session_id", c.id)
	return c
}

// Mount performs the initial rate fetch.
func (c *Controller) Mount(ctx context.Context) error {
	return c.RefreshRates(ctx)
}

// View returns a consistent snapshot of the form.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// SetAmount accepts an empty or non-negative numeric string.
// Rejected input leaves the state untouched.
func (c *Controller) SetAmount(ctx context.Context, value string) (View, error) {
	amount, err := money.ParseAmount(value)
	if err != nil {
		c.logger.Debug("Amount rejected", "value", value, "error", err)
		return c.View(), err
	}

	c.mu.Lock()
	c.amount = amount
	c.version++
	evt := c.recomputeLocked()
	v := c.viewLocked()
	c.mu.Unlock()

	c.emit(ctx, evt)
	return v, nil
}

// SetTargetCurrency changes the target selector.
func (c *Controller) SetTargetCurrency(ctx context.Context, code string) (View, error) {
	target, err := c.registry.Validate(code)
	if err != nil {
		return c.View(), err
	}

	c.mu.Lock()
	if c.status == StatusLoading {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrBusy
	}
	c.target = target
	c.version++
	evt := c.recomputeLocked()
	v := c.viewLocked()
	c.mu.Unlock()

	c.emit(ctx, evt)
	return v, nil
}

// SetSourceCurrency changes the source selector and refreshes rates when it
// actually changed. A failed fetch is reported in the returned View, not as an error.
func (c *Controller) SetSourceCurrency(ctx context.Context, code string) (View, error) {
	source, err := c.registry.Validate(code)
	if err != nil {
		return c.View(), err
	}

	c.mu.Lock()
	if c.status == StatusLoading {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrBusy
	}
	if source == c.source {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}
	c.source = source
	req := c.beginFetchLocked()
	c.mu.Unlock()

	// failures and superseded results are already reflected in the view
	_ = c.fetch(ctx, req)
	return c.View(), nil
}

// Swap exchanges source and target in one step, then refreshes rates for the
// new source.
func (c *Controller) Swap(ctx context.Context) (View, error) {
	c.mu.Lock()
	if c.status == StatusLoading {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, ErrBusy
	}
	if c.source == c.target {
		v := c.viewLocked()
		c.mu.Unlock()
		return v, nil
	}
	c.source, c.target = c.target, c.source
	req := c.beginFetchLocked()
	c.mu.Unlock()

	_ = c.fetch(ctx, req)
	return c.View(), nil
}

// RefreshRates fetches a rate table for the current source.
//
// On success the table is replaced wholesale. On failure the previous table is
// kept and a single user-facing message is recorded. Either way the controller
// returns to Idle, unless a newer fetch was issued meanwhile, in which case the
// result is discarded and ErrSuperseded is returned.
func (c *Controller) RefreshRates(ctx context.Context) error {
	c.mu.Lock()
	req := c.beginFetchLocked()
	c.mu.Unlock()
	return c.fetch(ctx, req)
}

type fetchRequest struct {
	token uint64
	base  money.Code
}

// beginFetchLocked issues the next token and enters Loading.
func (c *Controller) beginFetchLocked() fetchRequest {
	c.issued++
	c.status = StatusLoading
	c.errMsg = ""
	c.version++
	return fetchRequest{token: c.issued, base: c.source}
}

func (c *Controller) fetch(ctx context.Context, req fetchRequest) error {
	base, token := req.base, req.token
	c.emit(ctx, RatesRequested{SessionID: c.id, Base: base, Token: token})
	c.logger.Debug("Fetching rates", "base", base, "token", token)

	table, err := c.fetcher.FetchRates(ctx, base)
	if err == nil && table == nil {
		err = &provider.ProviderError{Provider: c.fetcher.Name(), Result: "empty"}
	}

	c.mu.Lock()
	if token != c.issued {
		latest := c.issued
		c.mu.Unlock()
		c.logger.Debug("Discarding superseded rate response", "base", base, "token", token, "latest", latest)
		c.emit(ctx, RatesDiscarded{SessionID: c.id, Base: base, Token: token, Latest: latest})
		return ErrSuperseded
	}

	c.status = StatusIdle
	c.version++
	if err != nil {
		msg := provider.UserMessage(err)
		c.lastErr = err
		c.errMsg = msg
		c.mu.Unlock()

		c.logger.Warn("Error fetching exchange rates", "base", base, "error", err)
		c.emit(ctx, RatesFailed{SessionID: c.id, Base: base, Token: token, Message: msg, Cause: err.Error()})
		return fmt.Errorf("refresh rates for %s: %w", base, err)
	}

	c.rates = table
	c.lastErr = nil
	evt := c.recomputeLocked()
	loaded := RatesLoaded{SessionID: c.id, Base: base, Token: token, Count: table.Len(), LastUpdated: table.LastUpdated}
	c.mu.Unlock()

	c.logger.Info("Exchange rates updated", "base", base, "count", table.Len(), "last_updated", table.LastUpdated)
	c.emit(ctx, loaded)
	c.emit(ctx, evt)
	return nil
}

// LastError returns the error behind the current error message, if any.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// rateLocked returns the rate for the current pair, only when the table was
// fetched for the current source.
func (c *Controller) rateLocked() (decimal.Decimal, bool) {
	if c.rates == nil || c.rates.Base != c.source {
		return decimal.Zero, false
	}
	return c.rates.Rate(c.target)
}

// recomputeLocked derives the result. Without a usable rate the previous result
// stays in place. Returns the event to emit once unlocked, or nil.
func (c *Controller) recomputeLocked() eventbus.Event {
	rate, ok := c.rateLocked()
	if !ok {
		return nil
	}
	next := money.Convert(c.amount, rate)
	if next.Equal(c.result) {
		return nil
	}
	c.result = next
	return ConversionUpdated{
		SessionID: c.id,
		Amount:    c.amount.String(),
		Source:    c.source,
		Target:    c.target,
		Rate:      money.FormatRate(rate),
		Result:    money.FormatResult(next),
	}
}

func (c *Controller) viewLocked() View {
	v := View{
		Version:           c.version,
		Amount:            c.amount.String(),
		Source:            c.source,
		Target:            c.target,
		Result:            money.FormatResult(c.result),
		Status:            c.status,
		SelectorsDisabled: c.status == StatusLoading,
		Error:             c.errMsg,
		RatesCount:        c.rates.Len(),
	}
	if c.rates != nil {
		v.RatesBase = c.rates.Base
		v.LastUpdated = c.rates.LastUpdated
	}
	if rate, ok := c.rateLocked(); ok {
		v.Rate = money.FormatRate(rate)
		v.RateLine = fmt.Sprintf("1 %s = %s %s", c.source, v.Rate, c.target)
	}
	return v
}

func (c *Controller) emit(ctx context.Context, evt eventbus.Event) {
	if c.bus == nil || evt == nil {
		return
	}
	if err := c.bus.Emit(ctx, evt); err != nil {
		c.logger.Warn("Failed to emit event", "type", evt.Type(), "error", err)
	}
}
