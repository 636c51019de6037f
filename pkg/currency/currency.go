package currency

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/amirasaad/fxconv/pkg/money"
)

const (
	// DefaultSource is the source currency a new form starts with
	DefaultSource = money.USD
	// DefaultTarget is the target currency a new form starts with
	DefaultTarget = money.EUR
)

var (
	// ErrInvalidCurrencyCode is returned when a code is not 3 uppercase letters.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	// ErrUnsupportedCurrency is returned when a well-formed code is not in the supported set.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Registry holds the fixed set of currencies offered by the selectors
type Registry struct {
	mu    sync.RWMutex
	order []money.Code
	meta  map[money.Code]money.Currency
}

// NewRegistry creates a registry populated with money.Supported
func NewRegistry() *Registry {
	r := &Registry{meta: make(map[money.Code]money.Currency)}
	for _, code := range money.Supported {
		cur, _ := money.Lookup(code)
		r.register(cur)
	}
	return r
}

func (r *Registry) register(cur money.Currency) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.meta[cur.Code]; !exists {
		r.order = append(r.order, cur.Code)
	}
	r.meta[cur.Code] = cur
}

// Validate normalizes a code to upper case and checks it is supported.
func (r *Registry) Validate(code string) (money.Code, error) {
	c := money.Code(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, code)
	}
	if !r.IsSupported(c) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, c)
	}
	return c, nil
}

// IsSupported checks if a currency code is registered
func (r *Registry) IsSupported(code money.Code) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.meta[code]
	return ok
}

// Get returns currency metadata for the given code
func (r *Registry) Get(code money.Code) (money.Currency, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cur, ok := r.meta[code]
	return cur, ok
}

// ListSupported returns the supported codes in display order
func (r *Registry) ListSupported() []money.Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]money.Code, len(r.order))
	copy(out, r.order)
	return out
}

// List returns metadata for every supported currency in display order
func (r *Registry) List() []money.Currency {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]money.Currency, 0, len(r.order))
	for _, c := range r.order {
		out = append(out, r.meta[c])
	}
	return out
}

// Count returns the total number of registered currencies
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
