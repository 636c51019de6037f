package provider

import (
	"errors"
	"fmt"
)

// Sentinels wrapped by the typed fetch errors below.
var (
	ErrNetwork    = errors.New("network error")
	ErrHTTPStatus = errors.New("unexpected http status")
	ErrProvider   = errors.New("provider reported an error")
)

// NetworkError is returned when a request could not be sent or timed out.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, ErrNetwork, e.Err)
}

func (e *NetworkError) Unwrap() []error { return []error{ErrNetwork, e.Err} }

// HTTPError is returned for a non-2xx response.
type HTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider %s: %s %d", e.Provider, ErrHTTPStatus, e.StatusCode)
}

func (e *HTTPError) Unwrap() error { return ErrHTTPStatus }

// ProviderError is returned when the response parsed but its result is not "success".
type ProviderError struct {
	Provider  string
	Result    string
	ErrorType string
}

func (e *ProviderError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("provider %s: result=%s error-type=%s", e.Provider, e.Result, e.ErrorType)
	}
	return fmt.Sprintf("provider %s: result=%s", e.Provider, e.Result)
}

func (e *ProviderError) Unwrap() error { return ErrProvider }

// UserMessage turns a fetch error into the single message shown next to the form.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		netErr  *NetworkError
		httpErr *HTTPError
		provErr *ProviderError
	)
	switch {
	case errors.As(err, &netErr):
		return "Failed to fetch exchange rates: the rate service could not be reached"
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Failed to fetch exchange rates (HTTP %d)", httpErr.StatusCode)
	case errors.As(err, &provErr):
		if provErr.ErrorType != "" {
			return "Exchange rate API returned an error: " + provErr.ErrorType
		}
		return "Exchange rate API returned an error"
	default:
		return "Failed to fetch exchange rates"
	}
}
