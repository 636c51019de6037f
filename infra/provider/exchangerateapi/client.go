// Package exchangerateapi implements provider.RateFetcher for exchangerate-api.com (v6).
package exchangerateapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/pkg/money"
	"github.com/amirasaad/fxconv/pkg/provider"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

const (
	// Name identifies this provider in logs, errors and rate tables.
	Name = "exchangerate-api"

	resultSuccess = "success"
	maxBodyBytes  = 1 << 20
	maxErrorBody  = 512
)

// Response represents the v6 "latest" response.
// See: https://www.exchangerate-api.com/docs/standard-requests
type Response struct {
	Result             string             `json:"result"`
	Documentation      string             `json:"documentation"`
	TermsOfUse         string             `json:"terms_of_use"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	TimeLastUpdateUTC  string             `json:"time_last_update_utc"`
	TimeNextUpdateUnix int64              `json:"time_next_update_unix"`
	TimeNextUpdateUTC  string             `json:"time_next_update_utc"`
	BaseCode           string             `json:"base_code"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

// Client fetches rate tables over HTTP. Concurrent requests for the same base
// currency share one outbound call.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	group      singleflight.Group

	healthTTL time.Duration
	now       func() time.Time
	healthMu  sync.Mutex
	lastErr   error
	lastAt    time.Time
}

// New creates a client from config. A nil httpClient gets one with cfg.HTTPTimeout.
func New(cfg *config.ExchangeRateApi, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		apiKey:     cfg.ApiKey,
		baseURL:    strings.TrimRight(cfg.ApiUrl, "/"),
		httpClient: httpClient,
		logger:     logger.With("provider", Name),
		healthTTL:  cfg.HealthTTL,
		now:        time.Now,
	}
}

// Name returns the provider's name
func (c *Client) Name() string {
	return Name
}

// FetchRates fetches all rates for base in one request.
// The returned table is owned by the caller.
func (c *Client) FetchRates(ctx context.Context, base money.Code) (*provider.RateTable, error) {
	ch := c.group.DoChan(base.String(), func() (any, error) {
		// Shared by every waiter, so it must not die with the first caller's context.
		table, err := c.fetch(context.WithoutCancel(ctx), base)
		c.recordOutcome(err)
		return table, err
	})

	select {
	case <-ctx.Done():
		return nil, &provider.NetworkError{Provider: Name, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			c.logger.Debug("Shared in-flight rate request", "base", base)
		}
		table := *res.Val.(*provider.RateTable)
		table.Rates = maps.Clone(table.Rates)
		return &table, nil
	}
}

// CheckHealth reports the outcome of the latest fetch when it is younger than
// the configured HealthTTL. Otherwise it performs a USD fetch.
func (c *Client) CheckHealth(ctx context.Context) error {
	c.healthMu.Lock()
	lastErr, lastAt := c.lastErr, c.lastAt
	c.healthMu.Unlock()
	if c.healthTTL > 0 && !lastAt.IsZero() && c.now().Sub(lastAt) < c.healthTTL {
		return lastErr
	}
	_, err := c.FetchRates(ctx, money.USD)
	return err
}

func (c *Client) recordOutcome(err error) {
	c.healthMu.Lock()
	defer c.healthMu.Unlock()
	c.lastErr = err
	c.lastAt = c.now()
}

func (c *Client) endpoint(base money.Code) string {
	return fmt.Sprintf("%s/%s/latest/%s", c.baseURL, url.PathEscape(c.apiKey), url.PathEscape(base.String()))
}

func (c *Client) fetch(ctx context.Context, base money.Code) (*provider.RateTable, error) {
	start := time.Now()
	c.logger.Info("Fetching exchange rates from API", "base", base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(base), nil)
	if err != nil {
		return nil, &provider.NetworkError{Provider: Name, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Exchange rate request failed", "base", base, "error", redact(err, c.apiKey))
		return nil, &provider.NetworkError{Provider: Name, Err: redact(err, c.apiKey)}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("Exchange rate API returned non-2xx status",
			"base", base, "status", resp.StatusCode, "body", string(body))
		return nil, &provider.HTTPError{Provider: Name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp Response
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&apiResp); err != nil {
		return nil, &provider.ProviderError{Provider: Name, Result: "malformed", ErrorType: "decode: " + err.Error()}
	}
	if apiResp.Result != resultSuccess {
		c.logger.Warn("Exchange rate API reported an error",
			"base", base, "result", apiResp.Result, "error_type", apiResp.ErrorType)
		return nil, &provider.ProviderError{Provider: Name, Result: apiResp.Result, ErrorType: apiResp.ErrorType}
	}

	table := toRateTable(base, &apiResp, c.logger)
	c.logger.Info("Exchange rates fetched",
		"base", base,
		"count", table.Len(),
		"last_updated", table.LastUpdated,
		"duration", time.Since(start),
	)
	return table, nil
}

func toRateTable(base money.Code, resp *Response, logger *slog.Logger) *provider.RateTable {
	table := &provider.RateTable{
		Base:        base,
		Rates:       make(map[money.Code]decimal.Decimal, len(resp.ConversionRates)),
		LastUpdated: resp.TimeLastUpdateUTC,
		FetchedAt:   time.Now().UTC(),
		Provider:    Name,
	}
	skipped := 0
	for code, value := range resp.ConversionRates {
		c := money.Code(code)
		if !c.IsValid() {
			skipped++
			continue
		}
		rate, err := money.NewRate(value)
		if err != nil {
			skipped++
			continue
		}
		table.Rates[c] = rate
	}
	if skipped > 0 {
		logger.Debug("Dropped invalid rates from response", "base", base, "skipped", skipped)
	}
	return table
}

// redact keeps the API key out of url.Error messages while preserving the chain.
func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), secret, "****"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }

func (e *redactedError) Unwrap() error { return e.err }

// Ensure Client implements the provider interfaces
var (
	_ provider.RateFetcher   = (*Client)(nil)
	_ provider.HealthChecker = (*Client)(nil)
)
