package testutils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	infra_eventbus "github.com/amirasaad/fxconv/infra/eventbus"
	"github.com/amirasaad/fxconv/infra/provider/exchangerateapi"
	"github.com/amirasaad/fxconv/pkg/app"
	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/pkg/currency"
	"github.com/amirasaad/fxconv/webapi"
	"github.com/amirasaad/fxconv/webapi/common"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

// TestAPIKey is the key the fake provider expects in the request path.
const TestAPIKey = "test-key"

// FakeProvider serves exchangerate-api v6 responses from fixed tables.
type FakeProvider struct {
	mu       sync.Mutex
	tables   map[string]map[string]float64
	failures map[string]string
	Calls    atomic.Int32
}

// NewFakeProvider returns a provider with USD and EUR tables.
func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		tables: map[string]map[string]float64{
			"USD": {"USD": 1, "EUR": 0.9234, "GBP": 0.79, "JPY": 151.2},
			"EUR": {"EUR": 1, "USD": 1.0829, "GBP": 0.8555, "JPY": 163.7},
		},
		failures: make(map[string]string),
	}
}

// Fail makes requests for base return {"result":"error","error-type":errorType}.
func (p *FakeProvider) Fail(base, errorType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures[base] = errorType
}

func (p *FakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.Calls.Add(1)
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	// v6/{key}/latest/{base}
	if len(parts) != 4 || parts[1] != TestAPIKey || parts[2] != "latest" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	base := parts[3]

	p.mu.Lock()
	errType, failing := p.failures[base]
	rates, ok := p.tables[base]
	p.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if failing {
		_, _ = fmt.Fprintf(w, `{"result":"error","error-type":%q}`, errType)
		return
	}
	if !ok {
		_, _ = io.WriteString(w, `{"result":"error","error-type":"unsupported-code"}`)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"result":               "success",
		"base_code":            base,
		"time_last_update_utc": "Fri, 27 Mar 2020 00:00:00 +0000",
		"conversion_rates":     rates,
	})
}

// E2ETestSuite runs the full HTTP stack against a fake rate provider.
type E2ETestSuite struct {
	suite.Suite
	Provider *FakeProvider
	Server   *httptest.Server
	Bus      *infra_eventbus.MemoryEventBus
	App      *app.App
	Fiber    *fiber.App
	Cfg      *config.App
}

// SetupTest builds a fresh application for every test.
func (s *E2ETestSuite) SetupTest() {
	s.Provider = NewFakeProvider()
	s.Server = httptest.NewServer(s.Provider)
	s.T().Cleanup(s.Server.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.Cfg = &config.App{
		Env: "test",
		ExchangeRate: &config.ExchangeRateApi{
			ApiKey:      TestAPIKey,
			ApiUrl:      s.Server.URL + "/v6",
			HTTPTimeout: 2 * time.Second,
		},
		Converter: &config.Converter{DefaultSource: "USD", DefaultTarget: "EUR", DefaultAmount: "1"},
		Session:   &config.Session{TTL: time.Hour, Max: 5},
		RateLimit: &config.RateLimit{MaxRequests: 0},
	}
	client := exchangerateapi.New(s.Cfg.ExchangeRate, nil, logger)
	s.Bus = infra_eventbus.NewWithMemory(logger)
	s.App = app.New(&app.Deps{
		RateFetcher:      client,
		HealthChecker:    client,
		CurrencyRegistry: currency.NewRegistry(),
		EventBus:         s.Bus,
		Logger:           logger,
	}, s.Cfg)
	s.Fiber = webapi.SetupApp(s.App)
}

// MakeRequest is a helper for making HTTP requests in tests
func (s *E2ETestSuite) MakeRequest(method, path, body string) *http.Response {
	return MakeRequestWithApp(s.Fiber, method, path, body)
}

// MakeRequestWithApp sends a request through app without a network listener.
func MakeRequestWithApp(app *fiber.App, method, path, body string) *http.Response {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	resp, err := app.Test(req, 10000)
	if err != nil {
		panic(err) // For standalone tests, panic on error
	}
	return resp
}

// Decode reads a success envelope and unmarshals its data into out.
func (s *E2ETestSuite) Decode(resp *http.Response, out any) common.Response {
	defer resp.Body.Close() //nolint:errcheck
	var raw struct {
		Status  int             `json:"status"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&raw))
	if out != nil && len(raw.Data) > 0 {
		s.Require().NoError(json.Unmarshal(raw.Data, out))
	}
	return common.Response{Status: raw.Status, Message: raw.Message}
}

// DecodeProblem reads a problem details body.
func (s *E2ETestSuite) DecodeProblem(resp *http.Response) common.ProblemDetails {
	defer resp.Body.Close() //nolint:errcheck
	s.Require().Equal(common.MIMEProblemJSON, resp.Header.Get("Content-Type"))
	var pd common.ProblemDetails
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&pd))
	return pd
}
