package webapi_test

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirasaad/fxconv/pkg/config"
	"github.com/amirasaad/fxconv/pkg/eventbus"
	"github.com/amirasaad/fxconv/webapi"
	currencyweb "github.com/amirasaad/fxconv/webapi/currency"
	"github.com/amirasaad/fxconv/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type WebAPITestSuite struct {
	testutils.E2ETestSuite
}

func (s *WebAPITestSuite) TestRoot() {
	resp := s.MakeRequest(fiber.MethodGet, "/", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(body), "fxconv is running")
}

func (s *WebAPITestSuite) TestHealth() {
	resp := s.MakeRequest(fiber.MethodGet, "/healthz", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var data map[string]any
	s.Decode(resp, &data)
	s.Equal("exchangerate-api", data["provider"])
	s.EqualValues(0, data["sessions"])
}

func (s *WebAPITestSuite) TestHealthProviderDown() {
	s.Provider.Fail("USD", "inactive-account")
	resp := s.MakeRequest(fiber.MethodGet, "/healthz", "")
	pd := s.DecodeProblem(resp)
	s.Equal(fiber.StatusServiceUnavailable, pd.Status)
	s.Equal("Rate provider unavailable", pd.Title)
}

func (s *WebAPITestSuite) TestListCurrencies() {
	resp := s.MakeRequest(fiber.MethodGet, "/api/currencies", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var list []currencyweb.CurrencyResponse
	s.Decode(resp, &list)

	s.Require().Len(list, 10)
	codes := make([]string, 0, len(list))
	for _, c := range list {
		codes = append(codes, c.Code)
	}
	s.Equal([]string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY", "INR", "MXN"}, codes)
	s.Equal("€", list[1].Symbol)
}

func (s *WebAPITestSuite) TestGetCurrency() {
	testCases := []struct {
		desc       string
		code       string
		wantStatus int
	}{
		{"supported", "gbp", fiber.StatusOK},
		{"unsupported", "KWD", fiber.StatusUnprocessableEntity},
		{"malformed", "GB", fiber.StatusBadRequest},
	}
	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.MakeRequest(fiber.MethodGet, "/api/currencies/"+tc.code, "")
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *WebAPITestSuite) TestRecentEvents() {
	resp := s.MakeRequest(fiber.MethodPost, "/api/sessions", "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck

	resp = s.MakeRequest(fiber.MethodGet, "/api/events?limit=2", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var envs []eventbus.Envelope
	s.Decode(resp, &envs)

	s.Require().Len(envs, 2)
	s.Equal("conversion.updated", envs[0].Type)
	s.Equal("rates.loaded", envs[1].Type)

	counters := s.App.Counters.Snapshot()
	s.Equal(int64(1), counters["rates_loaded"])
}

func (s *WebAPITestSuite) TestRecentEventsHideSessionIDs() {
	resp := s.MakeRequest(fiber.MethodPost, "/api/sessions", "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var created struct {
		ID string `json:"id"`
	}
	s.Decode(resp, &created)
	s.Require().NotEmpty(created.ID)

	resp = s.MakeRequest(fiber.MethodGet, "/api/events", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close() //nolint:errcheck
	s.Require().NoError(err)
	s.NotContains(string(body), created.ID)
	s.NotContains(string(body), "session_id")

	stored := s.Bus.Published()
	s.Require().NotEmpty(stored)
	s.Contains(string(stored[0].Payload), created.ID, "the bus itself keeps the id for server-side consumers")
}

func (s *WebAPITestSuite) TestRecentEventsInvalidLimit() {
	resp := s.MakeRequest(fiber.MethodGet, "/api/events?limit=-3", "")
	pd := s.DecodeProblem(resp)
	s.Equal(fiber.StatusBadRequest, pd.Status)
}

func (s *WebAPITestSuite) TestRateLimit() {
	s.Cfg.RateLimit = &config.RateLimit{MaxRequests: 3, Window: time.Second}
	app := webapi.SetupApp(s.App)

	for i := range 4 {
		resp := testutils.MakeRequestWithApp(app, fiber.MethodGet, "/", "")
		resp.Body.Close() //nolint:errcheck
		if i < 3 {
			s.Equal(fiber.StatusOK, resp.StatusCode, "Expected OK for request %d", i+1)
		} else {
			s.Equal(fiber.StatusTooManyRequests, resp.StatusCode, "Expected Too Many Requests for request %d", i+1)
		}
	}
}

func (s *WebAPITestSuite) TestRateLimitIgnoresSpoofedForwardedFor() {
	s.Cfg.RateLimit = &config.RateLimit{MaxRequests: 2, Window: time.Minute}
	app := webapi.SetupApp(s.App)

	statuses := make([]int, 0, 3)
	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, ip)
		req.Header.Set("X-Real-IP", ip)
		resp, err := app.Test(req)
		s.Require().NoError(err)
		resp.Body.Close() //nolint:errcheck
		statuses = append(statuses, resp.StatusCode)
	}
	s.Equal([]int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, statuses)
}

func (s *WebAPITestSuite) TestRateLimitHonorsTrustedProxy() {
	s.Cfg.RateLimit = &config.RateLimit{MaxRequests: 1, Window: time.Minute}
	s.Cfg.Server = &config.Server{TrustedProxies: []string{"0.0.0.0/0"}}
	app := webapi.SetupApp(s.App)

	send := func(ip string) int {
		req := httptest.NewRequest(fiber.MethodGet, "/", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, ip)
		resp, err := app.Test(req)
		s.Require().NoError(err)
		resp.Body.Close() //nolint:errcheck
		return resp.StatusCode
	}
	s.Equal(fiber.StatusOK, send("10.0.0.1"))
	s.Equal(fiber.StatusOK, send("10.0.0.2"), "each client behind the proxy has its own budget")
	s.Equal(fiber.StatusTooManyRequests, send("10.0.0.1"))
}

func TestWebAPITestSuite(t *testing.T) {
	suite.Run(t, new(WebAPITestSuite))
}
