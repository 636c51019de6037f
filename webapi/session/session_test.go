package session_test

import (
	"fmt"
	"testing"

	"github.com/amirasaad/fxconv/pkg/converter"
	"github.com/amirasaad/fxconv/pkg/money"
	sessionweb "github.com/amirasaad/fxconv/webapi/session"
	"github.com/amirasaad/fxconv/webapi/testutils"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/suite"
)

type SessionTestSuite struct {
	testutils.E2ETestSuite
}

func (s *SessionTestSuite) createSession() sessionweb.Response {
	resp := s.MakeRequest(fiber.MethodPost, "/api/sessions", "")
	s.Require().Equal(fiber.StatusCreated, resp.StatusCode)
	var out sessionweb.Response
	s.Decode(resp, &out)
	s.Require().NotEmpty(out.ID)
	return out
}

func (s *SessionTestSuite) put(id, field, body string) sessionweb.Response {
	resp := s.MakeRequest(fiber.MethodPut, fmt.Sprintf("/api/sessions/%s/%s", id, field), body)
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var out sessionweb.Response
	s.Decode(resp, &out)
	return out
}

func (s *SessionTestSuite) TestCreateLoadsRates() {
	out := s.createSession()

	s.Equal(money.USD, out.Source)
	s.Equal(money.EUR, out.Target)
	s.Equal("1", out.Amount)
	s.Equal("0.92", out.Result)
	s.Equal("1 USD = 0.9234 EUR", out.RateLine)
	s.Equal(converter.StatusIdle, out.Status)
	s.False(out.SelectorsDisabled)
	s.Equal("Fri, 27 Mar 2020 00:00:00 +0000", out.LastUpdated)
	s.Equal(4, out.RatesCount)
	s.Equal("1 USD = 0.92 EUR", out.Summary)
}

func (s *SessionTestSuite) TestConversionFlow() {
	id := s.createSession().ID

	out := s.put(id, "amount", `{"amount":"100"}`)
	s.Equal("92.34", out.Result)

	out = s.put(id, "target", `{"currency":"GBP"}`)
	s.Equal("79.00", out.Result)
	s.Equal("1 USD = 0.7900 GBP", out.RateLine)

	out = s.put(id, "source", `{"currency":"eur"}`)
	s.Equal(money.EUR, out.Source)
	s.Equal("85.55", out.Result)
	s.Equal(money.EUR, out.RatesBase)

	resp := s.MakeRequest(fiber.MethodPost, "/api/sessions/"+id+"/swap", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var swapped sessionweb.Response
	s.Decode(resp, &swapped)
	s.Equal(money.GBP, swapped.Source)
	s.Equal(money.EUR, swapped.Target)
	s.Equal("Exchange rate API returned an error: unsupported-code", swapped.Error)
	s.Equal("85.55", swapped.Result, "result stays until a matching table loads")
	s.Equal(money.EUR, swapped.RatesBase, "failed fetch keeps the previous table")
	s.Empty(swapped.RateLine)
}

func (s *SessionTestSuite) TestSetAmountVariants() {
	id := s.createSession().ID
	testCases := []struct {
		desc       string
		body       string
		wantStatus int
	}{
		{desc: "valid", body: `{"amount":"12.5"}`, wantStatus: fiber.StatusOK},
		{desc: "empty means zero", body: `{"amount":""}`, wantStatus: fiber.StatusOK},
		{desc: "negative", body: `{"amount":"-1"}`, wantStatus: fiber.StatusBadRequest},
		{desc: "not a number", body: `{"amount":"12abc"}`, wantStatus: fiber.StatusBadRequest},
		{desc: "exponent notation", body: `{"amount":"1e2000000000"}`, wantStatus: fiber.StatusBadRequest},
		{desc: "invalid body", body: `{"amount":12`, wantStatus: fiber.StatusBadRequest},
	}

	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.MakeRequest(fiber.MethodPut, "/api/sessions/"+id+"/amount", tc.body)
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *SessionTestSuite) TestRejectedAmountKeepsState() {
	id := s.createSession().ID
	s.put(id, "amount", `{"amount":"100"}`)

	resp := s.MakeRequest(fiber.MethodPut, "/api/sessions/"+id+"/amount", `{"amount":"-5"}`)
	pd := s.DecodeProblem(resp)
	s.Equal(fiber.StatusBadRequest, pd.Status)
	s.Equal("Invalid amount", pd.Title)

	resp = s.MakeRequest(fiber.MethodGet, "/api/sessions/"+id, "")
	var out sessionweb.Response
	s.Decode(resp, &out)
	s.Equal("100", out.Amount)
	s.Equal("92.34", out.Result)
}

func (s *SessionTestSuite) TestSelectCurrencyVariants() {
	id := s.createSession().ID
	testCases := []struct {
		desc       string
		field      string
		body       string
		wantStatus int
	}{
		{desc: "missing currency", field: "target", body: `{}`, wantStatus: fiber.StatusBadRequest},
		{desc: "wrong length", field: "target", body: `{"currency":"US"}`, wantStatus: fiber.StatusBadRequest},
		{desc: "not letters", field: "source", body: `{"currency":"U5D"}`, wantStatus: fiber.StatusBadRequest},
		{desc: "unsupported", field: "source", body: `{"currency":"KWD"}`, wantStatus: fiber.StatusUnprocessableEntity},
		{desc: "supported", field: "target", body: `{"currency":"JPY"}`, wantStatus: fiber.StatusOK},
	}

	for _, tc := range testCases {
		s.Run(tc.desc, func() {
			resp := s.MakeRequest(fiber.MethodPut, fmt.Sprintf("/api/sessions/%s/%s", id, tc.field), tc.body)
			defer resp.Body.Close() //nolint:errcheck
			s.Equal(tc.wantStatus, resp.StatusCode)
		})
	}
}

func (s *SessionTestSuite) TestValidationErrorsNameFields() {
	id := s.createSession().ID
	resp := s.MakeRequest(fiber.MethodPut, "/api/sessions/"+id+"/target", `{"currency":"US"}`)
	pd := s.DecodeProblem(resp)
	s.Equal("Validation failed", pd.Title)
	s.Equal(map[string]any{"currency": "len=3"}, pd.Errors)
}

func (s *SessionTestSuite) TestRefreshFailureKeepsTable() {
	id := s.createSession().ID
	s.Provider.Fail("USD", "quota-reached")

	resp := s.MakeRequest(fiber.MethodPost, "/api/sessions/"+id+"/refresh", "")
	s.Require().Equal(fiber.StatusOK, resp.StatusCode)
	var out sessionweb.Response
	s.Decode(resp, &out)

	s.Equal("Exchange rate API returned an error: quota-reached", out.Error)
	s.Equal(converter.StatusIdle, out.Status)
	s.Equal(4, out.RatesCount)
	s.Equal("0.92", out.Result)
}

func (s *SessionTestSuite) TestUnknownSession() {
	for _, path := range []string{
		"/api/sessions/6f1c1c6e-4e7b-4b7a-9a53-7b1f1d0e2a11",
		"/api/sessions/not-a-uuid",
	} {
		resp := s.MakeRequest(fiber.MethodGet, path, "")
		pd := s.DecodeProblem(resp)
		s.Equal(fiber.StatusNotFound, pd.Status)
	}
}

func (s *SessionTestSuite) TestDeleteSession() {
	id := s.createSession().ID

	resp := s.MakeRequest(fiber.MethodDelete, "/api/sessions/"+id, "")
	s.Equal(fiber.StatusOK, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck

	resp = s.MakeRequest(fiber.MethodGet, "/api/sessions/"+id, "")
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck

	resp = s.MakeRequest(fiber.MethodDelete, "/api/sessions/"+id, "")
	s.Equal(fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close() //nolint:errcheck
}

func (s *SessionTestSuite) TestSessionCap() {
	for range s.Cfg.Session.Max {
		s.createSession()
	}
	resp := s.MakeRequest(fiber.MethodPost, "/api/sessions", "")
	pd := s.DecodeProblem(resp)
	s.Equal(fiber.StatusServiceUnavailable, pd.Status)
}

func TestSessionTestSuite(t *testing.T) {
	suite.Run(t, new(SessionTestSuite))
}
