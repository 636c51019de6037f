package main_test

import (
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/amirasaad/fxconv/webapi/testutils"
	"github.com/stretchr/testify/suite"
)

// TestMain runs before any tests and applies globally for all tests in the package.
func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	log.SetOutput(io.Discard)

	exitVal := m.Run()
	os.Exit(exitVal)
}

type MainTestSuite struct {
	testutils.E2ETestSuite
}

func TestMainTestSuite(t *testing.T) {
	suite.Run(t, new(MainTestSuite))
}

func (s *MainTestSuite) TestStartServer_RootRoute() {
	resp := s.MakeRequest(http.MethodGet, "/", "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *MainTestSuite) TestStartServer_SessionRoundTrip() {
	resp := s.MakeRequest(http.MethodPost, "/api/sessions", "")
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var out struct {
		ID     string `json:"id"`
		Result string `json:"result"`
	}
	s.Decode(resp, &out)
	s.Equal("0.92", out.Result)

	resp = s.MakeRequest(http.MethodGet, "/api/sessions/"+out.ID, "")
	defer resp.Body.Close() //nolint:errcheck
	s.Equal(http.StatusOK, resp.StatusCode)
}
