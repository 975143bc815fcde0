//go:build unit || !integration

package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type RequestLoggerSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	logger zerolog.Logger
}

func TestRequestLoggerSuite(t *testing.T) {
	suite.Run(t, new(RequestLoggerSuite))
}

func (s *RequestLoggerSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.logger = zerolog.New(s.buf)
}

func (s *RequestLoggerSuite) serve(router *echo.Echo, req *http.Request) {
	router.ServeHTTP(httptest.NewRecorder(), req)
}

func (s *RequestLoggerSuite) TestLevelFollowsStatus() {
	for _, tc := range []struct {
		logLevel zerolog.Level
		status   int
		expected string
	}{
		{zerolog.InfoLevel, http.StatusOK, `"level":"info"`},
		{zerolog.DebugLevel, http.StatusCreated, `"level":"debug"`},
		{zerolog.DebugLevel, http.StatusNotFound, `"level":"warn"`},
		{zerolog.InfoLevel, http.StatusServiceUnavailable, `"level":"error"`},
		{zerolog.ErrorLevel, http.StatusOK, `"level":"error"`},
		{zerolog.FatalLevel, http.StatusInternalServerError, `"level":"fatal"`},
	} {
		s.buf.Reset()
		router := echo.New()
		router.Use(RequestLogger(s.logger, tc.logLevel))
		router.POST("/users/create", func(c echo.Context) error {
			return c.NoContent(tc.status)
		})
		s.serve(router, httptest.NewRequest(http.MethodPost, "/users/create", nil))

		s.Contains(s.buf.String(), tc.expected, "status %d at %s", tc.status, tc.logLevel)
		s.Contains(s.buf.String(), `"URI":"/users/create"`)
		s.Contains(s.buf.String(), `"Method":"POST"`)
	}
}

func (s *RequestLoggerSuite) TestWebsocketUpgradesAreSkipped() {
	router := echo.New()
	router.Use(RequestLogger(s.logger, zerolog.InfoLevel))
	router.GET("/socket", func(c echo.Context) error {
		return c.NoContent(http.StatusSwitchingProtocols)
	})
	req := httptest.NewRequest(http.MethodGet, "/socket", nil)
	req.Header.Set("Upgrade", "websocket")
	s.serve(router, req)

	s.Empty(s.buf.String())
}

func (s *RequestLoggerSuite) TestContextLoggerReachesHandlers() {
	router := echo.New()
	router.Use(ContextLogger(s.logger.With().Str("InstanceID", "a1b2c3").Logger()))
	router.GET("/users/readall", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("reading")
		return c.NoContent(http.StatusOK)
	})
	s.serve(router, httptest.NewRequest(http.MethodGet, "/users/readall", nil))

	s.Contains(s.buf.String(), `"InstanceID":"a1b2c3"`)
	s.Contains(s.buf.String(), `"message":"reading"`)
}
