//go:build unit || !integration

package publicapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
	"github.com/dsx-project/dsx/pkg/publicapi/endpoint/agent"
)

type ServerTestSuite struct {
	suite.Suite
	ctx    context.Context
	server *Server
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()

	var err error
	s.server, err = NewAPIServer(ServerParams{
		Router:  echo.New(),
		Address: "127.0.0.1",
		Port:    0,
		HostID:  "instance-a",
		Config:  DefaultConfig(),
		Headers: map[string]string{apimodels.HTTPHeaderInstanceID: "instance-a"},
	})
	s.Require().NoError(err)
	agent.NewEndpoint(agent.EndpointParams{Router: s.server.Router})
	s.Require().NoError(s.server.ListenAndServe(s.ctx))
}

func (s *ServerTestSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
	defer cancel()
	s.NoError(s.server.Shutdown(ctx))
}

func (s *ServerTestSuite) TestServesWithHeaders() {
	s.NotZero(s.server.Port)

	res, err := http.Get(s.server.GetURI().JoinPath("/api/v1/agent/alive").String())
	s.Require().NoError(err)
	defer res.Body.Close()

	s.Equal(http.StatusOK, res.StatusCode)
	s.Equal("instance-a", res.Header.Get(apimodels.HTTPHeaderInstanceID))
	s.Equal("*", res.Header.Get(echo.HeaderAccessControlAllowOrigin))
	s.NotEmpty(res.Header.Get(echo.HeaderXRequestID))
}

func (s *ServerTestSuite) TestUnknownRouteIsAPIError() {
	res, err := http.Get(s.server.GetURI().JoinPath("/nope").String())
	s.Require().NoError(err)
	apiErr := apimodels.GenerateAPIErrorFromHTTPResponse(res)
	s.Equal(http.StatusNotFound, apiErr.HTTPStatusCode)
	s.NotEmpty(apiErr.RequestID)
}

func (s *ServerTestSuite) TestRequiresRouter() {
	_, err := NewAPIServer(ServerParams{})
	s.Error(err)
}
