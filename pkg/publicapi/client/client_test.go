//go:build unit || !integration

package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/docstore/inmemory"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
	"github.com/dsx-project/dsx/pkg/publicapi/endpoint/agent"
	"github.com/dsx-project/dsx/pkg/publicapi/endpoint/documents"
	"github.com/dsx-project/dsx/pkg/publicapi/middleware"
	"github.com/dsx-project/dsx/pkg/syncengine"
	"github.com/dsx-project/dsx/pkg/syncengine/test"
)

type ClientTestSuite struct {
	suite.Suite
	ctx    context.Context
	server *httptest.Server
	client *Client
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()

	store := inmemory.NewStore()
	engine, err := syncengine.NewEngine(syncengine.Params{
		InstanceID:  "instance-a",
		Store:       store,
		Broadcaster: test.NewRecordingBroadcaster(),
	})
	s.Require().NoError(err)

	router := echo.New()
	router.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	_, err = documents.NewEndpoint(documents.EndpointParams{Router: router, Engine: engine, Store: store})
	s.Require().NoError(err)
	agent.NewEndpoint(agent.EndpointParams{Router: router})

	s.server = httptest.NewServer(router)
	s.client, err = New(s.server.URL, WithRetryMax(0))
	s.Require().NoError(err)
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) TestCRUD() {
	created, err := s.client.Create(s.ctx, models.NewDocument("u1", models.Attributes{"name": "ada"}))
	s.Require().NoError(err)
	s.Equal("u1", created.Key)

	doc, err := s.client.Read(s.ctx, "u1")
	s.Require().NoError(err)
	s.Equal("ada", doc.Attributes["name"])

	updated, err := s.client.Update(s.ctx, models.NewDocument("u1", models.Attributes{"age": 37}))
	s.Require().NoError(err)
	s.Require().NotNil(updated)
	s.Equal(37.0, updated.Attributes["age"])
	s.Equal("ada", updated.Attributes["name"])

	missing, err := s.client.Update(s.ctx, models.NewDocument("ghost", models.Attributes{"age": 1}))
	s.Require().NoError(err)
	s.Nil(missing)

	docs, err := s.client.ReadAll(s.ctx)
	s.Require().NoError(err)
	s.Len(docs, 1)

	s.Require().NoError(s.client.Delete(s.ctx, "u1"))
	_, err = s.client.Read(s.ctx, "u1")
	s.True(apimodels.IsNotFound(err))

	_, err = s.client.Create(s.ctx, models.NewDocument("u2", nil))
	s.Require().NoError(err)
	s.Require().NoError(s.client.DeleteAll(s.ctx))
	docs, err = s.client.ReadAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(docs)
}

func (s *ClientTestSuite) TestAgent() {
	alive, err := s.client.Alive(s.ctx)
	s.Require().NoError(err)
	s.True(alive.IsReady())

	_, err = s.client.Version(s.ctx)
	s.Require().NoError(err)
}

func (s *ClientTestSuite) TestRetriesServerErrors() {
	var calls atomic.Int32
	flaky := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"Status":"OK"}`))
	}))
	defer flaky.Close()

	c, err := New(flaky.URL, WithRetryMax(3))
	s.Require().NoError(err)
	alive, err := c.Alive(s.ctx)
	s.Require().NoError(err)
	s.True(alive.IsReady())
	s.Equal(int32(3), calls.Load())
}

func (s *ClientTestSuite) TestSocketURL() {
	c, err := New("127.0.0.1:16040", WithRoutingPrefix("devices"))
	s.Require().NoError(err)
	s.Equal("ws://127.0.0.1:16040/socket", c.SocketURL())
	s.Equal("/devices/read/a%20b", c.route("read", "a b"))

	c, err = New("https://sync.example.com", WithSocketPath("live"))
	s.Require().NoError(err)
	s.Equal("wss://sync.example.com/live", c.SocketURL())
}
