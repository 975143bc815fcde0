//go:build unit || !integration

package documents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/docstore/inmemory"
	"github.com/dsx-project/dsx/pkg/docstore/noop"
	"github.com/dsx-project/dsx/pkg/logger"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
	"github.com/dsx-project/dsx/pkg/publicapi/middleware"
	"github.com/dsx-project/dsx/pkg/syncengine"
	"github.com/dsx-project/dsx/pkg/syncengine/test"
)

type EndpointTestSuite struct {
	suite.Suite
	ctx         context.Context
	store       *inmemory.Store
	broadcaster *test.RecordingBroadcaster
	router      *echo.Echo
}

func TestEndpointTestSuite(t *testing.T) {
	suite.Run(t, new(EndpointTestSuite))
}

func (s *EndpointTestSuite) SetupTest() {
	logger.ConfigureTestLogging(s.T())
	s.ctx = context.Background()
	s.store = inmemory.NewStore()
	s.broadcaster = test.NewRecordingBroadcaster("c1", "c2")
	s.router = s.newRouter(s.store)
}

func (s *EndpointTestSuite) newRouter(store docstore.Store) *echo.Echo {
	engine, err := syncengine.NewEngine(syncengine.Params{
		InstanceID:  "instance-a",
		Store:       store,
		Broadcaster: s.broadcaster,
	})
	s.Require().NoError(err)

	router := echo.New()
	router.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	_, err = NewEndpoint(EndpointParams{
		Router: router,
		Engine: engine,
		Store:  store,
	})
	s.Require().NoError(err)
	return router
}

func (s *EndpointTestSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *EndpointTestSuite) TestCreateAndRead() {
	rec := s.do(http.MethodPost, "/users/create", `{"uuid":"u1","name":"ada"}`)
	s.Equal(http.StatusCreated, rec.Code)
	s.JSONEq(`{"uuid":"u1","name":"ada"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/users/read/u1", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"uuid":"u1","name":"ada"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/users/readall", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[{"uuid":"u1","name":"ada"}]`, rec.Body.String())

	s.Len(s.broadcaster.Deliveries(), 2)
	s.Equal(models.ChangeCreated, s.broadcaster.For("c1")[0].Kind)
}

func (s *EndpointTestSuite) TestCreateWithoutKeyIsBadRequest() {
	rec := s.do(http.MethodPost, "/users/create", `{"name":"ada"}`)
	s.Equal(http.StatusBadRequest, rec.Code)

	var apiErr apimodels.APIError
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &apiErr))
	s.Equal(string(models.MalformedIntent), apiErr.Code)
	s.Empty(s.broadcaster.Deliveries())
}

func (s *EndpointTestSuite) TestReadMissingIsNotFound() {
	rec := s.do(http.MethodGet, "/users/read/ghost", "")
	s.Equal(http.StatusNotFound, rec.Code)

	var apiErr apimodels.APIError
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &apiErr))
	s.Equal(string(models.NotFoundError), apiErr.Code)
}

func (s *EndpointTestSuite) TestUpdateMergesAndReturnsStored() {
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u1", models.Attributes{"name": "ada", "age": 36.0})))

	rec := s.do(http.MethodPost, "/users/update", `{"uuid":"u1","age":37,"name":null}`)
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"uuid":"u1","name":"ada","age":37}`, rec.Body.String())
}

func (s *EndpointTestSuite) TestUpdateMissingReturnsNull() {
	rec := s.do(http.MethodPost, "/users/update", `{"uuid":"ghost","age":37}`)
	s.Equal(http.StatusOK, rec.Code)
	s.Equal("null", strings.TrimSpace(rec.Body.String()))

	_, err := s.store.FindOne(s.ctx, "ghost")
	s.True(docstore.IsNotFound(err))
}

func (s *EndpointTestSuite) TestDelete() {
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u1", nil)))
	s.Require().NoError(s.store.Upsert(s.ctx, models.NewDocument("u2", nil)))

	rec := s.do(http.MethodDelete, "/users/delete/u1", "")
	s.Equal(http.StatusOK, rec.Code)
	s.Equal(`"u1"`, strings.TrimSpace(rec.Body.String()))

	rec = s.do(http.MethodDelete, "/users/deleteall", "")
	s.Equal(http.StatusNoContent, rec.Code)

	docs, err := s.store.FindAll(s.ctx)
	s.Require().NoError(err)
	s.Empty(docs)
	s.Equal(models.ChangeAllDeleted, s.broadcaster.For("c2")[1].Kind)
}

func (s *EndpointTestSuite) TestStoreUnavailableDegradesSilently() {
	s.router = s.newRouter(noop.NewStore())

	rec := s.do(http.MethodPost, "/users/create", `{"uuid":"a1"}`)
	s.Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodGet, "/users/read/a1", "")
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/users/readall", "")
	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())

	s.Empty(s.broadcaster.Deliveries())
}

func (s *EndpointTestSuite) TestCustomRoutingPrefix() {
	engine, err := syncengine.NewEngine(syncengine.Params{
		InstanceID:  "instance-a",
		Store:       s.store,
		Broadcaster: s.broadcaster,
	})
	s.Require().NoError(err)
	s.router = echo.New()
	_, err = NewEndpoint(EndpointParams{Router: s.router, RoutingPrefix: "devices/", Engine: engine, Store: s.store})
	s.Require().NoError(err)

	rec := s.do(http.MethodGet, "/devices/readall", "")
	s.Equal(http.StatusOK, rec.Code)
}
