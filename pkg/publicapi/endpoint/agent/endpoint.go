package agent

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
	"github.com/dsx-project/dsx/pkg/publicapi/middleware"
	"github.com/dsx-project/dsx/pkg/version"
)

// InstanceInfoProvider reports the state of the running instance.
type InstanceInfoProvider interface {
	InstanceInfo(ctx context.Context) apimodels.GetInstanceResponse
}

type EndpointParams struct {
	Router               *echo.Echo
	InstanceInfoProvider InstanceInfoProvider
}

type Endpoint struct {
	router               *echo.Echo
	instanceInfoProvider InstanceInfoProvider
}

func NewEndpoint(params EndpointParams) *Endpoint {
	e := &Endpoint{
		router:               params.Router,
		instanceInfoProvider: params.InstanceInfoProvider,
	}

	// JSON group
	g := e.router.Group("/api/v1/agent")
	g.Use(middleware.SetContentType(echo.MIMEApplicationJSON))
	g.GET("/alive", e.alive)
	g.GET("/version", e.version)
	g.GET("/instance", e.instance)
	return e
}

// alive godoc
//
//	@ID			agent/alive
//	@Tags		Ops
//	@Produce	json
//	@Success	200	{object}	apimodels.IsAliveResponse
//	@Router		/api/v1/agent/alive [get]
func (e *Endpoint) alive(c echo.Context) error {
	return c.JSON(http.StatusOK, &apimodels.IsAliveResponse{
		Status: "OK",
	})
}

// version godoc
//
//	@ID			agent/version
//	@Summary	Returns the build version running on the server.
//	@Tags		Ops
//	@Produce	json
//	@Success	200	{object}	apimodels.GetVersionResponse
//	@Router		/api/v1/agent/version [get]
func (e *Endpoint) version(c echo.Context) error {
	return c.JSON(http.StatusOK, apimodels.GetVersionResponse{
		BuildVersionInfo: version.Get(),
	})
}

// instance godoc
//
//	@ID			agent/instance
//	@Summary	Returns the instance ID and the availability of its store and bus.
//	@Tags		Ops
//	@Produce	json
//	@Success	200	{object}	apimodels.GetInstanceResponse
//	@Router		/api/v1/agent/instance [get]
func (e *Endpoint) instance(c echo.Context) error {
	if e.instanceInfoProvider == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "instance info is not available")
	}
	return c.JSON(http.StatusOK, e.instanceInfoProvider.InstanceInfo(c.Request().Context()))
}
