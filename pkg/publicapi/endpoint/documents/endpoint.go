// Package documents serves the CRUD surface of one resource kind. Writes go
// through the sync engine with the Api origin, reads go straight to the
// store.
package documents

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/docstore"
	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/middleware"
	"github.com/dsx-project/dsx/pkg/syncengine"
)

const DefaultRoutingPrefix = "/users"

type EndpointParams struct {
	Router        *echo.Echo
	RoutingPrefix string
	Engine        syncengine.IntentHandler
	Store         docstore.Store
}

type Endpoint struct {
	router *echo.Echo
	engine syncengine.IntentHandler
	store  docstore.Store
}

func NewEndpoint(params EndpointParams) (*Endpoint, error) {
	if params.Router == nil || params.Engine == nil || params.Store == nil {
		return nil, errors.New("documents endpoint requires a router, an engine and a store")
	}
	prefix := params.RoutingPrefix
	if prefix == "" {
		prefix = DefaultRoutingPrefix
	}
	prefix = "/" + strings.Trim(prefix, "/")

	e := &Endpoint{
		router: params.Router,
		engine: params.Engine,
		store:  params.Store,
	}

	g := e.router.Group(prefix)
	g.Use(middleware.SetContentType(echo.MIMEApplicationJSON))
	g.POST("/create", e.create)
	g.GET("/readall", e.readAll)
	g.GET("/read/:uuid", e.read)
	g.POST("/update", e.update)
	g.DELETE("/delete/:uuid", e.delete)
	g.DELETE("/deleteall", e.deleteAll)
	return e, nil
}

// create stores the document and announces it. A store outage is not
// reported to the caller.
func (e *Endpoint) create(c echo.Context) error {
	doc, err := bindDocument(c)
	if err != nil {
		return err
	}
	if err := e.handle(c, models.Intent{Op: models.OpCreate, Key: doc.Key, Attributes: doc.Attributes}); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, doc)
}

func (e *Endpoint) readAll(c echo.Context) error {
	ctx := c.Request().Context()
	docs, err := e.store.FindAll(ctx)
	if err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("serving empty document list")
		docs = []models.Document{}
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return c.JSON(http.StatusOK, docs)
}

func (e *Endpoint) read(c echo.Context) error {
	ctx := c.Request().Context()
	key := c.Param("uuid")
	doc, err := e.store.FindOne(ctx, key)
	if err != nil {
		if !docstore.IsNotFound(err) {
			log.Ctx(ctx).Debug().Err(err).Str("Key", key).Msg("read failed, reporting not found")
		}
		return models.NewBaseError("document %s not found", key).
			WithCode(models.NotFoundError).
			WithComponent("DocumentsEndpoint")
	}
	return c.JSON(http.StatusOK, doc)
}

// update merges the non-null fields of the body into the stored document
// and returns the stored result, or null when there is none.
func (e *Endpoint) update(c echo.Context) error {
	doc, err := bindDocument(c)
	if err != nil {
		return err
	}
	if err := e.handle(c, models.Intent{Op: models.OpUpdate, Key: doc.Key, Attributes: doc.Attributes}); err != nil {
		return err
	}
	stored, err := e.store.FindOne(c.Request().Context(), doc.Key)
	if err != nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, stored)
}

func (e *Endpoint) delete(c echo.Context) error {
	key := c.Param("uuid")
	if err := e.handle(c, models.Intent{Op: models.OpDelete, Key: key}); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, key)
}

func (e *Endpoint) deleteAll(c echo.Context) error {
	if err := e.handle(c, models.Intent{Op: models.OpDeleteAll}); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// handle runs an Api intent. Only malformed intents reach the caller, every
// other failure has been logged by the engine.
func (e *Endpoint) handle(c echo.Context, intent models.Intent) error {
	intent.Origin = models.OriginAPI
	err := e.engine.Handle(c.Request().Context(), intent)
	if err != nil && models.IsErrMalformedIntent(err) {
		return err
	}
	return nil
}

func bindDocument(c echo.Context) (models.Document, error) {
	var fields map[string]interface{}
	if err := c.Bind(&fields); err != nil {
		return models.Document{}, err
	}
	if fields == nil {
		return models.Document{}, models.NewErrMalformedIntent("request body must be a JSON object")
	}
	return models.DocumentFromFields(fields)
}
