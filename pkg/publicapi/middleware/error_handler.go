package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dsx-project/dsx/pkg/models"
	"github.com/dsx-project/dsx/pkg/publicapi/apimodels"
)

const (
	serverComponent  = "APIServer"
	unknownComponent = "Unknown"
)

// CustomHTTPErrorHandler writes every error surfacing from a route as an
// APIError body. HEAD requests only get the status code.
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := toAPIError(err, c.Echo().Debug)
	apiErr.RequestID = c.Request().Header.Get(echo.HeaderXRequestID)
	if apiErr.RequestID == "" {
		apiErr.RequestID = c.Response().Header().Get(echo.HeaderXRequestID)
	}

	var responseErr error
	if c.Request().Method == http.MethodHead {
		responseErr = c.NoContent(apiErr.HTTPStatusCode)
	} else {
		responseErr = c.JSON(apiErr.HTTPStatusCode, apiErr)
	}
	if responseErr != nil {
		log.Ctx(c.Request().Context()).Error().Err(responseErr).
			Str("original_error", err.Error()).
			Msg("Failed to send error response")
	}
}

func toAPIError(err error, debug bool) *apimodels.APIError {
	var baseErr *models.BaseError
	if errors.As(err, &baseErr) {
		return apimodels.FromBaseError(baseErr)
	}

	// echo's own errors: unknown routes, oversized bodies, bad binds
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, _ := httpErr.Message.(string)
		if debug && httpErr.Internal != nil {
			message += ". " + httpErr.Internal.Error()
		}
		apiErr := apimodels.NewAPIError(httpErr.Code, message)
		apiErr.Component = serverComponent
		switch httpErr.Code {
		case http.StatusNotFound:
			apiErr.Code = string(models.NotFoundError)
		case http.StatusBadRequest:
			apiErr.Code = string(models.BadRequestError)
		default:
			apiErr.Code = string(models.InternalError)
		}
		return apiErr
	}

	message := "Internal server error"
	if debug {
		message += ". " + err.Error()
	}
	apiErr := apimodels.NewAPIError(http.StatusInternalServerError, message)
	apiErr.Code = string(models.InternalError)
	apiErr.Component = unknownComponent
	return apiErr
}
