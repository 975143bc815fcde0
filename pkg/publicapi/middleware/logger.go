package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddelware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// ContextLogger attaches logger to the request context, so handlers and the
// websocket connections they start can use log.Ctx.
func ContextLogger(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(logger.WithContext(req.Context())))
			return next(c)
		}
	}
}

// RequestLogger logs one line per request at logLevel, raised to warn for
// client errors and to error for server errors. Websocket upgrades are not
// logged here.
func RequestLogger(logger zerolog.Logger, logLevel zerolog.Level) echo.MiddlewareFunc {
	return echomiddelware.RequestLoggerWithConfig(echomiddelware.RequestLoggerConfig{
		Skipper:      WebsocketSkipper,
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogUserAgent: true,
		LogReferer:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddelware.RequestLoggerValues) error {
			level := logLevel
			if v.Status >= http.StatusInternalServerError && level < zerolog.ErrorLevel {
				level = zerolog.ErrorLevel
			} else if v.Status >= http.StatusBadRequest && level < zerolog.WarnLevel {
				level = zerolog.WarnLevel
			}
			event := logger.WithLevel(level).
				Str("Method", v.Method).
				Str("URI", v.URI).
				Str("RemoteAddr", v.RemoteIP).
				Int("StatusCode", v.Status).
				Int64("Size", c.Response().Size).
				Dur("Duration", v.Latency).
				Str("Referer", v.Referer).
				Str("UserAgent", v.UserAgent).
				Str("RequestID", v.RequestID)
			if v.Error != nil {
				event = event.Err(v.Error)
			}
			event.Send()
			return nil
		},
	})
}
