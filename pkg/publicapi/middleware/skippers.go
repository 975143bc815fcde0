package middleware

import (
	"github.com/labstack/echo/v4"
)

func WebsocketSkipper(c echo.Context) bool {
	return c.Request().Header.Get("Upgrade") == "websocket"
}
