package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is a plain liveness endpoint for load balancers and uptime checks.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
