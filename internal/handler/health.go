package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness probe for load balancers and compose health checks.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
