package router

import (
	"github.com/labstack/echo/v4"
)

// RegisterPublic mounts the unauthenticated member routes.  The check,
// commit, mail and login endpoints are rate limited; the calendar reads go
// through the response cache.
func RegisterPublic(e *echo.Echo, h Handlers, mw Middleware) {
	g := e.Group("/v1", mw.RateLimit)

	g.POST("/auth/login", h.Auth.Login)

	// ---- Availability ----
	g.POST("/availability/check", h.Booking.Check)
	g.POST("/availability/mail", h.Booking.Mail)
	g.POST("/reservations", h.Booking.Commit)

	// ---- Calendar (cached, purged on every write) ----
	e.GET("/v1/calendar", h.Calendar.Month, mw.Cache)
	e.GET("/v1/specials", h.Calendar.ListSpecials, mw.Cache)

	e.GET("/v1/members/suggest", h.Members.Suggest)
}
