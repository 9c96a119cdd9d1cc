package router // router wires handlers and middleware onto the Echo instance

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guest-suite-booking/internal/handler"
)

// Handlers is the set of HTTP handlers the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Booking  *handler.BookingHandler
	Calendar *handler.CalendarHandler
	Members  *handler.MemberHandler
	Admin    *handler.AdminHandler
}

// Middleware carries the optional Redis-backed layers.  Either may be a
// pass-through when Redis is not configured.
type Middleware struct {
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

func (m Middleware) withDefaults() Middleware {
	pass := func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if m.RateLimit == nil {
		m.RateLimit = pass
	}
	if m.Cache == nil {
		m.Cache = pass
	}
	return m
}

// RegisterRoutes registers the health check; it needs no dependencies.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// Register mounts every route: health, the public member flow and the
// admin area.
func Register(e *echo.Echo, h Handlers, mw Middleware, jwtSecret string) {
	mw = mw.withDefaults()
	RegisterRoutes(e)
	RegisterPublic(e, h, mw)
	RegisterAdmin(e, h, jwtSecret)
}
