package middleware

// identity.go holds the helpers shared by the JWT, rate limit and cache
// middleware for reading who is calling.

import (
	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ctxSubject = "user_id"
	ctxRole    = "role"
)

// clientIdentity returns the authenticated subject, or "anon" for public
// callers.  Members never log in, so public traffic is told apart by IP.
func clientIdentity(c echo.Context) string {
	if s, ok := c.Get(ctxSubject).(string); ok && s != "" {
		return s
	}
	return "anon"
}

// Subject returns the subject claim of the current admin token, if any.
func Subject(c echo.Context) string {
	s, _ := c.Get(ctxSubject).(string)
	return s
}
