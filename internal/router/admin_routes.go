package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guest-suite-booking/internal/middleware"
)

// RegisterAdmin mounts the manager routes under /v1/admin.  All of them
// require a valid admin token.
func RegisterAdmin(e *echo.Echo, h Handlers, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)

	g.GET("/me", h.Auth.Me)

	// ---- Bookings ----
	g.GET("/bookings", h.Admin.ListBookings)
	g.GET("/bookings/export", h.Admin.ExportBookings)
	g.DELETE("/bookings/:id", h.Admin.DeleteBooking)
	g.GET("/usage", h.Admin.Usage)

	// ---- Nights ----
	g.POST("/nights/release", h.Admin.ReleaseNights)
	g.POST("/nights/reassign", h.Admin.ReassignNight)
	g.POST("/nights/assign", h.Admin.AssignNights)

	g.POST("/approvals", h.Admin.Approval)

	// ---- Members ----
	g.GET("/members", h.Members.List)
	g.POST("/members", h.Members.Create)
	g.DELETE("/members/:id", h.Members.Delete)
	g.POST("/members/import", h.Members.Import)
	g.GET("/members/export", h.Members.Export)

	// ---- Special periods ----
	g.GET("/specials", h.Calendar.ListSpecials)
	g.POST("/specials", h.Calendar.CreateSpecial)
	g.DELETE("/specials/:id", h.Calendar.DeleteSpecial)
}
