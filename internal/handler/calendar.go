package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/service"
)

// CalendarHandler serves the public month view and the holiday windows,
// and the admin edits of those windows.
type CalendarHandler struct {
	Specials *service.SpecialService
	Loc      *time.Location
	Now      func() time.Time
}

func NewCalendarHandler(specials *service.SpecialService, loc *time.Location) *CalendarHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &CalendarHandler{Specials: specials, Loc: loc, Now: time.Now}
}

type specialReq struct {
	Type  string `json:"type" validate:"omitempty,oneof=holiday"`
	Label string `json:"label" validate:"required"`
	Start string `json:"start" validate:"required,day"`
	End   string `json:"end" validate:"required,day"`
}

// Month handles GET /v1/calendar?month=yyyy-MM; the month defaults to the
// current one.
func (h *CalendarHandler) Month(c echo.Context) error {
	month := strings.TrimSpace(c.QueryParam("month"))
	if month == "" {
		month = calendar.Today(h.Now(), h.Loc).MonthKey()
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	days, err := h.Specials.MonthView(ctx, month)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"month": month, "days": days})
}

// ListSpecials handles GET /v1/specials and GET /v1/admin/specials.
func (h *CalendarHandler) ListSpecials(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Specials.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// CreateSpecial handles POST /v1/admin/specials.
func (h *CalendarHandler) CreateSpecial(c echo.Context) error {
	var req specialReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	start, _ := calendar.Parse(req.Start)
	end, _ := calendar.Parse(req.End)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sp, err := h.Specials.Add(ctx, model.SpecialPeriod{Type: req.Type, Label: req.Label, Start: start, End: end})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, sp)
}

// DeleteSpecial handles DELETE /v1/admin/specials/:id.
func (h *CalendarHandler) DeleteSpecial(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Specials.Delete(ctx, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
