package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guest-suite-booking/internal/calendar"
	"github.com/iliyamo/guest-suite-booking/internal/model"
	"github.com/iliyamo/guest-suite-booking/internal/service"
)

// requestTimeout bounds every store round trip made by a handler.
const requestTimeout = 5 * time.Second

// BookingHandler exposes the member-facing check, commit and mail flow.
type BookingHandler struct {
	Svc *service.BookingService
}

func NewBookingHandler(svc *service.BookingService) *BookingHandler {
	if svc == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Svc: svc}
}

// ----- DTOs -----

type checkReq struct {
	MemberID   string `json:"member_id" validate:"required,member_id"`
	MemberName string `json:"member_name" validate:"required"`
	Start      string `json:"start" validate:"required,day"`
	End        string `json:"end" validate:"required,day"`
}

// toRequest assumes the validator already accepted both dates.
func (r checkReq) toRequest() model.CheckRequest {
	start, _ := calendar.Parse(r.Start)
	end, _ := calendar.Parse(r.End)
	return model.CheckRequest{MemberID: r.MemberID, MemberName: r.MemberName, Start: start, End: end}
}

type commitReq struct {
	CheckToken string   `json:"check_token" validate:"required"`
	Current    checkReq `json:"current"`
	// Start/End select one of the offered ranges; empty means the request itself.
	Start string `json:"start" validate:"omitempty,day"`
	End   string `json:"end" validate:"omitempty,day"`
}

type mailReq struct {
	CheckToken string `json:"check_token" validate:"required"`
}

// Check evaluates a stay request and returns the tagged result with a
// check token that a later commit must present.
func (h *BookingHandler) Check(c echo.Context) error {
	var req checkReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Svc.Check(ctx, req.toRequest())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Commit books the selected range after re-checking it against the latest
// bookings.
func (h *BookingHandler) Commit(c echo.Context) error {
	var req commitReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if (req.Start == "") != (req.End == "") {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "start and end must be given together"})
	}
	in := service.CommitInput{CheckToken: req.CheckToken, Current: req.Current.toRequest()}
	if req.Start != "" {
		in.Selected.Start, _ = calendar.Parse(req.Start)
		in.Selected.End, _ = calendar.Parse(req.End)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	booking, err := h.Svc.Commit(ctx, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

// Mail renders the administrator inquiry for a checked request.
func (h *BookingHandler) Mail(c echo.Context) error {
	var req mailReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	msg, err := h.Svc.ComposeMail(ctx, req.CheckToken)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, msg)
}
