package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guest-suite-booking/internal/service"
)

// AdminHandler wraps the manager corrections.  Every route sits behind
// JWTAuth and RequireRole(ADMIN).
type AdminHandler struct {
	Svc *service.AdminService
}

func NewAdminHandler(svc *service.AdminService) *AdminHandler {
	if svc == nil {
		panic("nil admin service passed to NewAdminHandler")
	}
	return &AdminHandler{Svc: svc}
}

// ----- DTOs -----

type releaseReq struct {
	Nights []string `json:"nights" validate:"required,min=1,dive,day"`
}

type reassignReq struct {
	Night    string `json:"night" validate:"required,day"`
	MemberID string `json:"member_id" validate:"required,member_id"`
}

type assignReq struct {
	Nights          []string `json:"nights" validate:"required,min=1,dive,day"`
	MemberID        string   `json:"member_id" validate:"required,member_id"`
	ConfirmOverride bool     `json:"confirm_override"`
}

type approvalReq struct {
	Payload         string `json:"payload" validate:"required"`
	Decision        string `json:"decision" validate:"omitempty,oneof=approve reject"`
	ConfirmOverride bool   `json:"confirm_override"`
}

func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Svc.ListBookings(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// ExportBookings returns the same list as a downloadable JSON file.
func (h *AdminHandler) ExportBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	list, err := h.Svc.ListBookings(ctx)
	if err != nil {
		return writeError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="bookings.json"`)
	return c.JSONPretty(http.StatusOK, list, "  ")
}

func (h *AdminHandler) DeleteBooking(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.Svc.DeleteBooking(ctx, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ReleaseNights handles POST /v1/admin/nights/release.
func (h *AdminHandler) ReleaseNights(c echo.Context) error {
	var req releaseReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Svc.ReleaseNights(ctx, req.Nights)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ReassignNight handles POST /v1/admin/nights/reassign.
func (h *AdminHandler) ReassignNight(c echo.Context) error {
	var req reassignReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Svc.ReassignNight(ctx, req.Night, req.MemberID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// AssignNights handles POST /v1/admin/nights/assign.  A 409 with code
// override_required asks the client to resend with confirm_override.
func (h *AdminHandler) AssignNights(c echo.Context) error {
	var req assignReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Svc.AssignNights(ctx, service.AssignInput{
		Nights:          req.Nights,
		MemberID:        req.MemberID,
		ConfirmOverride: req.ConfirmOverride,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Usage handles GET /v1/admin/usage?month=yyyy-MM: nights per member.
func (h *AdminHandler) Usage(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	report, err := h.Svc.MonthlyUsage(ctx, strings.TrimSpace(c.QueryParam("month")))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// Approval handles POST /v1/admin/approvals, the target of the approve and
// reject links in an inquiry mail.
func (h *AdminHandler) Approval(c echo.Context) error {
	var req approvalReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.Svc.ApproveRequest(ctx, service.ApprovalInput{
		Payload:         req.Payload,
		Decision:        req.Decision,
		ConfirmOverride: req.ConfirmOverride,
	})
	if err != nil {
		return writeError(c, err)
	}
	if req.Decision == service.DecisionReject {
		return c.JSON(http.StatusOK, echo.Map{"decision": service.DecisionReject})
	}
	return c.JSON(http.StatusCreated, res)
}
