package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guest-suite-booking/internal/repository"
	"github.com/iliyamo/guest-suite-booking/internal/service"
)

// writeError maps service and repository errors onto status codes.  A
// *CommitError carries the re-evaluated result so the client can show the
// fresh outcome without another round trip.
func writeError(c echo.Context, err error) error {
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
	}
	body := echo.Map{"error": err.Error()}
	var ce *service.CommitError
	if errors.As(err, &ce) {
		body["result"] = ce.Result
	}

	switch {
	case errors.Is(err, service.ErrStaleRequest):
		body["code"] = "stale_request"
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrSnapshotChanged):
		body["code"] = "snapshot_changed"
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrPolicyRejected):
		body["code"] = "policy_rejected"
		return c.JSON(http.StatusUnprocessableEntity, body)
	case errors.Is(err, service.ErrOverrideRequired):
		body["code"] = "override_required"
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrNightsOccupied):
		body["code"] = "nights_occupied"
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, service.ErrAlreadyApproved):
		body["code"] = "already_approved"
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, body)
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, body)
	}
	c.Logger().Errorf("request failed: %v", err)
	// storage details stay in the log
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage error"})
}
