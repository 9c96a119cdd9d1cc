package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/guest-suite-booking/internal/config"
	"github.com/iliyamo/guest-suite-booking/internal/middleware"
	"github.com/iliyamo/guest-suite-booking/internal/utils"
)

// adminSubject is the token subject for the shared admin login.
const adminSubject = "admin"

// AuthHandler guards the admin area with the shared password.
type AuthHandler struct {
	Cfg config.Config
	Now func() time.Time
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Now: time.Now}
}

// ----- DTOs -----

type loginReq struct {
	Password string `json:"password" validate:"required"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Login verifies the admin password against the configured bcrypt hash and
// returns a short-lived access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	if h.Cfg.AdminPasswordHash == "" || !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, adminSubject, middleware.RoleAdmin, h.Cfg.AccessTTLMin, h.Now())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"role":   middleware.RoleAdmin,
		"access": tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me echoes the authenticated identity.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"subject": middleware.Subject(c),
		"role":    c.Get("role"),
	})
}
