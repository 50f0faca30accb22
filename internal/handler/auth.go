package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-ticket-booking/internal/config"
	"github.com/iliyamo/game-ticket-booking/internal/service"
	"github.com/iliyamo/game-ticket-booking/internal/utils"
)

// AuthHandler serves identity endpoints.  Accounts and sign-in belong to
// the external identity provider; this API only reads the caller's record
// and, in development, mints tokens for local testing.
type AuthHandler struct {
	Cfg     config.Config
	Booking *service.BookingService
}

func NewAuthHandler(cfg config.Config, b *service.BookingService) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Booking: b}
}

type userResp struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type devTokenReq struct {
	Email string `json:"email"`
}

type tokenResp struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Me handles GET /v1/me.  It returns the caller's email and name; 404 when
// the identity provider has not registered the user with this service.
func (h *AuthHandler) Me(c echo.Context) error {
	email, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, err := h.Booking.GetUser(c.Request().Context(), email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, userResp{Email: u.Email, Name: u.Name})
}

// DevToken handles POST /v1/auth/dev-token {"email": "..."} and returns a
// signed access token for that email.  The route is only registered when
// APP_ENV is "dev".
func (h *AuthHandler) DevToken(c echo.Context) error {
	var body devTokenReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if !strings.Contains(email, "@") {
		return badRequest(c, "a valid email is required")
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal_error", "message": "could not sign token"})
	}
	return c.JSON(http.StatusOK, tokenResp{Token: tok.Token, Expires: tok.Exp})
}
