package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// ContextUserEmail is the echo.Context key JWTAuth stores the caller's
// normalised email under.
const ContextUserEmail = "user_email"

// UserEmail returns the authenticated caller's email, or "" when the
// request did not pass through JWTAuth.
func UserEmail(c echo.Context) string {
	if s, ok := c.Get(ContextUserEmail).(string); ok {
		return s
	}
	return ""
}

// subjectOrGuest identifies the caller for rate-limit keys.
func subjectOrGuest(c echo.Context) string {
	if s := UserEmail(c); s != "" {
		return s
	}
	return "guest"
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
