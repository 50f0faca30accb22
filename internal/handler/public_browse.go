package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-ticket-booking/internal/service"
)

// PublicHandler serves the unauthenticated browse API: the game listing,
// game details and availability.  Responses never contain purchaser data.
type PublicHandler struct {
	Booking *service.BookingService
	Now     func() time.Time
}

func NewPublicHandler(b *service.BookingService) *PublicHandler {
	if b == nil {
		panic("nil booking service passed to NewPublicHandler")
	}
	return &PublicHandler{Booking: b, Now: time.Now}
}

// ListGames handles GET /v1/games.  Query parameters:
//
//	opponent   case-insensitive substring of the opponent name
//	time       "upcoming" (default) or "any"
//	page       1-based page number (default 1)
//	page_size  items per page, 1..100 (default 20)
//
// Response: {"data": [...], "total": n, "page": p, "page_size": s}.  Each
// item carries the game and its remaining seats per tier.
func (h *PublicHandler) ListGames(c echo.Context) error {
	games, err := h.Booking.ListGames(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("page_size"))
	q := service.GameQuery{
		Opponent: c.QueryParam("opponent"),
		Time:     c.QueryParam("time"),
		Page:     page,
		PageSize: size,
	}.Normalize()
	items, total := service.FilterGames(games, q, h.Now().UTC())
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// GetGame handles GET /v1/games/:id and returns 404 for unknown games.
func (h *PublicHandler) GetGame(c echo.Context) error {
	g, err := h.Booking.GetGame(c.Request().Context(), c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, g)
}

// GetAvailability handles GET /v1/games/:id/availability.  The optional
// platinum, gold, silver and bronze query parameters describe the
// selection in progress; the response reports remaining seats and, per
// tier, how many more tickets that selection may still add.  Values are
// computed on every request and only advisory: the purchase re-checks them.
func (h *PublicHandler) GetAvailability(c echo.Context) error {
	selected, err := countsFromQuery(c)
	if err != nil {
		return badRequest(c, "ticket quantities must be integers")
	}
	a, err := h.Booking.ListAvailability(c.Request().Context(), c.Param("id"), selected)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, a)
}
