package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/service"
)

// CustomerHandler serves the authenticated booking endpoints.  All methods
// assume JWTAuth ran first and return 401 when no caller identity is
// present.  The identity is passed explicitly into every service call.
type CustomerHandler struct {
	Booking *service.BookingService
}

func NewCustomerHandler(b *service.BookingService) *CustomerHandler {
	if b == nil {
		panic("nil booking service passed to NewCustomerHandler")
	}
	return &CustomerHandler{Booking: b}
}

type purchaseReq struct {
	Tickets model.TicketCounts `json:"tickets"`
}

type cancelReq struct {
	Tickets      model.TicketCounts `json:"tickets"`
	Acknowledged bool               `json:"acknowledged"`
	Note         string             `json:"note"`
}

// Purchase handles POST /v1/games/:id/purchase.  The body is
// {"tickets": {"platinum": n, "gold": n, "silver": n, "bronze": n}}.  On
// success it returns 201 with {"id": confirmation code}.  A shortfall in
// any tier returns 409 sold_out with the tiers concerned and the current
// remaining counts; empty or oversized selections return 422.
func (h *CustomerHandler) Purchase(c echo.Context) error {
	email, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body purchaseReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	id, err := h.Booking.Purchase(c.Request().Context(), c.Param("id"), email, body.Tickets)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// ListPurchases handles GET /v1/purchases.  It returns the caller's valid
// purchases joined with their games, newest first.
func (h *CustomerHandler) ListPurchases(c echo.Context) error {
	email, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Booking.ListPurchasesByUser(c.Request().Context(), email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPurchase handles GET /v1/purchases/:id.  Cancelled entries are
// returned too so a confirmation link keeps working after a refund.  404
// when the code is unknown, 403 when it belongs to someone else.
func (h *CustomerHandler) GetPurchase(c echo.Context) error {
	email, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	p, err := h.Booking.GetPurchaseForUser(c.Request().Context(), c.Param("id"), email)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// CancelPurchase handles POST /v1/purchases/:id/cancel with body
// {"tickets": {...}, "acknowledged": true, "note": "..."}.  Tickets lists
// how many to refund per tier.  It returns 200 with the cancelled counts
// and, for a partial refund, the replacement purchase that now holds the
// retained tickets.
func (h *CustomerHandler) CancelPurchase(c echo.Context) error {
	email, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body cancelReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	res, err := h.Booking.Cancel(c.Request().Context(), service.CancelRequest{
		PurchaseID:   c.Param("id"),
		UserEmail:    email,
		Tickets:      body.Tickets,
		Acknowledged: body.Acknowledged,
		Note:         body.Note,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
