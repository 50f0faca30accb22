// Package handler exposes the HTTP handlers of the booking API.
package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/game-ticket-booking/internal/middleware"
	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/service"
)

var errUnauthenticated = errors.New("no authenticated user in context")

// currentUser returns the caller's email stored by the JWT middleware.
func currentUser(c echo.Context) (string, error) {
	if email := middleware.UserEmail(c); email != "" {
		return email, nil
	}
	return "", errUnauthenticated
}

// statusOf maps a service error kind to an HTTP status code.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrSoldOut),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrAlreadyCancelled):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptySelection),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrLimitExceeded),
		errors.Is(err, service.ErrNotAcknowledged):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// messages are shown to end users; each tells them what to do next.
var messages = map[string]string{
	"not_found":         "the requested game or purchase does not exist",
	"forbidden":         "this purchase belongs to another account",
	"conflict":          "the request collided with an existing purchase, please retry",
	"sold_out":          "not enough tickets left in the selected tiers, adjust your selection",
	"empty_selection":   "select at least one ticket",
	"invalid_quantity":  "cancel between zero and the purchased number of tickets per tier",
	"invalid_request":   "the request is malformed",
	"limit_exceeded":    "too many tickets in one purchase",
	"not_acknowledged":  "confirm that you understand the refund terms",
	"already_cancelled": "this purchase has already been cancelled",
	"internal_error":    "something went wrong on our side, please try again later",
}

// fail writes the error body for err.  Internal errors are logged with
// their cause and reported without it.
func fail(c echo.Context, err error) error {
	kind := service.KindOf(err)
	status := statusOf(err)
	body := echo.Map{"error": kind, "message": messages[kind]}
	if status == http.StatusInternalServerError {
		log.Printf("handler: %s %s: %v", c.Request().Method, c.Path(), err)
	} else if status != http.StatusNotFound && status != http.StatusForbidden {
		body["detail"] = err.Error()
	}
	var soldOut *service.SoldOutError
	if errors.As(err, &soldOut) {
		body["tiers"] = soldOut.Tiers
		body["remaining"] = soldOut.Remaining
	}
	return c.JSON(status, body)
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": msg})
}

// countsFromQuery reads ?platinum=&gold=&silver=&bronze= with missing
// values read as zero.
func countsFromQuery(c echo.Context) (model.TicketCounts, error) {
	var q model.TicketCounts
	for _, t := range model.Tiers {
		raw := c.QueryParam(string(t))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, err
		}
		q.Set(t, n)
	}
	return q, nil
}
