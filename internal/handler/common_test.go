package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/service"
)

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		service.ErrNotFound:         http.StatusNotFound,
		service.ErrForbidden:        http.StatusForbidden,
		service.ErrConflict:         http.StatusConflict,
		service.ErrAlreadyCancelled: http.StatusConflict,
		service.ErrEmptySelection:   http.StatusUnprocessableEntity,
		service.ErrInvalidQuantity:  http.StatusUnprocessableEntity,
		service.ErrLimitExceeded:    http.StatusUnprocessableEntity,
		service.ErrNotAcknowledged:  http.StatusUnprocessableEntity,
		service.ErrInvalidRequest:   http.StatusBadRequest,
		service.ErrInternal:         http.StatusInternalServerError,
		errors.New("unknown"):       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusOf(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
	assert.Equal(t, http.StatusConflict, statusOf(&service.SoldOutError{Tiers: []model.Tier{model.Gold}}))
}

func TestEveryKindHasAMessage(t *testing.T) {
	for _, err := range []error{
		service.ErrNotFound, service.ErrConflict, service.ErrSoldOut, service.ErrEmptySelection,
		service.ErrInvalidQuantity, service.ErrInvalidRequest, service.ErrLimitExceeded,
		service.ErrNotAcknowledged, service.ErrForbidden, service.ErrAlreadyCancelled, service.ErrInternal,
	} {
		assert.NotEmpty(t, messages[service.KindOf(err)], err.Error())
	}
}
