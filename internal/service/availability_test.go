package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

func TestRemainingFloorsAtZero(t *testing.T) {
	capacity := model.TicketCounts{Platinum: 2, Gold: 5, Silver: 1, Bronze: 0}
	sold := model.TicketCounts{Platinum: 2, Gold: 1, Silver: 3}
	assert.Equal(t, model.TicketCounts{Platinum: 0, Gold: 4, Silver: 0, Bronze: 0}, Remaining(capacity, sold))
}

func TestPurchasable(t *testing.T) {
	remaining := model.TicketCounts{Platinum: 10, Gold: 1, Silver: 10, Bronze: 10}

	assert.Equal(t, model.TicketCounts{Platinum: 6, Gold: 1, Silver: 6, Bronze: 6},
		Purchasable(remaining, 6, model.TicketCounts{}))
	// a tier's own selection does not count against itself
	assert.Equal(t, model.TicketCounts{Platinum: 6, Gold: 1, Silver: 2, Bronze: 2},
		Purchasable(remaining, 6, model.TicketCounts{Platinum: 4}))
	assert.Equal(t, model.TicketCounts{},
		Purchasable(model.TicketCounts{}, 6, model.TicketCounts{}))
	// over-selection never yields negative room
	assert.Equal(t, model.TicketCounts{Platinum: 2, Gold: 1, Silver: 0, Bronze: 0},
		Purchasable(remaining, 6, model.TicketCounts{Platinum: 4, Gold: 4}))
}

func TestValidateQuantities(t *testing.T) {
	assert.NoError(t, ValidateQuantities(model.TicketCounts{Gold: 3}))
	assert.ErrorIs(t, ValidateQuantities(model.TicketCounts{Silver: -2}), ErrInvalidRequest)
}

func TestSoldOutTiers(t *testing.T) {
	got := soldOutTiers(model.TicketCounts{Platinum: 2, Gold: 1, Bronze: 5}, model.TicketCounts{Platinum: 1, Gold: 1, Bronze: 4})
	assert.Equal(t, []model.Tier{model.Platinum, model.Bronze}, got)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, "sold_out", KindOf(&SoldOutError{Tiers: []model.Tier{model.Gold}}))
	assert.Equal(t, "limit_exceeded", KindOf(ErrLimitExceeded))
	assert.Equal(t, "internal_error", KindOf(errors.New("boom")))
	assert.Equal(t, "internal_error", KindOf(internal("op", errors.New("boom"))))
}

func TestConfirmationCode(t *testing.T) {
	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	q := model.TicketCounts{Platinum: 1}

	code := ConfirmationCode("fan@example.com", "g1", at, q)
	assert.Len(t, code, ConfirmationCodeLength)
	assert.Regexp(t, `^[A-Z0-9_-]+$`, code)
	assert.Equal(t, code, ConfirmationCode("fan@example.com", "g1", at, q))
	assert.NotEqual(t, code, ConfirmationCode("fan@example.com", "g1", at.Add(time.Nanosecond), q))
	assert.NotEqual(t, code, ConfirmationCode("fan@example.com", "g1", at, model.TicketCounts{Gold: 1}))
}
