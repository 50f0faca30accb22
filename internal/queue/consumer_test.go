package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

func TestFormatEventConfirmed(t *testing.T) {
	body, err := json.Marshal(PurchaseConfirmedEvent{
		PurchaseID:  "ABC",
		UserEmail:   "fan@example.com",
		GameID:      "g1",
		Opponent:    "Rivals",
		StartsAt:    "2026-05-01T19:30:00Z",
		Tickets:     model.TicketCounts{Gold: 2},
		AmountTotal: 300,
		ConfirmedAt: "2026-04-01T10:00:00Z",
	})
	require.NoError(t, err)

	line, err := FormatEvent(PurchaseConfirmedQueue, body)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(line, "\n"))
	assert.Contains(t, line, "purchase_id=ABC")
	assert.Contains(t, line, "tickets=P0 G2 S0 B0")
	assert.Contains(t, line, "total=300")
}

func TestFormatEventCancelledWithoutReplacement(t *testing.T) {
	body, err := json.Marshal(PurchaseCancelledEvent{PurchaseID: "ABC", Cancelled: model.TicketCounts{Bronze: 1}})
	require.NoError(t, err)

	line, err := FormatEvent(PurchaseCancelledQueue, body)
	require.NoError(t, err)
	assert.Contains(t, line, "cancelled=P0 G0 S0 B1")
	assert.Contains(t, line, "replacement=-")
}

func TestFormatEventRejectsBadInput(t *testing.T) {
	_, err := FormatEvent("other", []byte("{}"))
	assert.Error(t, err)

	_, err = FormatEvent(PurchaseConfirmedQueue, []byte("not json"))
	assert.Error(t, err)
}

func TestConsumerHandleAppendsLines(t *testing.T) {
	c := &Consumer{LogPath: filepath.Join(t.TempDir(), "logs", "booking.log")}
	body, err := json.Marshal(PurchaseConfirmedEvent{PurchaseID: "ONE"})
	require.NoError(t, err)

	require.NoError(t, c.handle(PurchaseConfirmedQueue, body))
	require.NoError(t, c.handle(PurchaseConfirmedQueue, body))

	data, err := os.ReadFile(c.LogPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "purchase_id=ONE"))
}

func TestAmountTotal(t *testing.T) {
	price := model.TicketCounts{Platinum: 400, Gold: 150, Silver: 80, Bronze: 40}
	q := model.TicketCounts{Platinum: 1, Bronze: 2}
	assert.Equal(t, 480, amountTotal(q, price))
}
