// Package queue defines the booking events exchanged over RabbitMQ together
// with the publisher and the background consumer that handle them.
package queue

import "github.com/iliyamo/game-ticket-booking/internal/model"

// Queue names.  Both queues are durable and use the default exchange with
// the queue name as routing key.
const (
	PurchaseConfirmedQueue = "purchase.confirmed"
	PurchaseCancelledQueue = "purchase.cancelled"
)

// PurchaseConfirmedEvent is published after a purchase commits.  It carries
// enough of the game to be logged without querying the database.
type PurchaseConfirmedEvent struct {
	PurchaseID  string             `json:"purchase_id"`
	UserEmail   string             `json:"user_email"`
	GameID      string             `json:"game_id"`
	Opponent    string             `json:"opponent"`
	StartsAt    string             `json:"starts_at"`
	Tickets     model.TicketCounts `json:"tickets"`
	AmountTotal int                `json:"amount_total"`
	ConfirmedAt string             `json:"confirmed_at"`
}

// PurchaseCancelledEvent is published after a cancellation commits.
// ReplacementID is empty when the whole purchase was refunded.
type PurchaseCancelledEvent struct {
	PurchaseID    string             `json:"purchase_id"`
	UserEmail     string             `json:"user_email"`
	GameID        string             `json:"game_id"`
	Cancelled     model.TicketCounts `json:"cancelled"`
	Retained      model.TicketCounts `json:"retained"`
	ReplacementID string             `json:"replacement_id,omitempty"`
	CancelledAt   string             `json:"cancelled_at"`
}

// amountTotal prices a selection with the game's per-tier prices.
func amountTotal(q, price model.TicketCounts) int {
	total := 0
	for _, t := range model.Tiers {
		total += q.Get(t) * price.Get(t)
	}
	return total
}
