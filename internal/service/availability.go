package service

import (
	"fmt"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

// DefaultMaxTicketsPerPurchase caps the number of tickets, across all
// tiers, that one purchase may contain.
const DefaultMaxTicketsPerPurchase = 6

// Availability is the derived inventory of one game.
type Availability struct {
	GameID         string             `json:"gameId"`
	Remaining      model.TicketCounts `json:"remaining"`
	Purchasable    model.TicketCounts `json:"purchasable"`
	MaxPerPurchase int                `json:"maxPerPurchase"`
}

// Remaining returns capacity minus sold per tier, floored at zero.  The
// ledger invariant keeps sold <= capacity; the floor only protects readers
// from a game whose capacity was lowered by hand.
func Remaining(capacity, sold model.TicketCounts) model.TicketCounts {
	var out model.TicketCounts
	for _, t := range model.Tiers {
		n := capacity.Get(t) - sold.Get(t)
		if n < 0 {
			n = 0
		}
		out.Set(t, n)
	}
	return out
}

// Purchasable bounds each tier by what a single purchase may still add
// given the tickets already selected in the other tiers:
// min(remaining[t], max - selected in other tiers), floored at zero.  It
// is a selection aid only; capacity is re-checked when the purchase is
// committed.
func Purchasable(remaining model.TicketCounts, max int, selected model.TicketCounts) model.TicketCounts {
	var out model.TicketCounts
	total := selected.Total()
	for _, t := range model.Tiers {
		room := max - (total - selected.Get(t))
		n := min(remaining.Get(t), room)
		if n < 0 {
			n = 0
		}
		out.Set(t, n)
	}
	return out
}

// ValidateQuantities rejects negative quantities before anything touches
// the ledger.
func ValidateQuantities(q model.TicketCounts) error {
	for _, t := range model.Tiers {
		if q.Get(t) < 0 {
			return fmt.Errorf("%w: %s quantity is negative", ErrInvalidRequest, t)
		}
	}
	return nil
}

// soldOutTiers lists the tiers where requested exceeds remaining.
func soldOutTiers(requested, remaining model.TicketCounts) []model.Tier {
	var out []model.Tier
	for _, t := range model.Tiers {
		if requested.Get(t) > remaining.Get(t) {
			out = append(out, t)
		}
	}
	return out
}
