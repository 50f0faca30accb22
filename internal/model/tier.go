package model

import "fmt"

// Tier is a seating category.  Every game sells the same four tiers; the
// order of Tiers is the order used for display, hashing and SQL columns.
type Tier string

const (
	Platinum Tier = "platinum"
	Gold     Tier = "gold"
	Silver   Tier = "silver"
	Bronze   Tier = "bronze"
)

// Tiers lists every tier from most to least expensive.
var Tiers = []Tier{Platinum, Gold, Silver, Bronze}

// TicketCounts holds one non-negative integer per tier.  It is used for
// capacities, purchased quantities, sold sums and remaining seats alike.
type TicketCounts struct {
	Platinum int `json:"platinum" yaml:"platinum"`
	Gold     int `json:"gold" yaml:"gold"`
	Silver   int `json:"silver" yaml:"silver"`
	Bronze   int `json:"bronze" yaml:"bronze"`
}

// Get returns the count stored for t.  Unknown tiers yield 0.
func (c TicketCounts) Get(t Tier) int {
	switch t {
	case Platinum:
		return c.Platinum
	case Gold:
		return c.Gold
	case Silver:
		return c.Silver
	case Bronze:
		return c.Bronze
	}
	return 0
}

// Set stores n for tier t.  Unknown tiers are ignored.
func (c *TicketCounts) Set(t Tier, n int) {
	switch t {
	case Platinum:
		c.Platinum = n
	case Gold:
		c.Gold = n
	case Silver:
		c.Silver = n
	case Bronze:
		c.Bronze = n
	}
}

// Total sums all tiers.
func (c TicketCounts) Total() int {
	return c.Platinum + c.Gold + c.Silver + c.Bronze
}

// IsZero reports whether every tier is zero.
func (c TicketCounts) IsZero() bool {
	return c == TicketCounts{}
}

// Add returns c + o per tier.
func (c TicketCounts) Add(o TicketCounts) TicketCounts {
	return TicketCounts{
		Platinum: c.Platinum + o.Platinum,
		Gold:     c.Gold + o.Gold,
		Silver:   c.Silver + o.Silver,
		Bronze:   c.Bronze + o.Bronze,
	}
}

// Sub returns c - o per tier.  The result may be negative; callers that need
// a floor apply it themselves.
func (c TicketCounts) Sub(o TicketCounts) TicketCounts {
	return TicketCounts{
		Platinum: c.Platinum - o.Platinum,
		Gold:     c.Gold - o.Gold,
		Silver:   c.Silver - o.Silver,
		Bronze:   c.Bronze - o.Bronze,
	}
}

// String renders the counts in tier order, e.g. "P2 G1 S0 B0".
func (c TicketCounts) String() string {
	return fmt.Sprintf("P%d G%d S%d B%d", c.Platinum, c.Gold, c.Silver, c.Bronze)
}
