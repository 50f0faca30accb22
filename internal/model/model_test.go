package model

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func intp(n int) *int { return &n }

func TestTicketCountsArithmetic(t *testing.T) {
	a := TicketCounts{Platinum: 2, Gold: 1}
	b := TicketCounts{Platinum: 1, Bronze: 3}

	assert.Equal(t, TicketCounts{Platinum: 3, Gold: 1, Bronze: 3}, a.Add(b))
	assert.Equal(t, TicketCounts{Platinum: 1, Gold: 1, Bronze: -3}, a.Sub(b))
	assert.Equal(t, 3, a.Total())
	assert.True(t, TicketCounts{}.IsZero())
	assert.False(t, a.IsZero())
	assert.Equal(t, "P2 G1 S0 B0", a.String())
}

func TestTicketCountsGetSet(t *testing.T) {
	var c TicketCounts
	for i, tier := range Tiers {
		c.Set(tier, i+1)
	}
	assert.Equal(t, TicketCounts{Platinum: 1, Gold: 2, Silver: 3, Bronze: 4}, c)
	assert.Equal(t, 3, c.Get(Silver))
	assert.Equal(t, 0, c.Get(Tier("vip")))

	c.Set(Tier("vip"), 9)
	assert.Equal(t, 10, c.Total())
}

func TestGameStartsAt(t *testing.T) {
	g := Game{Year: 2026, Month: 5, Day: 1, Hour: intp(19), Minute: intp(30)}
	assert.Equal(t, time.Date(2026, 5, 1, 19, 30, 0, 0, time.UTC), g.StartsAt())

	g.Minute = nil
	assert.Equal(t, time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC), g.StartsAt())
}

func TestGameOrdering(t *testing.T) {
	games := []Game{
		{ID: "c", Year: 2026, Month: 6, Day: 1},
		{ID: "b", Year: 2026, Month: 5, Day: 1, Hour: intp(20)},
		{ID: "a", Year: 2026, Month: 5, Day: 1, Hour: intp(20)},
		{ID: "d", Year: 2026, Month: 5, Day: 1},
	}
	sort.Slice(games, func(i, j int) bool { return games[i].Before(games[j]) })

	ids := make([]string, 0, len(games))
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []string{"d", "a", "b", "c"}, ids)
}
