package model

import "time"

// Game represents a ticketed home game.  Capacity per tier is fixed when the
// game is created by the admin tooling and is never changed by bookings;
// remaining seats are always derived from the purchase ledger.
//
// Fields:
//
//	ID             – primary key identifier.
//	Opponent       – name of the visiting team.
//	OpponentImgURL – logo of the visiting team.
//	Year/Month/Day – calendar date of the game.
//	Hour/Minute    – kick-off time, nil when not announced yet.
//	TicketCount    – total capacity per tier.
//	TicketPrice    – unit price per tier in cents.
type Game struct {
	ID             string       `json:"id" yaml:"id"`                         // game.id
	Opponent       string       `json:"opponent" yaml:"opponent"`             // game.opponent
	OpponentImgURL string       `json:"opponentImgUrl" yaml:"opponentImgUrl"` // game.opponent_img_url
	Year           int          `json:"year" yaml:"year"`                     // game.year
	Month          int          `json:"month" yaml:"month"`                   // game.month
	Day            int          `json:"day" yaml:"day"`                       // game.day
	Hour           *int         `json:"hour,omitempty" yaml:"hour"`           // game.hour (nullable)
	Minute         *int         `json:"minute,omitempty" yaml:"minute"`       // game.minute (nullable)
	TicketCount    TicketCounts `json:"ticketCount" yaml:"ticketCount"`       // game.*_count
	TicketPrice    TicketCounts `json:"ticketPrice" yaml:"ticketPrice"`       // game.*_price
}

// StartsAt returns the kick-off time in UTC.  When the hour or minute is
// unknown it falls back to midnight of the game day.
func (g Game) StartsAt() time.Time {
	h, m := 0, 0
	if g.Hour != nil {
		h = *g.Hour
	}
	if g.Minute != nil {
		m = *g.Minute
	}
	return time.Date(g.Year, time.Month(g.Month), g.Day, h, m, 0, 0, time.UTC)
}

// Before orders games ascending by date and time, then by ID.
func (g Game) Before(o Game) bool {
	a, b := g.StartsAt(), o.StartsAt()
	if !a.Equal(b) {
		return a.Before(b)
	}
	return g.ID < o.ID
}
