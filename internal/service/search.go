package service

import (
	"strings"
	"time"
)

// GameQuery filters and pages the game listing.
//
// Time is one of "upcoming" (default: games starting now or later) or
// "any".  Opponent matches case-insensitively as a substring.  Page starts
// at 1; PageSize is clamped to [1, 100].
type GameQuery struct {
	Opponent string
	Time     string
	Page     int
	PageSize int
}

// Normalize fills defaults and clamps paging.
func (q GameQuery) Normalize() GameQuery {
	q.Opponent = strings.TrimSpace(q.Opponent)
	q.Time = strings.ToLower(strings.TrimSpace(q.Time))
	if q.Time != "any" {
		q.Time = "upcoming"
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	return q
}

// FilterGames applies q to games, which must already be in date order, and
// returns the requested page plus the number of matches before paging.
func FilterGames(games []GameSummary, q GameQuery, now time.Time) ([]GameSummary, int) {
	q = q.Normalize()
	needle := strings.ToLower(q.Opponent)
	matched := make([]GameSummary, 0, len(games))
	for _, g := range games {
		if needle != "" && !strings.Contains(strings.ToLower(g.Opponent), needle) {
			continue
		}
		if q.Time == "upcoming" && g.StartsAt().Before(now) {
			continue
		}
		matched = append(matched, g)
	}
	total := len(matched)
	start := (q.Page - 1) * q.PageSize
	if start >= total {
		return []GameSummary{}, total
	}
	end := min(start+q.PageSize, total)
	return matched[start:end], total
}
