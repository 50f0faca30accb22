package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

func summary(id, opponent string, month int) GameSummary {
	return GameSummary{Game: model.Game{ID: id, Opponent: opponent, Year: 2026, Month: month, Day: 1}}
}

func TestFilterGames(t *testing.T) {
	games := []GameSummary{
		summary("past", "Rivals", 1),
		summary("a", "Rivals United", 6),
		summary("b", "City", 7),
		summary("c", "rivals reserves", 8),
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	got, total := FilterGames(games, GameQuery{Opponent: "RIVALS"}, now)
	assert.Equal(t, 2, total)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)

	got, total = FilterGames(games, GameQuery{Time: "any", PageSize: 3, Page: 2}, now)
	assert.Equal(t, 4, total)
	assert.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)

	got, total = FilterGames(games, GameQuery{Page: 9}, now)
	assert.Equal(t, 3, total)
	assert.Empty(t, got)
}

func TestGameQueryNormalize(t *testing.T) {
	q := GameQuery{Time: " ANY ", PageSize: 500}.Normalize()
	assert.Equal(t, "any", q.Time)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 100, q.PageSize)

	assert.Equal(t, "upcoming", GameQuery{Time: "soon"}.Normalize().Time)
}
