package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seed = `games:
  - id: 2026-05-01-rivals
    opponent: Rivals
    year: 2026
    month: 5
    day: 1
    hour: 19
    minute: 30
    ticketCount: {platinum: 20, gold: 100, silver: 200, bronze: 400}
    ticketPrice: {platinum: 40000, gold: 15000, silver: 8000, bronze: 4000}
  - id: 2026-05-08-city
    opponent: City
    year: 2026
    month: 5
    day: 8
    ticketCount: {gold: 10}
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "games.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGames(t *testing.T) {
	games, err := loadGames(writeSeed(t, seed))
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "Rivals", games[0].Opponent)
	require.NotNil(t, games[0].Hour)
	assert.Equal(t, 19, *games[0].Hour)
	assert.Equal(t, 100, games[0].TicketCount.Gold)
	assert.Equal(t, 4000, games[0].TicketPrice.Bronze)
	assert.Nil(t, games[1].Hour)
	assert.Equal(t, 10, games[1].TicketCount.Gold)
}

func TestLoadGamesRejectsInvalid(t *testing.T) {
	for name, content := range map[string]string{
		"bad date":     "games:\n  - {id: a, opponent: X, year: 2026, month: 2, day: 30}\n",
		"negative":     "games:\n  - {id: a, opponent: X, year: 2026, month: 2, day: 1, ticketCount: {gold: -1}}\n",
		"duplicate id": "games:\n  - {id: a, opponent: X, year: 2026, month: 2, day: 1}\n  - {id: a, opponent: Y, year: 2026, month: 2, day: 2}\n",
		"no opponent":  "games:\n  - {id: a, year: 2026, month: 2, day: 1}\n",
		"bad hour":     "games:\n  - {id: a, opponent: X, year: 2026, month: 2, day: 1, hour: 24}\n",
		"not yaml":     "games: [",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := loadGames(writeSeed(t, content))
			assert.Error(t, err)
		})
	}
}

func TestRunDryRun(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"--file", writeSeed(t, seed), "--dry-run"}, &out))
	assert.Equal(t, "2 games valid\n", out.String())
}
