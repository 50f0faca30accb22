// seed-games loads games from a YAML file into the game table.  Games that
// already exist are skipped, so the command can be re-run safely.
//
//	seed-games --file games.yaml
//	seed-games --file games.yaml --dry-run
//
// Database settings come from the same DB_* variables (or .env file) the
// server uses.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/iliyamo/game-ticket-booking/internal/database"
	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/repository"
)

type seedFile struct {
	Games []model.Game `yaml:"games"`
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		file    string
		envFile string
		dryRun  bool
		ensure  bool
	)
	flags := pflag.NewFlagSet("seed-games", pflag.ContinueOnError)
	flags.StringVarP(&file, "file", "f", "games.yaml", "YAML file with a top-level games list")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file with DB_* settings (ignored when missing)")
	flags.BoolVar(&dryRun, "dry-run", false, "validate the file without touching the database")
	flags.BoolVar(&ensure, "ensure-schema", true, "create missing tables before seeding")
	if err := flags.Parse(args); err != nil {
		return err
	}

	games, err := loadGames(file)
	if err != nil {
		return err
	}
	if dryRun {
		fmt.Fprintf(out, "%d games valid\n", len(games))
		return nil
	}

	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}
	db, err := database.Open(os.Getenv("DB_USER"), os.Getenv("DB_PASS"), os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if ensure {
		if err := database.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	repo := repository.NewGameRepo(db)
	created, skipped := 0, 0
	for i := range games {
		err := repo.Create(ctx, &games[i])
		switch {
		case errors.Is(err, repository.ErrConflict):
			skipped++
		case err != nil:
			return fmt.Errorf("create game %s: %w", games[i].ID, err)
		default:
			created++
		}
	}
	log.Printf("seed-games: %d created, %d already present", created, skipped)
	fmt.Fprintf(out, "%d created, %d skipped\n", created, skipped)
	return nil
}

func loadGames(path string) ([]model.Game, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	seen := make(map[string]bool, len(f.Games))
	for _, g := range f.Games {
		if err := validateGame(g); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if seen[g.ID] {
			return nil, fmt.Errorf("%s: duplicate game id %q", path, g.ID)
		}
		seen[g.ID] = true
	}
	return f.Games, nil
}

func validateGame(g model.Game) error {
	if g.ID == "" || g.Opponent == "" {
		return fmt.Errorf("game %q: id and opponent are required", g.ID)
	}
	d := time.Date(g.Year, time.Month(g.Month), g.Day, 0, 0, 0, 0, time.UTC)
	if d.Year() != g.Year || int(d.Month()) != g.Month || d.Day() != g.Day {
		return fmt.Errorf("game %s: invalid date %d-%d-%d", g.ID, g.Year, g.Month, g.Day)
	}
	if (g.Hour != nil && (*g.Hour < 0 || *g.Hour > 23)) || (g.Minute != nil && (*g.Minute < 0 || *g.Minute > 59)) {
		return fmt.Errorf("game %s: invalid kick-off time", g.ID)
	}
	for _, t := range model.Tiers {
		if g.TicketCount.Get(t) < 0 || g.TicketPrice.Get(t) < 0 {
			return fmt.Errorf("game %s: negative %s count or price", g.ID, t)
		}
	}
	return nil
}
