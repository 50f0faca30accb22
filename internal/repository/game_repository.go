package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

// gameColumns lists the game columns in the order scanGame expects.
const gameColumns = `id, opponent, opponent_img_url, year, month, day, hour, minute,
       platinum_count, gold_count, silver_count, bronze_count,
       platinum_price, gold_price, silver_price, bronze_price`

// queryer is the subset of *sql.DB and *sql.Tx used by the repositories so
// that the same scan helpers serve both pooled and transactional reads.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// GameRepo manages persistence for games.  Games are written only by the
// admin tooling; the booking flow reads them and, while purchasing, locks
// the game row to serialise concurrent buyers of the same game.
type GameRepo struct {
	db *sql.DB
}

// NewGameRepo constructs a GameRepo with the given DB handle.
func NewGameRepo(db *sql.DB) *GameRepo {
	return &GameRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.
func (r *GameRepo) DB() *sql.DB {
	return r.db
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*model.Game, error) {
	var g model.Game
	var hour, minute sql.NullInt32
	err := s.Scan(
		&g.ID, &g.Opponent, &g.OpponentImgURL, &g.Year, &g.Month, &g.Day, &hour, &minute,
		&g.TicketCount.Platinum, &g.TicketCount.Gold, &g.TicketCount.Silver, &g.TicketCount.Bronze,
		&g.TicketPrice.Platinum, &g.TicketPrice.Gold, &g.TicketPrice.Silver, &g.TicketPrice.Bronze,
	)
	if err != nil {
		return nil, err
	}
	if hour.Valid {
		h := int(hour.Int32)
		g.Hour = &h
	}
	if minute.Valid {
		m := int(minute.Int32)
		g.Minute = &m
	}
	return &g, nil
}

func getGame(ctx context.Context, q queryer, query, id string) (*model.Game, error) {
	g, err := scanGame(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

// GetByID retrieves a game by its ID.  It returns ErrNotFound if there is
// no matching row.
func (r *GameRepo) GetByID(ctx context.Context, id string) (*model.Game, error) {
	return getGame(ctx, r.db, `SELECT `+gameColumns+` FROM game WHERE id = ?`, id)
}

// LockTx reads a game inside tx and takes an exclusive row lock on it that
// is held until the transaction ends.  Every purchase for the same game
// queues on this lock, which makes the capacity check and the ledger insert
// one atomic step.
func (r *GameRepo) LockTx(ctx context.Context, tx *sql.Tx, id string) (*model.Game, error) {
	return getGame(ctx, tx, `SELECT `+gameColumns+` FROM game WHERE id = ? FOR UPDATE`, id)
}

// List returns all games ordered by date ascending.  Unknown kick-off
// times sort before known ones on the same day.
func (r *GameRepo) List(ctx context.Context) ([]model.Game, error) {
	const q = `SELECT ` + gameColumns + `
               FROM game
               ORDER BY year, month, day, hour, minute, id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	games := make([]model.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return games, nil
}

// Create inserts a new game.  It returns ErrConflict when a game with the
// same ID already exists.
func (r *GameRepo) Create(ctx context.Context, g *model.Game) error {
	const q = `INSERT INTO game (` + gameColumns + `)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	var hour, minute sql.NullInt32
	if g.Hour != nil {
		hour = sql.NullInt32{Int32: int32(*g.Hour), Valid: true}
	}
	if g.Minute != nil {
		minute = sql.NullInt32{Int32: int32(*g.Minute), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		g.ID, g.Opponent, g.OpponentImgURL, g.Year, g.Month, g.Day, hour, minute,
		g.TicketCount.Platinum, g.TicketCount.Gold, g.TicketCount.Silver, g.TicketCount.Bronze,
		g.TicketPrice.Platinum, g.TicketPrice.Gold, g.TicketPrice.Silver, g.TicketPrice.Bronze,
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}
