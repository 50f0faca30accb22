package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/game-ticket-booking/internal/model"
)

// PurchaseRepo provides access to the purchase ledger.  The ledger is
// append-only: rows are inserted, and the only permitted update flips
// is_valid to false while attaching a refund memo.  Nothing is ever
// deleted.  All timestamp fields are stored in UTC.
type PurchaseRepo struct {
	db *sql.DB
}

// NewPurchaseRepo returns a new PurchaseRepo bound to the given database.
func NewPurchaseRepo(db *sql.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// PurchaseDetail pairs a purchase with the game it was made for.  It is
// returned by ListByUser for display to customers.
type PurchaseDetail struct {
	Purchase model.Purchase `json:"purchase"`
	Game     model.Game     `json:"game"`
}

const purchaseColumns = `id, game_id, user_email, is_valid, refund_memo,
       platinum, gold, silver, bronze, supersedes, created_at`

func scanPurchase(s scanner) (*model.Purchase, error) {
	var p model.Purchase
	var memo, supersedes sql.NullString
	err := s.Scan(
		&p.ID, &p.GameID, &p.UserEmail, &p.IsValid, &memo,
		&p.Tickets.Platinum, &p.Tickets.Gold, &p.Tickets.Silver, &p.Tickets.Bronze,
		&supersedes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if memo.Valid {
		m := memo.String
		p.RefundMemo = &m
	}
	if supersedes.Valid {
		s := supersedes.String
		p.Supersedes = &s
	}
	p.CreatedAt = p.CreatedAt.UTC()
	return &p, nil
}

func getPurchase(ctx context.Context, q queryer, query, id string) (*model.Purchase, error) {
	p, err := scanPurchase(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func listPurchases(ctx context.Context, q queryer, query string, args ...any) ([]model.Purchase, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AppendTx inserts a new ledger entry within the scope of an existing
// transaction.  When CreatedAt is zero it is set to the current UTC time.
// It returns ErrConflict when an entry with the same ID already exists,
// which guards against double submission of the same confirmation code.
// The caller must commit or rollback the transaction.
func (r *PurchaseRepo) AppendTx(ctx context.Context, tx *sql.Tx, p *model.Purchase) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	const q = `INSERT INTO purchase (` + purchaseColumns + `)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		p.ID, p.GameID, p.UserEmail, p.IsValid, nullString(p.RefundMemo),
		p.Tickets.Platinum, p.Tickets.Gold, p.Tickets.Silver, p.Tickets.Bronze,
		nullString(p.Supersedes), p.CreatedAt.UTC(),
	)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// MarkInvalidTx closes a ledger entry: is_valid becomes false and the note,
// if any, is stored as refund memo.  The row itself is kept.  It returns
// ErrNotFound when no entry with the ID exists.
func (r *PurchaseRepo) MarkInvalidTx(ctx context.Context, tx *sql.Tx, id string, note *string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE purchase SET is_valid = FALSE, refund_memo = ? WHERE id = ?`,
		nullString(note), id,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// MySQL reports changed rows, so an update that rewrote identical
	// values also yields zero.  Tell the two cases apart.
	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM purchase WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

// GetByID returns a single ledger entry regardless of its validity.  It
// returns ErrNotFound when no entry with the ID exists.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*model.Purchase, error) {
	return getPurchase(ctx, r.db, `SELECT `+purchaseColumns+` FROM purchase WHERE id = ?`, id)
}

// GetForUpdateTx reads a ledger entry inside tx and locks its row until the
// transaction ends, so two concurrent cancellations of the same entry are
// applied one after the other.
func (r *PurchaseRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, id string) (*model.Purchase, error) {
	return getPurchase(ctx, tx, `SELECT `+purchaseColumns+` FROM purchase WHERE id = ? FOR UPDATE`, id)
}

// ListValidByGame returns every valid entry for a game, oldest first.
func (r *PurchaseRepo) ListValidByGame(ctx context.Context, gameID string) ([]model.Purchase, error) {
	return listPurchases(ctx, r.db,
		`SELECT `+purchaseColumns+` FROM purchase WHERE game_id = ? AND is_valid = TRUE ORDER BY created_at, id`,
		gameID)
}

// SumValidByGame returns the per-tier sum of tickets over the valid entries
// of a game.  Games without purchases yield all zeros.
func (r *PurchaseRepo) SumValidByGame(ctx context.Context, gameID string) (model.TicketCounts, error) {
	return sumValid(ctx, r.db, gameID, "")
}

// SumValidByGameTx is SumValidByGame evaluated inside tx as a locking read
// (FOR SHARE), so it sees the latest committed ledger rows whatever plain
// reads the transaction made earlier.
func (r *PurchaseRepo) SumValidByGameTx(ctx context.Context, tx *sql.Tx, gameID string) (model.TicketCounts, error) {
	return sumValid(ctx, tx, gameID, " FOR SHARE")
}

func sumValid(ctx context.Context, q queryer, gameID, lock string) (model.TicketCounts, error) {
	query := `SELECT COALESCE(SUM(platinum), 0), COALESCE(SUM(gold), 0),
                     COALESCE(SUM(silver), 0), COALESCE(SUM(bronze), 0)
              FROM purchase
              WHERE game_id = ? AND is_valid = TRUE` + lock
	var c model.TicketCounts
	err := q.QueryRowContext(ctx, query, gameID).Scan(&c.Platinum, &c.Gold, &c.Silver, &c.Bronze)
	return c, err
}

// ListByUser returns all valid entries of a user joined with their games.
// Entries are ordered by creation time descending (newest first).  When
// the user has no purchases an empty slice is returned.
func (r *PurchaseRepo) ListByUser(ctx context.Context, email string) ([]PurchaseDetail, error) {
	const q = `SELECT p.id, p.game_id, p.user_email, p.is_valid, p.refund_memo,
                      p.platinum, p.gold, p.silver, p.bronze, p.supersedes, p.created_at,
                      g.id, g.opponent, g.opponent_img_url, g.year, g.month, g.day, g.hour, g.minute,
                      g.platinum_count, g.gold_count, g.silver_count, g.bronze_count,
                      g.platinum_price, g.gold_price, g.silver_price, g.bronze_price
               FROM purchase p
               JOIN game g ON g.id = p.game_id
               WHERE p.user_email = ? AND p.is_valid = TRUE
               ORDER BY p.created_at DESC, p.id`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]PurchaseDetail, 0)
	for rows.Next() {
		var d PurchaseDetail
		var memo, supersedes sql.NullString
		var hour, minute sql.NullInt32
		p, g := &d.Purchase, &d.Game
		if err := rows.Scan(
			&p.ID, &p.GameID, &p.UserEmail, &p.IsValid, &memo,
			&p.Tickets.Platinum, &p.Tickets.Gold, &p.Tickets.Silver, &p.Tickets.Bronze,
			&supersedes, &p.CreatedAt,
			&g.ID, &g.Opponent, &g.OpponentImgURL, &g.Year, &g.Month, &g.Day, &hour, &minute,
			&g.TicketCount.Platinum, &g.TicketCount.Gold, &g.TicketCount.Silver, &g.TicketCount.Bronze,
			&g.TicketPrice.Platinum, &g.TicketPrice.Gold, &g.TicketPrice.Silver, &g.TicketPrice.Bronze,
		); err != nil {
			return nil, err
		}
		if memo.Valid {
			m := memo.String
			p.RefundMemo = &m
		}
		if supersedes.Valid {
			s := supersedes.String
			p.Supersedes = &s
		}
		if hour.Valid {
			h := int(hour.Int32)
			g.Hour = &h
		}
		if minute.Valid {
			m := int(minute.Int32)
			g.Minute = &m
		}
		p.CreatedAt = p.CreatedAt.UTC()
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
