package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/repository"
)

// Store is the persistence the booking service needs.  Reads outside InTx
// see committed data and are used only for display; every decision that
// guards capacity is taken on a Tx.
type Store interface {
	Game(ctx context.Context, id string) (*model.Game, error)
	Games(ctx context.Context) ([]model.Game, error)
	SoldTickets(ctx context.Context, gameID string) (model.TicketCounts, error)
	Purchase(ctx context.Context, id string) (*model.Purchase, error)
	PurchasesByUser(ctx context.Context, email string) ([]repository.PurchaseDetail, error)
	User(ctx context.Context, email string) (*model.User, error)

	// InTx runs fn in one transaction.  The transaction commits when fn
	// returns nil and rolls back otherwise; fn's error is returned as is.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the transactional view of the store.  Lock methods hold a row lock
// until the transaction ends.
type Tx interface {
	LockGame(ctx context.Context, id string) (*model.Game, error)
	SoldTickets(ctx context.Context, gameID string) (model.TicketCounts, error)
	LockPurchase(ctx context.Context, id string) (*model.Purchase, error)
	AppendPurchase(ctx context.Context, p *model.Purchase) error
	MarkPurchaseInvalid(ctx context.Context, id string, note *string) error
}

// SQLStore binds Store to the MySQL repositories.
type SQLStore struct {
	games     *repository.GameRepo
	purchases *repository.PurchaseRepo
	users     *repository.UserRepo
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore constructs a SQLStore.  All repositories must share one
// database handle.
func NewSQLStore(games *repository.GameRepo, purchases *repository.PurchaseRepo, users *repository.UserRepo) *SQLStore {
	if games == nil || purchases == nil || users == nil {
		panic("nil repository passed to NewSQLStore")
	}
	return &SQLStore{games: games, purchases: purchases, users: users}
}

func (s *SQLStore) Game(ctx context.Context, id string) (*model.Game, error) {
	return s.games.GetByID(ctx, id)
}

func (s *SQLStore) Games(ctx context.Context) ([]model.Game, error) {
	return s.games.List(ctx)
}

func (s *SQLStore) SoldTickets(ctx context.Context, gameID string) (model.TicketCounts, error) {
	return s.purchases.SumValidByGame(ctx, gameID)
}

func (s *SQLStore) Purchase(ctx context.Context, id string) (*model.Purchase, error) {
	return s.purchases.GetByID(ctx, id)
}

func (s *SQLStore) PurchasesByUser(ctx context.Context, email string) ([]repository.PurchaseDetail, error) {
	return s.purchases.ListByUser(ctx, email)
}

func (s *SQLStore) User(ctx context.Context, email string) (*model.User, error) {
	return s.users.GetByEmail(ctx, email)
}

// InTx begins a REPEATABLE READ transaction.  Every read the capacity check
// depends on is a locking read (the game row FOR UPDATE, the ledger sum FOR
// SHARE), and locking reads see the latest committed rows rather than the
// transaction snapshot.
func (s *SQLStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.games.DB().BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(ctx, &sqlTx{tx: tx, games: s.games, purchases: s.purchases}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

type sqlTx struct {
	tx        *sql.Tx
	games     *repository.GameRepo
	purchases *repository.PurchaseRepo
}

func (t *sqlTx) LockGame(ctx context.Context, id string) (*model.Game, error) {
	return t.games.LockTx(ctx, t.tx, id)
}

func (t *sqlTx) SoldTickets(ctx context.Context, gameID string) (model.TicketCounts, error) {
	return t.purchases.SumValidByGameTx(ctx, t.tx, gameID)
}

func (t *sqlTx) LockPurchase(ctx context.Context, id string) (*model.Purchase, error) {
	return t.purchases.GetForUpdateTx(ctx, t.tx, id)
}

func (t *sqlTx) AppendPurchase(ctx context.Context, p *model.Purchase) error {
	return t.purchases.AppendTx(ctx, t.tx, p)
}

func (t *sqlTx) MarkPurchaseInvalid(ctx context.Context, id string, note *string) error {
	return t.purchases.MarkInvalidTx(ctx, t.tx, id, note)
}
