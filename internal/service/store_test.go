package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/game-ticket-booking/internal/model"
	"github.com/iliyamo/game-ticket-booking/internal/repository"
)

func newSQLStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return NewSQLStore(repository.NewGameRepo(db), repository.NewPurchaseRepo(db), repository.NewUserRepo(db)), mock
}

func TestSQLStoreInTxCommits(t *testing.T) {
	store, mock := newSQLStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`COALESCE\(SUM`).WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"p", "g", "s", "b"}).AddRow(0, 1, 0, 0))
	mock.ExpectCommit()

	var sold model.TicketCounts
	err := store.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		var err error
		sold, err = tx.SoldTickets(ctx, "g1")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, sold.Gold)
}

func TestSQLStoreInTxRollsBackOnError(t *testing.T) {
	store, mock := newSQLStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	err := store.InTx(context.Background(), func(context.Context, Tx) error { return ErrSoldOut })
	assert.Same(t, ErrSoldOut, err)
}

func TestSQLStoreInTxReportsCommitFailure(t *testing.T) {
	store, mock := newSQLStore(t)
	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("lost connection"))

	err := store.InTx(context.Background(), func(context.Context, Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commit transaction")
}

func TestPurchaseOverSQLStore(t *testing.T) {
	store, mock := newSQLStore(t)
	gameCols := []string{
		"id", "opponent", "opponent_img_url", "year", "month", "day", "hour", "minute",
		"platinum_count", "gold_count", "silver_count", "bronze_count",
		"platinum_price", "gold_price", "silver_price", "bronze_price",
	}
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM game WHERE id = \? FOR UPDATE`).WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(gameCols).AddRow("g1", "Rivals", "", 2026, 5, 1, nil, nil, 1, 0, 0, 0, 0, 0, 0, 0))
	mock.ExpectQuery(`COALESCE\(SUM`).WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"p", "g", "s", "b"}).AddRow(0, 0, 0, 0))
	mock.ExpectExec(`INSERT INTO purchase`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	svc := NewBookingService(store)
	id, err := svc.Purchase(context.Background(), "g1", "fan@example.com", model.TicketCounts{Platinum: 1})
	require.NoError(t, err)
	assert.Len(t, id, ConfirmationCodeLength)
}

func TestSoldOutOverSQLStoreRollsBack(t *testing.T) {
	store, mock := newSQLStore(t)
	gameCols := []string{
		"id", "opponent", "opponent_img_url", "year", "month", "day", "hour", "minute",
		"platinum_count", "gold_count", "silver_count", "bronze_count",
		"platinum_price", "gold_price", "silver_price", "bronze_price",
	}
	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE`).WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(gameCols).AddRow("g1", "Rivals", "", 2026, 5, 1, nil, nil, 1, 0, 0, 0, 0, 0, 0, 0))
	mock.ExpectQuery(`COALESCE\(SUM`).WithArgs("g1").
		WillReturnRows(sqlmock.NewRows([]string{"p", "g", "s", "b"}).AddRow(1, 0, 0, 0))
	mock.ExpectRollback()

	_, err := NewBookingService(store).Purchase(context.Background(), "g1", "fan@example.com", model.TicketCounts{Platinum: 1})
	assert.ErrorIs(t, err, ErrSoldOut)
}
