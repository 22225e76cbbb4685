package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	decrementPattern = "UPDATE room_availability SET availability = availability - 1"
	existsPattern    = "SELECT 1 FROM room_availability"
)

func newLedgerMock(t *testing.T) (*AvailabilityRepo, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAvailabilityRepo(db), mock, db
}

func TestDecrementDaysTxTakesOneRoomPerDay(t *testing.T) {
	repo, mock, db := newLedgerMock(t)

	d1 := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementPattern)).
		WithArgs(int64(4), "2026-09-01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementPattern)).
		WithArgs(int64(4), "2026-09-02").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.DecrementDaysTx(context.Background(), tx, 4, []time.Time{d1, d2}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementDaysTxSoldOutNight(t *testing.T) {
	repo, mock, db := newLedgerMock(t)

	d1 := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	d2 := d1.AddDate(0, 0, 1)

	// First night succeeds, second is down to zero: the seeded row exists
	// but refuses the conditional decrement.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementPattern)).
		WithArgs(int64(4), "2026-09-01").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(decrementPattern)).
		WithArgs(int64(4), "2026-09-02").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(existsPattern)).
		WithArgs(int64(4), "2026-09-02").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.DecrementDaysTx(context.Background(), tx, 4, []time.Time{d1, d2})
	assert.ErrorIs(t, err, ErrNoAvailability)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementDaysTxUnseededDay(t *testing.T) {
	repo, mock, db := newLedgerMock(t)

	d := time.Date(2027, time.March, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(decrementPattern)).
		WithArgs(int64(4), "2027-03-01").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(existsPattern)).
		WithArgs(int64(4), "2027-03-01").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)
	err = repo.DecrementDaysTx(context.Background(), tx, 4, []time.Time{d})
	assert.ErrorIs(t, err, ErrDateNotSupported)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}
