package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/flynext/flynext-server/internal/model"
)

// AvailabilityRepo maintains the per-day room-count ledger in the
// room_availability table.  Rows are lazily seeded for a date window
// and adjusted by bookings and cancellations.  All date arithmetic is
// done on midnight-UTC days; MySQL DATE columns carry no time part.
type AvailabilityRepo struct {
	db *sql.DB
}

func NewAvailabilityRepo(db *sql.DB) *AvailabilityRepo { return &AvailabilityRepo{db: db} }

// Day truncates t to midnight UTC.  Every date entering the ledger goes
// through this so (room_type_id, date) comparisons behave.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns each day in [from, to), i.e. the nights of a stay
// with check-in `from` and check-out `to`.  An empty or inverted range
// yields nil.
func DaysBetween(from, to time.Time) []time.Time {
	from, to = Day(from), Day(to)
	if !from.Before(to) {
		return nil
	}
	var days []time.Time
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// EnsureWindow guarantees one ledger row per day in [from, to]
// inclusive, seeding missing days with the given template value.  The
// INSERT IGNORE rides on the (room_type_id, date) unique key, so
// concurrent callers cannot create duplicate rows.
func (r *AvailabilityRepo) EnsureWindow(ctx context.Context, roomTypeID uint64, from, to time.Time, seed int) error {
	from, to = Day(from), Day(to)
	if to.Before(from) {
		return nil
	}
	query := "INSERT IGNORE INTO room_availability (room_type_id, date, availability) VALUES "
	var args []interface{}
	first := true
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if !first {
			query += ","
		}
		query += "(?,?,?)"
		args = append(args, roomTypeID, d.Format("2006-01-02"), seed)
		first = false
	}
	_, err := r.db.ExecContext(ctx, query, args...)
	return err
}

// ListWindow returns the ledger rows for [from, to] inclusive, ordered
// by date.
func (r *AvailabilityRepo) ListWindow(ctx context.Context, roomTypeID uint64, from, to time.Time) ([]model.RoomAvailabilityRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, room_type_id, date, availability FROM room_availability
		 WHERE room_type_id = ? AND date >= ? AND date <= ? ORDER BY date`,
		roomTypeID, Day(from).Format("2006-01-02"), Day(to).Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RoomAvailabilityRecord
	for rows.Next() {
		var rec model.RoomAvailabilityRecord
		if err := rows.Scan(&rec.ID, &rec.RoomTypeID, &rec.Date, &rec.Availability); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DecrementDaysTx takes one room from every given day inside the
// provided transaction.  Each day is a conditional update guarded by
// availability > 0; a day that matches no row at all means the date was
// never seeded (ErrDateNotSupported), while a seeded day that refuses
// the decrement means the room type is sold out for that night
// (ErrNoAvailability).  On either error the caller must roll the
// transaction back, which undoes any decrements already applied — two
// concurrent bookings racing for the last room cannot both win.
func (r *AvailabilityRepo) DecrementDaysTx(ctx context.Context, tx *sql.Tx, roomTypeID uint64, days []time.Time) error {
	for _, d := range days {
		day := Day(d).Format("2006-01-02")
		res, err := tx.ExecContext(ctx,
			`UPDATE room_availability SET availability = availability - 1
			 WHERE room_type_id = ? AND date = ? AND availability > 0`,
			roomTypeID, day)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 1 {
			continue
		}
		// Distinguish "never seeded" from "sold out".
		var exists int
		err = tx.QueryRowContext(ctx,
			"SELECT 1 FROM room_availability WHERE room_type_id = ? AND date = ? LIMIT 1",
			roomTypeID, day).Scan(&exists)
		if err == sql.ErrNoRows {
			return ErrDateNotSupported
		}
		if err != nil {
			return err
		}
		return ErrNoAvailability
	}
	return nil
}

// IncrementDaysTx gives one room back on every given day.  Used when a
// booking transaction needs to restore ledger rows; days without a
// seeded record are skipped silently.
func (r *AvailabilityRepo) IncrementDaysTx(ctx context.Context, tx *sql.Tx, roomTypeID uint64, days []time.Time) error {
	for _, d := range days {
		if _, err := tx.ExecContext(ctx,
			"UPDATE room_availability SET availability = availability + 1 WHERE room_type_id = ? AND date = ?",
			roomTypeID, Day(d).Format("2006-01-02")); err != nil {
			return err
		}
	}
	return nil
}
