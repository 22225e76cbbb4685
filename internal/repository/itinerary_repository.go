package repository

import (
	"context"
	"database/sql"

	"github.com/flynext/flynext-server/internal/model"
)

// ItineraryRepo stores itineraries, the billable unit that groups at
// most one flight reservation and one hotel reservation.  Linking of
// reservations happens in the same transaction as the insert so a
// failed link never leaves an empty itinerary behind.
type ItineraryRepo struct {
	db *sql.DB
}

func NewItineraryRepo(db *sql.DB) *ItineraryRepo { return &ItineraryRepo{db: db} }

func (r *ItineraryRepo) DB() *sql.DB { return r.db }

const itineraryCols = "id, user_id, total_price_cents, status, card_last4, card_expiry, booking_date, updated_at"

// CreateTx inserts a DRAFT itinerary inside an existing transaction and
// populates the generated ID and timestamps on the record.
func (r *ItineraryRepo) CreateTx(ctx context.Context, tx *sql.Tx, it *model.Itinerary) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO itineraries (user_id, total_price_cents, status) VALUES (?,?,?)",
		it.UserID, it.TotalPriceCents, it.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT booking_date, updated_at FROM itineraries WHERE id=?", it.ID).
		Scan(&it.BookingDate, &it.UpdatedAt)
}

// GetByIDForUser fetches one itinerary and checks ownership.  A foreign
// itinerary returns ErrForbidden so the handler can answer 403 without
// leaking existence to the 404 path.
func (r *ItineraryRepo) GetByIDForUser(ctx context.Context, id, userID uint64) (model.Itinerary, error) {
	it, err := scanItinerary(r.db.QueryRowContext(ctx,
		"SELECT "+itineraryCols+" FROM itineraries WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return it, ErrNotFound
	}
	if err != nil {
		return it, err
	}
	if it.UserID != userID {
		return model.Itinerary{}, ErrForbidden
	}
	return it, nil
}

// ListByUser returns the user's itineraries, newest first.
func (r *ItineraryRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Itinerary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itineraryCols+" FROM itineraries WHERE user_id=? ORDER BY booking_date DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Itinerary
	for rows.Next() {
		var it model.Itinerary
		var last4, expiry sql.NullString
		if err := rows.Scan(&it.ID, &it.UserID, &it.TotalPriceCents, &it.Status,
			&last4, &expiry, &it.BookingDate, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.CardLast4 = last4.String
		it.CardExpiry = expiry.String
		out = append(out, it)
	}
	return out, rows.Err()
}

// Confirm records the checkout: status moves to CONFIRMED and the
// masked card details are stored.  The guard on the current status
// makes a second checkout report ErrConflict.
func (r *ItineraryRepo) Confirm(ctx context.Context, id uint64, cardLast4, cardExpiry string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE itineraries SET status=?, card_last4=?, card_expiry=? WHERE id=? AND status=?",
		model.ItineraryConfirmed, cardLast4, cardExpiry, id, model.ItineraryDraft)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// CancelTx marks the itinerary CANCELLED and zeroes the total, inside
// the cancellation transaction that also flips the linked reservations.
func (r *ItineraryRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE itineraries SET status=?, total_price_cents=0 WHERE id=?",
		model.ItineraryCancelled, id)
	return err
}

// AddToTotal adjusts the stored total by delta cents.  Used when a
// linked reservation is cancelled on its own so the itinerary price
// tracks what is still booked.
func (r *ItineraryRepo) AddToTotal(ctx context.Context, id uint64, delta int64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE itineraries SET total_price_cents = GREATEST(total_price_cents + ?, 0) WHERE id=?",
		delta, id)
	return err
}

func scanItinerary(row *sql.Row) (model.Itinerary, error) {
	var (
		it     model.Itinerary
		last4  sql.NullString
		expiry sql.NullString
	)
	err := row.Scan(&it.ID, &it.UserID, &it.TotalPriceCents, &it.Status,
		&last4, &expiry, &it.BookingDate, &it.UpdatedAt)
	if err != nil {
		return it, err
	}
	it.CardLast4 = last4.String
	it.CardExpiry = expiry.String
	return it, nil
}
