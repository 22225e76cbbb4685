package repository

import (
	"context"
	"database/sql"

	"github.com/flynext/flynext-server/internal/model"
)

// FlightReservationRepo stores the local mirror of flight supplier
// bookings.  The supplier remains the source of truth for live status;
// rows here keep the booking reference plus a flattened leg summary so
// lists and invoices do not need a supplier round trip.
type FlightReservationRepo struct {
	db *sql.DB
}

func NewFlightReservationRepo(db *sql.DB) *FlightReservationRepo {
	return &FlightReservationRepo{db: db}
}

const flightResCols = `id, user_id, afs_booking_id,
	outbound_depart_at, outbound_origin, outbound_arrive_at, outbound_destination,
	return_depart_at, return_origin, return_arrive_at, return_destination,
	price_cents, status, itinerary_id, created_at, updated_at`

// Create inserts a mirror row and returns its ID.
func (r *FlightReservationRepo) Create(ctx context.Context, f *model.FlightReservation) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO flight_reservations
		 (user_id, afs_booking_id,
		  outbound_depart_at, outbound_origin, outbound_arrive_at, outbound_destination,
		  return_depart_at, return_origin, return_arrive_at, return_destination,
		  price_cents, status)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		f.UserID, f.AfsBookingID,
		f.OutboundDepartAt, f.OutboundOrigin, f.OutboundArriveAt, f.OutboundDestination,
		f.ReturnDepartAt, f.ReturnOrigin, f.ReturnArriveAt, f.ReturnDestination,
		f.PriceCents, f.Status)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one flight reservation.  Returns ErrNotFound when missing.
func (r *FlightReservationRepo) GetByID(ctx context.Context, id uint64) (model.FlightReservation, error) {
	f, err := scanFlightReservation(r.db.QueryRowContext(ctx,
		"SELECT "+flightResCols+" FROM flight_reservations WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

// ListByUser returns the user's flight reservations, newest first.
func (r *FlightReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.FlightReservation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+flightResCols+" FROM flight_reservations WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FlightReservation
	for rows.Next() {
		f, err := scanFlightReservationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// UpdateStatus overwrites the mirrored status, e.g. after the supplier
// confirms a cancellation.
func (r *FlightReservationRepo) UpdateStatus(ctx context.Context, id uint64, status string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE flight_reservations SET status=? WHERE id=?", status, id)
	return err
}

// LinkItineraryTx sets itinerary_id exactly once, mirroring the hotel
// reservation guard.
func (r *FlightReservationRepo) LinkItineraryTx(ctx context.Context, tx *sql.Tx, id, itineraryID uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE flight_reservations SET itinerary_id=? WHERE id=? AND itinerary_id IS NULL",
		itineraryID, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAlreadyLinked
	}
	return nil
}

// GetForLinkTx loads the ownership/link/price columns needed when
// building an itinerary, inside the itinerary-creation transaction.
func (r *FlightReservationRepo) GetForLinkTx(ctx context.Context, tx *sql.Tx, id uint64) (userID uint64, itineraryID *uint64, priceCents int64, err error) {
	var itin sql.NullInt64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, itinerary_id, price_cents FROM flight_reservations WHERE id=? LIMIT 1", id).
		Scan(&userID, &itin, &priceCents)
	if err == sql.ErrNoRows {
		err = ErrNotFound
		return
	}
	if itin.Valid {
		v := uint64(itin.Int64)
		itineraryID = &v
	}
	return
}

// GetByItinerary returns the flight reservation linked to an itinerary,
// or ErrNotFound when the itinerary has no flight leg.
func (r *FlightReservationRepo) GetByItinerary(ctx context.Context, itineraryID uint64) (model.FlightReservation, error) {
	f, err := scanFlightReservation(r.db.QueryRowContext(ctx,
		"SELECT "+flightResCols+" FROM flight_reservations WHERE itinerary_id=? LIMIT 1", itineraryID))
	if err == sql.ErrNoRows {
		return f, ErrNotFound
	}
	return f, err
}

func scanFlightReservation(row *sql.Row) (model.FlightReservation, error) {
	var (
		f         model.FlightReservation
		retDepart sql.NullTime
		retOrig   sql.NullString
		retArrive sql.NullTime
		retDest   sql.NullString
		itin      sql.NullInt64
	)
	err := row.Scan(&f.ID, &f.UserID, &f.AfsBookingID,
		&f.OutboundDepartAt, &f.OutboundOrigin, &f.OutboundArriveAt, &f.OutboundDestination,
		&retDepart, &retOrig, &retArrive, &retDest,
		&f.PriceCents, &f.Status, &itin, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	applyFlightNullables(&f, retDepart, retOrig, retArrive, retDest, itin)
	return f, nil
}

func scanFlightReservationRows(rows *sql.Rows) (model.FlightReservation, error) {
	var (
		f         model.FlightReservation
		retDepart sql.NullTime
		retOrig   sql.NullString
		retArrive sql.NullTime
		retDest   sql.NullString
		itin      sql.NullInt64
	)
	err := rows.Scan(&f.ID, &f.UserID, &f.AfsBookingID,
		&f.OutboundDepartAt, &f.OutboundOrigin, &f.OutboundArriveAt, &f.OutboundDestination,
		&retDepart, &retOrig, &retArrive, &retDest,
		&f.PriceCents, &f.Status, &itin, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return f, err
	}
	applyFlightNullables(&f, retDepart, retOrig, retArrive, retDest, itin)
	return f, nil
}

func applyFlightNullables(f *model.FlightReservation, retDepart sql.NullTime, retOrig sql.NullString, retArrive sql.NullTime, retDest sql.NullString, itin sql.NullInt64) {
	if retDepart.Valid {
		t := retDepart.Time
		f.ReturnDepartAt = &t
	}
	if retOrig.Valid {
		s := retOrig.String
		f.ReturnOrigin = &s
	}
	if retArrive.Valid {
		t := retArrive.Time
		f.ReturnArriveAt = &t
	}
	if retDest.Valid {
		s := retDest.String
		f.ReturnDestination = &s
	}
	if itin.Valid {
		v := uint64(itin.Int64)
		f.ItineraryID = &v
	}
}
