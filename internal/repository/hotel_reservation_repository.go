package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/flynext/flynext-server/internal/model"
)

// HotelReservationRepo provides CRUD operations for hotel stays.
// Reservations are never deleted; cancellation flips the status so the
// row stays behind as an audit trail.  All timestamp fields are stored
// in UTC.
type HotelReservationRepo struct {
	db *sql.DB
}

func NewHotelReservationRepo(db *sql.DB) *HotelReservationRepo {
	return &HotelReservationRepo{db: db}
}

func (r *HotelReservationRepo) DB() *sql.DB { return r.db }

const hotelResCols = "id, user_id, hotel_id, room_type_id, check_in, check_out, price_cents, status, itinerary_id, created_at, updated_at"

// CreateTx inserts a reservation within the scope of an existing
// transaction and populates the generated ID and timestamps on the
// provided record.  The caller must commit or roll back.
func (r *HotelReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.HotelReservation) error {
	result, err := tx.ExecContext(ctx,
		"INSERT INTO hotel_reservations (user_id, hotel_id, room_type_id, check_in, check_out, price_cents, status) VALUES (?,?,?,?,?,?,?)",
		res.UserID, res.HotelID, res.RoomTypeID,
		res.CheckIn.Format("2006-01-02"), res.CheckOut.Format("2006-01-02"),
		res.PriceCents, res.Status)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	// Query back to populate DB-assigned timestamps.
	return tx.QueryRowContext(ctx,
		"SELECT created_at, updated_at FROM hotel_reservations WHERE id=?", res.ID).
		Scan(&res.CreatedAt, &res.UpdatedAt)
}

// GetByID fetches one reservation.  Returns ErrNotFound when missing.
func (r *HotelReservationRepo) GetByID(ctx context.Context, id uint64) (model.HotelReservation, error) {
	res, err := scanHotelReservation(r.db.QueryRowContext(ctx,
		"SELECT "+hotelResCols+" FROM hotel_reservations WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return res, ErrNotFound
	}
	return res, err
}

// ListByUser returns the user's reservations, newest first.
func (r *HotelReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.HotelReservation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+hotelResCols+" FROM hotel_reservations WHERE user_id=? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.HotelReservation
	for rows.Next() {
		res, err := scanHotelReservationRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListByHotelOwner returns reservations for every hotel the owner runs,
// joined with hotel and room type names for display.
type OwnerBookingDetail struct {
	ID           uint64    `json:"id"`
	UserID       uint64    `json:"user_id"`
	HotelID      uint64    `json:"hotel_id"`
	HotelName    string    `json:"hotel_name"`
	RoomTypeName string    `json:"room_type_name"`
	CheckIn      time.Time `json:"check_in"`
	CheckOut     time.Time `json:"check_out"`
	PriceCents   int64     `json:"price_cents"`
	Status       string    `json:"status"`
}

func (r *HotelReservationRepo) ListByHotelOwner(ctx context.Context, ownerID uint64) ([]OwnerBookingDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT hr.id, hr.user_id, hr.hotel_id, h.name, rt.name,
		        hr.check_in, hr.check_out, hr.price_cents, hr.status
		 FROM hotel_reservations hr
		 JOIN hotels h ON h.id = hr.hotel_id
		 JOIN room_types rt ON rt.id = hr.room_type_id
		 WHERE h.owner_id = ?
		 ORDER BY hr.created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []OwnerBookingDetail
	for rows.Next() {
		var d OwnerBookingDetail
		if err := rows.Scan(&d.ID, &d.UserID, &d.HotelID, &d.HotelName, &d.RoomTypeName,
			&d.CheckIn, &d.CheckOut, &d.PriceCents, &d.Status); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// MarkCancelled flips the status to CANCELLED.  Returns the number of
// rows changed so callers can detect the idempotent no-op case.
func (r *HotelReservationRepo) MarkCancelled(ctx context.Context, id uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE hotel_reservations SET status=? WHERE id=? AND status<>?",
		model.ReservationCancelled, id, model.ReservationCancelled)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// MarkCancelledTx is MarkCancelled inside an existing transaction.
func (r *HotelReservationRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"UPDATE hotel_reservations SET status=? WHERE id=? AND status<>?",
		model.ReservationCancelled, id, model.ReservationCancelled)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// LinkItineraryTx sets itinerary_id exactly once.  The guard on
// itinerary_id IS NULL makes a second link attempt report
// ErrAlreadyLinked instead of silently relinking.
func (r *HotelReservationRepo) LinkItineraryTx(ctx context.Context, tx *sql.Tx, id, itineraryID uint64) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE hotel_reservations SET itinerary_id=? WHERE id=? AND itinerary_id IS NULL",
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
func (r *HotelReservationRepo) GetForLinkTx(ctx context.Context, tx *sql.Tx, id uint64) (userID uint64, itineraryID *uint64, priceCents int64, hotelID uint64, err error) {
	var itin sql.NullInt64
	err = tx.QueryRowContext(ctx,
		"SELECT user_id, itinerary_id, price_cents, hotel_id FROM hotel_reservations WHERE id=? LIMIT 1", id).
		Scan(&userID, &itin, &priceCents, &hotelID)
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

// GetByItinerary returns the reservation linked to an itinerary, or
// ErrNotFound when the itinerary has no hotel leg.
func (r *HotelReservationRepo) GetByItinerary(ctx context.Context, itineraryID uint64) (model.HotelReservation, error) {
	res, err := scanHotelReservation(r.db.QueryRowContext(ctx,
		"SELECT "+hotelResCols+" FROM hotel_reservations WHERE itinerary_id=? LIMIT 1", itineraryID))
	if err == sql.ErrNoRows {
		return res, ErrNotFound
	}
	return res, err
}

func scanHotelReservation(row *sql.Row) (model.HotelReservation, error) {
	var (
		res  model.HotelReservation
		itin sql.NullInt64
	)
	err := row.Scan(&res.ID, &res.UserID, &res.HotelID, &res.RoomTypeID,
		&res.CheckIn, &res.CheckOut, &res.PriceCents, &res.Status, &itin,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return res, err
	}
	if itin.Valid {
		v := uint64(itin.Int64)
		res.ItineraryID = &v
	}
	return res, nil
}

func scanHotelReservationRows(rows *sql.Rows) (model.HotelReservation, error) {
	var (
		res  model.HotelReservation
		itin sql.NullInt64
	)
	err := rows.Scan(&res.ID, &res.UserID, &res.HotelID, &res.RoomTypeID,
		&res.CheckIn, &res.CheckOut, &res.PriceCents, &res.Status, &itin,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return res, err
	}
	if itin.Valid {
		v := uint64(itin.Int64)
		res.ItineraryID = &v
	}
	return res, nil
}
