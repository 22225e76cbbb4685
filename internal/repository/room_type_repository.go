package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/flynext/flynext-server/internal/model"
)

// RoomTypeRepo provides data access to the room_types table.
type RoomTypeRepo struct {
	db *sql.DB
}

func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

const roomTypeCols = "id, hotel_id, name, amenities, price_per_night_cents, current_availability, images, created_at, updated_at"

// Create inserts a room type and returns its ID.
func (r *RoomTypeRepo) Create(ctx context.Context, rt *model.RoomType) (uint64, error) {
	images, err := encodeImages(rt.Images)
	if err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO room_types (hotel_id, name, amenities, price_per_night_cents, current_availability, images) VALUES (?,?,?,?,?,?)",
		rt.HotelID, rt.Name, rt.Amenities, rt.PricePerNightCents, rt.CurrentAvailability, images)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one room type.  Returns ErrNotFound when missing.
func (r *RoomTypeRepo) GetByID(ctx context.Context, id uint64) (model.RoomType, error) {
	rt, err := r.scanOne(r.db.QueryRowContext(ctx,
		"SELECT "+roomTypeCols+" FROM room_types WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return rt, ErrNotFound
	}
	return rt, err
}

// ListByHotel returns all room types belonging to a hotel.
func (r *RoomTypeRepo) ListByHotel(ctx context.Context, hotelID uint64) ([]model.RoomType, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roomTypeCols+" FROM room_types WHERE hotel_id=? ORDER BY id", hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RoomType
	for rows.Next() {
		rt, err := scanRoomTypeRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// Update applies the provided fields.  Nil pointers leave the column
// unchanged; ownership of the parent hotel is checked by the handler
// before calling.
func (r *RoomTypeRepo) Update(ctx context.Context, id uint64, name, amenities *string, priceCents *int64, currentAvailability *int, images []string) error {
	sets := make([]string, 0, 5)
	args := make([]interface{}, 0, 6)
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if amenities != nil {
		sets = append(sets, "amenities=?")
		args = append(args, *amenities)
	}
	if priceCents != nil {
		sets = append(sets, "price_per_night_cents=?")
		args = append(args, *priceCents)
	}
	if currentAvailability != nil {
		sets = append(sets, "current_availability=?")
		args = append(args, *currentAvailability)
	}
	if images != nil {
		enc, err := encodeImages(images)
		if err != nil {
			return err
		}
		sets = append(sets, "images=?")
		args = append(args, enc)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.db.ExecContext(ctx, "UPDATE room_types SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// Delete removes a room type and its availability ledger rows.
func (r *RoomTypeRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, "DELETE FROM room_availability WHERE room_type_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM room_types WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// IncrementCurrentAvailability bumps the template counter by one.  Used
// when a hotel reservation is cancelled.
func (r *RoomTypeRepo) IncrementCurrentAvailability(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE room_types SET current_availability = current_availability + 1 WHERE id=?", id)
	return err
}

func (r *RoomTypeRepo) scanOne(row *sql.Row) (model.RoomType, error) {
	var (
		rt        model.RoomType
		amenities sql.NullString
		images    sql.NullString
	)
	err := row.Scan(&rt.ID, &rt.HotelID, &rt.Name, &amenities, &rt.PricePerNightCents,
		&rt.CurrentAvailability, &images, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return rt, err
	}
	rt.Amenities = amenities.String
	rt.Images = decodeImages(images)
	return rt, nil
}

func scanRoomTypeRows(rows *sql.Rows) (model.RoomType, error) {
	var (
		rt        model.RoomType
		amenities sql.NullString
		images    sql.NullString
	)
	err := rows.Scan(&rt.ID, &rt.HotelID, &rt.Name, &amenities, &rt.PricePerNightCents,
		&rt.CurrentAvailability, &images, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return rt, err
	}
	rt.Amenities = amenities.String
	rt.Images = decodeImages(images)
	return rt, nil
}
