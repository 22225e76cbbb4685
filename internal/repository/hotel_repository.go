package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/flynext/flynext-server/internal/model"
)

// HotelRepo provides data access to the hotels table.  Search filters
// are assembled dynamically from the optional parameters; ownership is
// enforced here so handlers can map ErrForbidden straight to 403.
type HotelRepo struct {
	db *sql.DB
}

func NewHotelRepo(db *sql.DB) *HotelRepo { return &HotelRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *HotelRepo) DB() *sql.DB { return r.db }

const hotelCols = "id, owner_id, name, address, location, star_rating, logo, images, created_at, updated_at"

// HotelFilter restricts Search results.  Zero values mean "no filter".
// PriceMinCents/PriceMaxCents match hotels that have at least one room
// type in the given nightly price range.
type HotelFilter struct {
	City          string
	Name          string
	StarRating    int
	PriceMinCents int64
	PriceMaxCents int64
}

// Create inserts a hotel and returns its ID.
func (r *HotelRepo) Create(ctx context.Context, h *model.Hotel) (uint64, error) {
	images, err := encodeImages(h.Images)
	if err != nil {
		return 0, err
	}
	var logo interface{}
	if h.Logo != nil {
		logo = *h.Logo
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO hotels (owner_id, name, address, location, star_rating, logo, images) VALUES (?,?,?,?,?,?,?)",
		h.OwnerID, h.Name, h.Address, h.Location, h.StarRating, logo, images)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches one hotel.  Returns ErrNotFound when missing.
func (r *HotelRepo) GetByID(ctx context.Context, id uint64) (model.Hotel, error) {
	h, err := scanHotel(r.db.QueryRowContext(ctx,
		"SELECT "+hotelCols+" FROM hotels WHERE id=? LIMIT 1", id))
	if err == sql.ErrNoRows {
		return h, ErrNotFound
	}
	return h, err
}

// ListByOwner returns all hotels owned by the given user.
func (r *HotelRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Hotel, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+hotelCols+" FROM hotels WHERE owner_id=? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHotels(rows)
}

// Search returns hotels matching the filter.  The price range filter
// joins room_types so a hotel qualifies when any of its room types
// falls inside the range.
func (r *HotelRepo) Search(ctx context.Context, f HotelFilter) ([]model.Hotel, error) {
	var (
		where []string
		args  []interface{}
	)
	q := "SELECT DISTINCT h.id, h.owner_id, h.name, h.address, h.location, h.star_rating, h.logo, h.images, h.created_at, h.updated_at FROM hotels h"
	if f.PriceMinCents > 0 || f.PriceMaxCents > 0 {
		q += " JOIN room_types rt ON rt.hotel_id = h.id"
		if f.PriceMinCents > 0 {
			where = append(where, "rt.price_per_night_cents >= ?")
			args = append(args, f.PriceMinCents)
		}
		if f.PriceMaxCents > 0 {
			where = append(where, "rt.price_per_night_cents <= ?")
			args = append(args, f.PriceMaxCents)
		}
	}
	if f.City != "" {
		where = append(where, "h.location LIKE ?")
		args = append(args, "%"+f.City+"%")
	}
	if f.Name != "" {
		where = append(where, "h.name LIKE ?")
		args = append(args, "%"+f.Name+"%")
	}
	if f.StarRating > 0 {
		where = append(where, "h.star_rating = ?")
		args = append(args, f.StarRating)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY h.id"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHotels(rows)
}

// Update applies the provided fields to a hotel after checking the
// caller owns it.  Nil pointers leave the column unchanged.
func (r *HotelRepo) Update(ctx context.Context, id, ownerID uint64, name, address, location *string, starRating *int, logo *string, images []string) error {
	if err := r.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}
	sets := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	if name != nil {
		sets = append(sets, "name=?")
		args = append(args, *name)
	}
	if address != nil {
		sets = append(sets, "address=?")
		args = append(args, *address)
	}
	if location != nil {
		sets = append(sets, "location=?")
		args = append(args, *location)
	}
	if starRating != nil {
		sets = append(sets, "star_rating=?")
		args = append(args, *starRating)
	}
	if logo != nil {
		sets = append(sets, "logo=?")
		args = append(args, *logo)
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
	_, err := r.db.ExecContext(ctx, "UPDATE hotels SET "+strings.Join(sets, ",")+" WHERE id=?", args...)
	return err
}

// Delete removes a hotel and its room types after an ownership check.
// Reservations are kept for auditing; they reference the hotel by id only.
func (r *HotelRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	if err := r.requireOwner(ctx, id, ownerID); err != nil {
		return err
	}
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
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM room_availability WHERE room_type_id IN (SELECT id FROM room_types WHERE hotel_id=?)", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM room_types WHERE hotel_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM hotels WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// requireOwner loads the hotel's owner and compares it to the caller.
func (r *HotelRepo) requireOwner(ctx context.Context, id, ownerID uint64) error {
	var owner uint64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM hotels WHERE id=? LIMIT 1", id).Scan(&owner)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if owner != ownerID {
		return ErrForbidden
	}
	return nil
}

func scanHotel(row *sql.Row) (model.Hotel, error) {
	var (
		h      model.Hotel
		logo   sql.NullString
		images sql.NullString
	)
	err := row.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Address, &h.Location,
		&h.StarRating, &logo, &images, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return h, err
	}
	if logo.Valid {
		l := logo.String
		h.Logo = &l
	}
	h.Images = decodeImages(images)
	return h, nil
}

func collectHotels(rows *sql.Rows) ([]model.Hotel, error) {
	var out []model.Hotel
	for rows.Next() {
		var (
			h      model.Hotel
			logo   sql.NullString
			images sql.NullString
		)
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Name, &h.Address, &h.Location,
			&h.StarRating, &logo, &images, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, err
		}
		if logo.Valid {
			l := logo.String
			h.Logo = &l
		}
		h.Images = decodeImages(images)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Image path lists are stored as JSON arrays in a TEXT column.

func encodeImages(paths []string) (string, error) {
	if len(paths) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(paths)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeImages(col sql.NullString) []string {
	if !col.Valid || strings.TrimSpace(col.String) == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(col.String), &out); err != nil {
		return nil
	}
	return out
}
