package model

import "time"

// Hotel represents a property owned by a user.  A hotel can contain
// multiple room types.  Each hotel belongs to one owner; only the owner
// may edit or delete it.  This struct corresponds to a row in the
// `hotels` table.  Images holds the JSON-encoded list of uploaded
// image paths.
//
// Fields:
//
//	ID         – primary key identifier.
//	OwnerID    – user ID of the hotel owner.
//	Name       – display name of the hotel.
//	Address    – street address.
//	Location   – city used for search filtering.
//	StarRating – star rating 1..5.
//	Logo       – optional path to the uploaded logo.
//	Images     – uploaded image paths.
//	CreatedAt  – timestamp when the hotel was created.
//	UpdatedAt  – timestamp of last update.
type Hotel struct {
	ID         uint64    // hotels.id
	OwnerID    uint64    // hotels.owner_id
	Name       string    // hotels.name
	Address    string    // hotels.address
	Location   string    // hotels.location
	StarRating uint8     // hotels.star_rating
	Logo       *string   // hotels.logo (nullable)
	Images     []string  // hotels.images (JSON-encoded TEXT)
	CreatedAt  time.Time // hotels.created_at
	UpdatedAt  time.Time // hotels.updated_at
}

// RoomType describes a bookable room category within a hotel.  The
// CurrentAvailability counter is the template value used to seed the
// per-day availability ledger; the per-day remaining counts live in
// the room_availability table.
//
// Fields:
//
//	ID                  – primary key identifier.
//	HotelID             – hotel this room type belongs to.
//	Name                – room type name (e.g. "Deluxe King").
//	Amenities           – free-text amenity description.
//	PricePerNightCents  – nightly price in cents.
//	CurrentAvailability – template availability for newly seeded days.
//	Images              – uploaded image paths.
//	CreatedAt           – creation timestamp.
//	UpdatedAt           – last update timestamp.
type RoomType struct {
	ID                  uint64    // room_types.id
	HotelID             uint64    // room_types.hotel_id
	Name                string    // room_types.name
	Amenities           string    // room_types.amenities
	PricePerNightCents  int64     // room_types.price_per_night_cents
	CurrentAvailability int       // room_types.current_availability
	Images              []string  // room_types.images (JSON-encoded TEXT)
	CreatedAt           time.Time // room_types.created_at
	UpdatedAt           time.Time // room_types.updated_at
}
