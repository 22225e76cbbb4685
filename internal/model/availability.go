package model

import "time"

// RoomAvailabilityRecord holds the remaining bookable count for one
// room type on one calendar day.  Records are lazily created for the
// window [today, today+2 months] the first time a room type's
// availability is read, seeded with the room type's template
// availability.  The unique key (room_type_id, date) guarantees at
// most one record per day.
type RoomAvailabilityRecord struct {
	ID           uint64    // room_availability.id
	RoomTypeID   uint64    // room_availability.room_type_id
	Date         time.Time // room_availability.date (midnight UTC)
	Availability int       // room_availability.availability
}
