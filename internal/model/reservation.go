package model

import "time"

// Reservation status values shared by hotel and flight reservations.
// Cancellation never deletes a row; the status flips to CANCELLED and
// the record stays for auditing.
const (
	ReservationConfirmed = "CONFIRMED"
	ReservationCancelled = "CANCELLED"
)

// HotelReservation records a user's stay booking for a room type.
// Price is nights x pricePerNight at booking time.  ItineraryID is
// set at most once, when the reservation is linked into an itinerary.
//
// Fields:
//
//	ID          – primary key identifier.
//	UserID      – user who made the reservation.
//	HotelID     – hotel being booked.
//	RoomTypeID  – room type being booked.
//	CheckIn     – first night of the stay (inclusive).
//	CheckOut    – departure day (exclusive).
//	PriceCents  – total price in cents for the whole stay.
//	Status      – CONFIRMED or CANCELLED.
//	ItineraryID – owning itinerary, if linked (nullable).
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type HotelReservation struct {
	ID          uint64    // hotel_reservations.id
	UserID      uint64    // hotel_reservations.user_id
	HotelID     uint64    // hotel_reservations.hotel_id
	RoomTypeID  uint64    // hotel_reservations.room_type_id
	CheckIn     time.Time // hotel_reservations.check_in
	CheckOut    time.Time // hotel_reservations.check_out
	PriceCents  int64     // hotel_reservations.price_cents
	Status      string    // hotel_reservations.status
	ItineraryID *uint64   // hotel_reservations.itinerary_id (nullable)
	CreatedAt   time.Time // hotel_reservations.created_at
	UpdatedAt   time.Time // hotel_reservations.updated_at
}

// FlightReservation mirrors an external flight-supplier booking by its
// reference id.  The outbound and optional return legs are flattened
// into columns; identity and pricing are derived from the supplier
// response at booking time.
type FlightReservation struct {
	ID                  uint64     // flight_reservations.id
	UserID              uint64     // flight_reservations.user_id
	AfsBookingID        string     // flight_reservations.afs_booking_id
	OutboundDepartAt    time.Time  // flight_reservations.outbound_depart_at
	OutboundOrigin      string     // flight_reservations.outbound_origin (IATA code)
	OutboundArriveAt    time.Time  // flight_reservations.outbound_arrive_at
	OutboundDestination string     // flight_reservations.outbound_destination
	ReturnDepartAt      *time.Time // flight_reservations.return_depart_at (nullable)
	ReturnOrigin        *string    // flight_reservations.return_origin (nullable)
	ReturnArriveAt      *time.Time // flight_reservations.return_arrive_at (nullable)
	ReturnDestination   *string    // flight_reservations.return_destination (nullable)
	PriceCents          int64      // flight_reservations.price_cents
	Status              string     // flight_reservations.status
	ItineraryID         *uint64    // flight_reservations.itinerary_id (nullable)
	CreatedAt           time.Time  // flight_reservations.created_at
	UpdatedAt           time.Time  // flight_reservations.updated_at
}
