package model

import "time"

// Itinerary status values.  DRAFT -> CONFIRMED (checkout) and
// DRAFT/CONFIRMED -> CANCELLED are the only transitions; CANCELLED is
// terminal.
const (
	ItineraryDraft     = "DRAFT"
	ItineraryConfirmed = "CONFIRMED"
	ItineraryCancelled = "CANCELLED"
)

// Itinerary aggregates at most one flight reservation and one hotel
// reservation for a user into a single billable unit.  TotalPriceCents
// is the sum of the linked reservation prices at creation time.  Only
// the last four digits of the payment card are ever stored.
//
// Fields:
//
//	ID              – primary key identifier.
//	UserID          – user who owns the itinerary.
//	TotalPriceCents – sum of linked reservation prices in cents.
//	Status          – DRAFT, CONFIRMED or CANCELLED.
//	CardLast4       – last four digits of the card used at checkout.
//	CardExpiry      – card expiry as MM/YY.
//	BookingDate     – when the itinerary was created.
//	UpdatedAt       – last update timestamp.
type Itinerary struct {
	ID              uint64    // itineraries.id
	UserID          uint64    // itineraries.user_id
	TotalPriceCents int64     // itineraries.total_price_cents
	Status          string    // itineraries.status
	CardLast4       string    // itineraries.card_last4
	CardExpiry      string    // itineraries.card_expiry
	BookingDate     time.Time // itineraries.booking_date
	UpdatedAt       time.Time // itineraries.updated_at
}
