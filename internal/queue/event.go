// Package queue defines message payloads exchanged over the message broker.
package queue

// ItineraryConfirmedEvent is published when an itinerary checkout
// succeeds.  It carries enough detail for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type ItineraryConfirmedEvent struct {
	ItineraryID      uint64 `json:"itinerary_id"`
	UserID           uint64 `json:"user_id"`
	UserEmail        string `json:"user_email"`
	FlightBookingRef string `json:"flight_booking_ref,omitempty"`
	HotelName        string `json:"hotel_name,omitempty"`
	CheckIn          string `json:"check_in,omitempty"`
	CheckOut         string `json:"check_out,omitempty"`
	TotalPriceCents  int64  `json:"total_price_cents"`
	CardLast4        string `json:"card_last4"`
	ConfirmedAt      string `json:"confirmed_at"`
}
