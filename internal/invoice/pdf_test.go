package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFullInvoice(t *testing.T) {
	ret := time.Date(2026, time.September, 20, 10, 0, 0, 0, time.UTC)
	out, err := Render(Data{
		ItineraryID:     7,
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		Status:          "CONFIRMED",
		BookingDate:     time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC),
		TotalPriceCents: 123450,
		CardLast4:       "4242",
		Flight: &FlightLine{
			BookingRef:  "REF123",
			Origin:      "YYZ",
			Destination: "CDG",
			DepartAt:    time.Date(2026, time.September, 10, 8, 30, 0, 0, time.UTC),
			ReturnAt:    &ret,
			PriceCents:  89900,
			Status:      "CONFIRMED",
		},
		Hotel: &HotelLine{
			HotelName:  "Hotel Lumiere",
			RoomType:   "Double Queen",
			CheckIn:    time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC),
			CheckOut:   time.Date(2026, time.September, 13, 0, 0, 0, 0, time.UTC),
			Nights:     3,
			PriceCents: 33550,
			Status:     "CONFIRMED",
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestRenderWithoutOptionalSections(t *testing.T) {
	out, err := Render(Data{
		ItineraryID:     1,
		CustomerName:    "Ada Lovelace",
		CustomerEmail:   "ada@example.com",
		Status:          "DRAFT",
		BookingDate:     time.Now(),
		TotalPriceCents: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(out[:4]))
}

func TestDollars(t *testing.T) {
	assert.Equal(t, "$0.00", dollars(0))
	assert.Equal(t, "$12.34", dollars(1234))
	assert.Equal(t, "$1234.50", dollars(123450))
}
