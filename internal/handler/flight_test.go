package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynext/flynext-server/internal/afs"
)

func segment(id, origin, dest, depart, arrive string, price float64) afs.Segment {
	var s afs.Segment
	s.ID = id
	s.Origin.Code = origin
	s.Destination.Code = dest
	s.DepartureTime = depart
	s.ArrivalTime = arrive
	s.Price = price
	return s
}

func TestMirrorFromBookingOneWay(t *testing.T) {
	b := &afs.Booking{
		BookingReference: "REF1",
		Status:           afs.StatusConfirmed,
		Flights: []afs.Segment{
			segment("f1", "YYZ", "LHR", "2026-09-10T08:00:00Z", "2026-09-10T20:00:00Z", 500.50),
			segment("f2", "LHR", "CDG", "2026-09-10T22:00:00Z", "2026-09-10T23:30:00Z", 99.49),
		},
	}
	res, err := mirrorFromBooking(7, b)
	require.NoError(t, err)

	assert.Equal(t, uint64(7), res.UserID)
	assert.Equal(t, "REF1", res.AfsBookingID)
	assert.Equal(t, "YYZ", res.OutboundOrigin)
	assert.Equal(t, "CDG", res.OutboundDestination)
	assert.Equal(t, int64(50050+9949), res.PriceCents)
	assert.Nil(t, res.ReturnDepartAt)
	assert.Nil(t, res.ReturnOrigin)
}

func TestMirrorFromBookingRoundTrip(t *testing.T) {
	b := &afs.Booking{
		BookingReference: "REF2",
		Status:           afs.StatusConfirmed,
		Flights: []afs.Segment{
			segment("f1", "YYZ", "CDG", "2026-09-10T08:00:00Z", "2026-09-10T20:00:00Z", 400),
			segment("f2", "CDG", "YYZ", "2026-09-20T10:00:00Z", "2026-09-20T13:00:00Z", 420),
		},
	}
	res, err := mirrorFromBooking(7, b)
	require.NoError(t, err)

	assert.Equal(t, "YYZ", res.OutboundOrigin)
	assert.Equal(t, "CDG", res.OutboundDestination)
	require.NotNil(t, res.ReturnOrigin)
	assert.Equal(t, "CDG", *res.ReturnOrigin)
	require.NotNil(t, res.ReturnDestination)
	assert.Equal(t, "YYZ", *res.ReturnDestination)
	require.NotNil(t, res.ReturnDepartAt)
	assert.Equal(t, "2026-09-20T10:00:00Z", res.ReturnDepartAt.Format("2006-01-02T15:04:05Z"))
	assert.Equal(t, int64(82000), res.PriceCents)
}

func TestMirrorFromBookingBadTimestamp(t *testing.T) {
	b := &afs.Booking{
		BookingReference: "REF3",
		Flights: []afs.Segment{
			segment("f1", "YYZ", "CDG", "not-a-time", "2026-09-10T20:00:00Z", 400),
		},
	}
	_, err := mirrorFromBooking(1, b)
	assert.Error(t, err)
}
