package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynext/flynext-server/internal/afs"
	"github.com/flynext/flynext-server/internal/repository"
)

func TestFlightCancelRequiresConfirmedBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// The supplier must never be contacted; an unreachable base URL
	// would fail the test if it were.
	h := NewFlightHandler(afs.New("http://supplier.invalid", "k"),
		repository.NewUserRepo(db),
		repository.NewFlightReservationRepo(db),
		repository.NewItineraryRepo(db),
		repository.NewNotificationRepo(db),
	)

	now := time.Now()
	dep := now.Add(48 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("FROM flight_reservations WHERE id=?")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "afs_booking_id",
			"outbound_depart_at", "outbound_origin", "outbound_arrive_at", "outbound_destination",
			"return_depart_at", "return_origin", "return_arrive_at", "return_destination",
			"price_cents", "status", "itinerary_id", "created_at", "updated_at",
		}).AddRow(5, 7, "REF9", dep, "YYZ", dep.Add(7*time.Hour), "CDG",
			nil, nil, nil, nil, 50000, afs.StatusScheduled, nil, now, now))

	c, rec := newJSONContext(http.MethodDelete, "/api/user/flight-bookings/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only confirmed bookings")
	assert.NoError(t, mock.ExpectationsWereMet())
}
