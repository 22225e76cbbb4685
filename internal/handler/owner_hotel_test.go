package handler

import (
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynext/flynext-server/internal/config"
	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/repository"
)

func TestOwnerCancelRestoresPerDayLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewOwnerHotelHandler(config.Config{},
		repository.NewHotelRepo(db),
		repository.NewHotelReservationRepo(db),
		repository.NewRoomTypeRepo(db),
		repository.NewAvailabilityRepo(db),
		repository.NewNotificationRepo(db),
	)

	checkIn := time.Date(2026, time.September, 10, 0, 0, 0, 0, time.UTC)
	checkOut := checkIn.AddDate(0, 0, 2)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM hotel_reservations WHERE id=?")).
		WithArgs(int64(12)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "hotel_id", "room_type_id", "check_in", "check_out",
			"price_cents", "status", "itinerary_id", "created_at", "updated_at",
		}).AddRow(12, 7, 3, 4, checkIn, checkOut, 20000, model.ReservationConfirmed, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM hotels WHERE id=?")).
		WithArgs(int64(3)).
		WillReturnRows(hotelRow(3, 55))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE hotel_reservations SET status=?")).
		WithArgs(model.ReservationCancelled, int64(12), model.ReservationCancelled).
		WillReturnResult(sqlmock.NewResult(0, 1))
	for _, d := range repository.DaysBetween(checkIn, checkOut) {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE room_availability SET availability = availability + 1")).
			WithArgs(int64(4), d.Format("2006-01-02")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE room_types SET current_availability = current_availability + 1")).
		WithArgs(int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newJSONContext(http.MethodDelete, "/api/hotels/owner/bookings/12", "")
	c.SetParamNames("id")
	c.SetParamValues("12")
	c.Set("user_id", uint64(55))

	require.NoError(t, h.CancelBooking(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
