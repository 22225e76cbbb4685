package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynext/flynext-server/internal/repository"
)

type testValidator struct{ v *validator.Validate }

func (tv *testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

// newJSONContext builds an Echo context carrying a JSON body, with the
// request validator wired the way main() wires it.
func newJSONContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = &testValidator{v: validator.New()}
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func newBookingHandler(t *testing.T) (*HotelBookingHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewHotelBookingHandler(
		repository.NewHotelRepo(db),
		repository.NewRoomTypeRepo(db),
		repository.NewAvailabilityRepo(db),
		repository.NewHotelReservationRepo(db),
		repository.NewItineraryRepo(db),
		repository.NewNotificationRepo(db),
	)
	return h, mock
}

func roomTypeRow(id, hotelID, priceCents int64, avail int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "hotel_id", "name", "amenities", "price_per_night_cents",
		"current_availability", "images", "created_at", "updated_at",
	}).AddRow(id, hotelID, "Standard", "wifi", priceCents, avail, "[]", now, now)
}

func hotelRow(id, ownerID int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "owner_id", "name", "address", "location", "star_rating",
		"logo", "images", "created_at", "updated_at",
	}).AddRow(id, ownerID, "Harbor Inn", "1 Front St", "Toronto", 4, nil, "[]", now, now)
}

func bookBody(roomTypeID int64, checkIn, checkOut time.Time) string {
	return fmt.Sprintf(`{"room_type_id":%d,"check_in":%q,"check_out":%q}`,
		roomTypeID, checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"))
}

func TestBookRejectsStayBeyondBookableWindow(t *testing.T) {
	h, mock := newBookingHandler(t)

	checkIn := repository.Day(time.Now()).AddDate(1, 0, 0)
	checkOut := checkIn.AddDate(0, 0, 2)

	mock.ExpectQuery(regexp.QuoteMeta("FROM room_types WHERE id=?")).
		WithArgs(int64(4)).
		WillReturnRows(roomTypeRow(4, 3, 10000, 5))
	// A stay entirely past the window gets no ledger rows seeded, so the
	// first decrement fails on the unseeded night and the booking rolls
	// back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE room_availability SET availability = availability - 1")).
		WithArgs(int64(4), checkIn.Format("2006-01-02")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM room_availability")).
		WithArgs(int64(4), checkIn.Format("2006-01-02")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/api/hotels/book", bookBody(4, checkIn, checkOut))
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "outside the bookable window")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookNotifiesTravelerAndOwner(t *testing.T) {
	h, mock := newBookingHandler(t)

	checkIn := repository.Day(time.Now()).AddDate(0, 0, 1)
	checkOut := checkIn.AddDate(0, 0, 2)
	nights := repository.DaysBetween(checkIn, checkOut)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM room_types WHERE id=?")).
		WithArgs(int64(4)).
		WillReturnRows(roomTypeRow(4, 3, 10000, 5))
	mock.ExpectExec(regexp.QuoteMeta("INSERT IGNORE INTO room_availability")).
		WillReturnResult(sqlmock.NewResult(0, int64(len(nights))))
	mock.ExpectBegin()
	for _, d := range nights {
		mock.ExpectExec(regexp.QuoteMeta("UPDATE room_availability SET availability = availability - 1")).
			WithArgs(int64(4), d.Format("2006-01-02")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO hotel_reservations")).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at, updated_at FROM hotel_reservations WHERE id=?")).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
	mock.ExpectCommit()
	mock.ExpectQuery(regexp.QuoteMeta("FROM hotels WHERE id=?")).
		WithArgs(int64(3)).
		WillReturnRows(hotelRow(3, 55))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(int64(55), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))

	c, rec := newJSONContext(http.MethodPost, "/api/hotels/book", bookBody(4, checkIn, checkOut))
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Book(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"PriceCents":20000`) // 2 nights x 10000
	assert.NoError(t, mock.ExpectationsWereMet())
}
