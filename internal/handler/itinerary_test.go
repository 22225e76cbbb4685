package handler

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flynext/flynext-server/internal/afs"
	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/repository"
)

func newItineraryHandler(t *testing.T, client *afs.Client) (*ItineraryHandler, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewItineraryHandler(client,
		repository.NewUserRepo(db),
		repository.NewItineraryRepo(db),
		repository.NewHotelReservationRepo(db),
		repository.NewFlightReservationRepo(db),
		repository.NewRoomTypeRepo(db),
		repository.NewAvailabilityRepo(db),
		repository.NewNotificationRepo(db),
	)
	return h, mock
}

func TestItineraryCreateSumsLinkedPrices(t *testing.T) {
	h, mock := newItineraryHandler(t, nil)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, itinerary_id, price_cents FROM flight_reservations WHERE id=?")).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "itinerary_id", "price_cents"}).
			AddRow(7, nil, 30000))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, itinerary_id, price_cents, hotel_id FROM hotel_reservations WHERE id=?")).
		WithArgs(int64(31)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "itinerary_id", "price_cents", "hotel_id"}).
			AddRow(7, nil, 20000, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO itineraries")).
		WithArgs(int64(7), int64(50000), model.ItineraryDraft).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT booking_date, updated_at FROM itineraries WHERE id=?")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_date", "updated_at"}).AddRow(now, now))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE flight_reservations SET itinerary_id=?")).
		WithArgs(int64(11), int64(21)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE hotel_reservations SET itinerary_id=?")).
		WithArgs(int64(11), int64(31)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notifications")).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newJSONContext(http.MethodPost, "/api/itineraries",
		`{"flight_reservation_id":21,"hotel_reservation_id":31}`)
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"TotalPriceCents":50000`) // 30000 + 20000
	assert.Contains(t, rec.Body.String(), `"Status":"DRAFT"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItineraryCreateRejectsLinkedReservation(t *testing.T) {
	h, mock := newItineraryHandler(t, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, itinerary_id, price_cents FROM flight_reservations WHERE id=?")).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "itinerary_id", "price_cents"}).
			AddRow(7, 5, 30000))
	mock.ExpectRollback()

	c, rec := newJSONContext(http.MethodPost, "/api/itineraries", `{"flight_reservation_id":21}`)
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already belongs to an itinerary")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItineraryCancelKeepsStateWhenSupplierRefuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/bookings/cancel", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"bookingReference":"REF9","status":"CONFIRMED"}`))
	}))
	defer srv.Close()

	h, mock := newItineraryHandler(t, afs.New(srv.URL, "k"))
	now := time.Now()
	dep := now.Add(48 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("FROM itineraries WHERE id=?")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "total_price_cents", "status", "card_last4", "card_expiry", "booking_date", "updated_at",
		}).AddRow(11, 7, 50000, model.ItineraryConfirmed, nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM flight_reservations WHERE itinerary_id=?")).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "afs_booking_id",
			"outbound_depart_at", "outbound_origin", "outbound_arrive_at", "outbound_destination",
			"return_depart_at", "return_origin", "return_arrive_at", "return_destination",
			"price_cents", "status", "itinerary_id", "created_at", "updated_at",
		}).AddRow(21, 7, "REF9", dep, "YYZ", dep.Add(7*time.Hour), "CDG",
			nil, nil, nil, nil, 30000, afs.StatusConfirmed, 11, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id=?")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "first_name", "last_name", "phone_number",
			"profile_picture", "role", "is_active", "created_at", "updated_at",
		}).AddRow(7, "ada@example.com", "x", "Ada", "Liu", nil, nil, "CUSTOMER", true, now, now))
	// Supplier refuses: no transaction is opened and nothing local changes.

	c, rec := newJSONContext(http.MethodDelete, "/api/itineraries/11", "")
	c.SetParamNames("id")
	c.SetParamValues("11")
	c.Set("user_id", uint64(7))

	require.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "supplier did not cancel the flight")
	assert.NoError(t, mock.ExpectationsWereMet())
}
