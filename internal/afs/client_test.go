package afs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchFlights(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "/api/flights", r.URL.Path)
		assert.Equal(t, "YYZ", r.URL.Query().Get("origin"))
		assert.Equal(t, "CDG", r.URL.Query().Get("destination"))
		assert.Equal(t, "2026-09-10", r.URL.Query().Get("date"))

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{
					"legs": 1,
					"flights": []map[string]interface{}{
						{
							"id":     "f1",
							"price":  499.99,
							"status": "SCHEDULED",
							"origin": map[string]string{"code": "YYZ", "city": "Toronto"},
							"destination": map[string]string{
								"code": "CDG", "city": "Paris",
							},
						},
					},
				},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "test-key")
	results, err := c.SearchFlights(context.Background(), "YYZ", "CDG", "2026-09-10")
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Len(t, results[0].Flights, 1)

	seg := results[0].Flights[0]
	assert.Equal(t, "f1", seg.ID)
	assert.Equal(t, "YYZ", seg.Origin.Code)
	assert.Equal(t, int64(49999), seg.PriceCents())
}

func TestPriceCentsRounding(t *testing.T) {
	assert.Equal(t, int64(10), Segment{Price: 0.1}.PriceCents())
	assert.Equal(t, int64(1999), Segment{Price: 19.99}.PriceCents())
	assert.Equal(t, int64(100), Segment{Price: 0.999}.PriceCents())
	assert.Equal(t, int64(0), Segment{}.PriceCents())
}

func TestCreateBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/bookings", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req BookingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"f1", "f2"}, req.FlightIDs)
		assert.Equal(t, "AB1234567", req.PassportNumber)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Booking{
			BookingReference: "REF123",
			Status:           StatusConfirmed,
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	b, err := c.CreateBooking(context.Background(), BookingRequest{
		Email:          "a@b.c",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		PassportNumber: "AB1234567",
		FlightIDs:      []string{"f1", "f2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "REF123", b.BookingReference)
	assert.Equal(t, StatusConfirmed, b.Status)
}

func TestSupplierErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "flight is full"})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.CreateBooking(context.Background(), BookingRequest{})
	require.Error(t, err)

	ae, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, ae.Status)
	assert.Equal(t, "flight is full", ae.Message)
}

func TestSupplierErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	_, err := c.Cities(context.Background())
	require.Error(t, err)

	ae, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, ae.Status)
	assert.Equal(t, "Internal Server Error", ae.Message)
}

func TestCancelBooking(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/bookings/cancel", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "REF123", body["bookingReference"])
		assert.Equal(t, "Lovelace", body["lastName"])

		_ = json.NewEncoder(w).Encode(Booking{BookingReference: "REF123", Status: StatusCancelled})
	}))
	defer srv.Close()

	c := New(srv.URL, "k")
	b, err := c.CancelBooking(context.Background(), "REF123", "Lovelace")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)
}
