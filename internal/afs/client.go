// Package afs implements the HTTP client for the external flight
// supplier ("AFS").  The supplier is treated as a black box: searching,
// booking, verifying and cancelling flights all happen on its side and
// this package only shapes requests and decodes responses.  Every call
// takes a context so request-scoped deadlines propagate to the supplier.
package afs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Flight status strings reported by the supplier.
const (
	StatusScheduled = "SCHEDULED"
	StatusConfirmed = "CONFIRMED"
	StatusCancelled = "CANCELLED"
)

// Client talks to the AFS API.  The zero value is not usable; construct
// one with New.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New returns a Client for the given base URL and API key.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Endpoint is a terminus of a flight segment (origin or destination).
type Endpoint struct {
	City    string `json:"city"`
	Code    string `json:"code"`
	Country string `json:"country"`
	Name    string `json:"name"`
}

// Segment is one flight leg as reported by the supplier.  Price is in
// supplier currency units (dollars); use PriceCents for arithmetic.
type Segment struct {
	ID      string `json:"id"`
	Airline struct {
		Code string `json:"code"`
		Name string `json:"name"`
	} `json:"airline"`
	DepartureTime  string   `json:"departureTime"`
	ArrivalTime    string   `json:"arrivalTime"`
	Origin         Endpoint `json:"origin"`
	Destination    Endpoint `json:"destination"`
	Price          float64  `json:"price"`
	Currency       string   `json:"currency"`
	AvailableSeats int      `json:"availableSeats"`
	Status         string   `json:"status"`
}

// PriceCents converts the supplier's decimal price to integer cents.
func (s Segment) PriceCents() int64 {
	return int64(math.Round(s.Price * 100))
}

// Result groups the segments of one itinerary option in a search
// response together with the number of legs.
type Result struct {
	Flights []Segment `json:"flights"`
	Legs    int       `json:"legs"`
}

// BookingRequest carries the passenger details the supplier requires to
// create a booking.
type BookingRequest struct {
	Email          string   `json:"email"`
	FirstName      string   `json:"firstName"`
	LastName       string   `json:"lastName"`
	PassportNumber string   `json:"passportNumber"`
	FlightIDs      []string `json:"flightIds"`
}

// Booking is the supplier's view of a created or retrieved booking.
type Booking struct {
	BookingReference string    `json:"bookingReference"`
	TicketNumber     string    `json:"ticketNumber,omitempty"`
	Status           string    `json:"status"`
	Flights          []Segment `json:"flights"`
	CreatedAt        string    `json:"createdAt,omitempty"`
}

// Error wraps a non-2xx supplier response.  Handlers translate it to a
// 502-style ExternalServiceError.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("afs: %s (status %d)", e.Message, e.Status)
}

// SearchFlights queries GET /api/flights for a given origin, destination
// and date (YYYY-MM-DD) and returns the result list.
func (c *Client) SearchFlights(ctx context.Context, origin, destination, date string) ([]Result, error) {
	q := url.Values{}
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("date", date)
	var out struct {
		Results []Result `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/flights?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// City is one entry in the supplier's static city list.
type City struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Airport is one entry in the supplier's static airport list.
type Airport struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// Cities returns the supplier's static city list.
func (c *Client) Cities(ctx context.Context) ([]City, error) {
	var out []City
	if err := c.do(ctx, http.MethodGet, "/api/cities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Airports returns the supplier's static airport list.
func (c *Client) Airports(ctx context.Context) ([]Airport, error) {
	var out []Airport
	if err := c.do(ctx, http.MethodGet, "/api/airports", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBooking posts passenger details to the supplier and returns the
// confirmed booking including its reference and flight legs.
func (c *Client) CreateBooking(ctx context.Context, req BookingRequest) (*Booking, error) {
	var out Booking
	if err := c.do(ctx, http.MethodPost, "/api/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RetrieveBooking fetches a booking by reference and passenger last name.
// The supplier uses the last name as a weak shared secret.
func (c *Client) RetrieveBooking(ctx context.Context, bookingReference, lastName string) (*Booking, error) {
	q := url.Values{}
	q.Set("bookingReference", bookingReference)
	q.Set("lastName", lastName)
	var out Booking
	if err := c.do(ctx, http.MethodGet, "/api/bookings/retrieve?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelBooking requests cancellation of a booking.  Callers must check
// the returned status: only StatusCancelled means the supplier actually
// cancelled the booking.
func (c *Client) CancelBooking(ctx context.Context, bookingReference, lastName string) (*Booking, error) {
	body := map[string]string{
		"bookingReference": bookingReference,
		"lastName":         lastName,
	}
	var out Booking
	if err := c.do(ctx, http.MethodPost, "/api/bookings/cancel", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do performs one request/response round trip.  Non-2xx responses are
// decoded for a {"message": ...} payload and surfaced as *Error.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-key", c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(raw, &e)
		if e.Message == "" {
			e.Message = http.StatusText(resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}
