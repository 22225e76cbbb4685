package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/afs"
	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/repository"
)

// FlightHandler proxies flight search to the external supplier and
// keeps a local mirror of bookings made through it.  Supplier failures
// surface as 502 so clients can tell them apart from our own errors.
type FlightHandler struct {
	AFS          *afs.Client
	Users        *repository.UserRepo
	Reservations *repository.FlightReservationRepo
	Itineraries  *repository.ItineraryRepo
	Notifs       *repository.NotificationRepo
}

func NewFlightHandler(client *afs.Client, u *repository.UserRepo, fr *repository.FlightReservationRepo, it *repository.ItineraryRepo, n *repository.NotificationRepo) *FlightHandler {
	return &FlightHandler{AFS: client, Users: u, Reservations: fr, Itineraries: it, Notifs: n}
}

func afsError(c echo.Context, err error, fallback string) error {
	if ae, ok := err.(*afs.Error); ok {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight supplier: " + ae.Message})
	}
	return c.JSON(http.StatusBadGateway, echo.Map{"error": fallback})
}

// Search handles GET /flights/search.  A one-way search needs origin,
// destination and date; adding return_date also searches the reverse
// direction for a round trip.
func (h *FlightHandler) Search(c echo.Context) error {
	origin := c.QueryParam("origin")
	destination := c.QueryParam("destination")
	date := c.QueryParam("date")
	returnDate := c.QueryParam("return_date")
	if origin == "" || destination == "" || date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin, destination and date are required"})
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
	}
	if returnDate != "" {
		if _, err := time.Parse("2006-01-02", returnDate); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "return_date must be YYYY-MM-DD"})
		}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	outbound, err := h.AFS.SearchFlights(ctx, origin, destination, date)
	if err != nil {
		return afsError(c, err, "flight search failed")
	}
	resp := echo.Map{"outbound": outbound}
	if returnDate != "" {
		ret, err := h.AFS.SearchFlights(ctx, destination, origin, returnDate)
		if err != nil {
			return afsError(c, err, "flight search failed")
		}
		resp["return"] = ret
	}
	return c.JSON(http.StatusOK, resp)
}

type bookFlightReq struct {
	FlightIDs      []string `json:"flight_ids" validate:"required,min=1"`
	PassportNumber string   `json:"passport_number" validate:"required,len=9"`
}

// Book handles POST /flights/book.  Passenger identity comes from
// the stored profile; only the passport number travels in the request.
func (h *FlightHandler) Book(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookFlightReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	booking, err := h.AFS.CreateBooking(ctx, afs.BookingRequest{
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		PassportNumber: req.PassportNumber,
		FlightIDs:      req.FlightIDs,
	})
	if err != nil {
		return afsError(c, err, "flight booking failed")
	}
	if len(booking.Flights) == 0 {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight supplier returned no flights"})
	}

	res, err := mirrorFromBooking(uid, booking)
	if err != nil {
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "flight supplier returned malformed times"})
	}
	id, err := h.Reservations.Create(ctx, &res)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save reservation failed"})
	}
	res.ID = id

	if _, nerr := h.Notifs.Create(ctx, uid,
		"Your flight booking "+booking.BookingReference+" is confirmed."); nerr != nil {
		c.Logger().Warnf("notify user %d failed: %v", uid, nerr)
	}
	return c.JSON(http.StatusCreated, echo.Map{"reservation": res, "supplier": booking})
}

// mirrorFromBooking flattens the supplier's flight list into the local
// reservation shape.  Legs are split on the first segment whose origin
// equals the journey's final destination heading back; in practice the
// supplier returns outbound segments first, then return segments.
func mirrorFromBooking(uid uint64, b *afs.Booking) (model.FlightReservation, error) {
	var total int64
	for _, s := range b.Flights {
		total += s.PriceCents()
	}

	first := b.Flights[0]
	last := b.Flights[len(b.Flights)-1]

	res := model.FlightReservation{
		UserID:       uid,
		AfsBookingID: b.BookingReference,
		PriceCents:   total,
		Status:       b.Status,
	}

	// A round trip ends back where it started.  When that holds, the
	// return leg is the suffix of segments heading to the origin; the
	// first such segment marks the split.
	splitAt := -1
	if last.Destination.Code == first.Origin.Code {
		for i := 1; i < len(b.Flights); i++ {
			if b.Flights[i].Destination.Code == first.Origin.Code {
				splitAt = i
				break
			}
		}
	}

	outEnd := len(b.Flights) - 1
	if splitAt > 0 {
		outEnd = splitAt - 1
	}

	dep, err := time.Parse(time.RFC3339, first.DepartureTime)
	if err != nil {
		return res, err
	}
	arr, err := time.Parse(time.RFC3339, b.Flights[outEnd].ArrivalTime)
	if err != nil {
		return res, err
	}
	res.OutboundDepartAt = dep.UTC()
	res.OutboundOrigin = first.Origin.Code
	res.OutboundArriveAt = arr.UTC()
	res.OutboundDestination = b.Flights[outEnd].Destination.Code

	if splitAt > 0 {
		rFirst := b.Flights[splitAt]
		rLast := b.Flights[len(b.Flights)-1]
		rdep, err := time.Parse(time.RFC3339, rFirst.DepartureTime)
		if err != nil {
			return res, err
		}
		rarr, err := time.Parse(time.RFC3339, rLast.ArrivalTime)
		if err != nil {
			return res, err
		}
		rd, ra := rdep.UTC(), rarr.UTC()
		ro, rde := rFirst.Origin.Code, rLast.Destination.Code
		res.ReturnDepartAt = &rd
		res.ReturnOrigin = &ro
		res.ReturnArriveAt = &ra
		res.ReturnDestination = &rde
	}
	return res, nil
}

// ListMine handles GET /user/flight-bookings.
func (h *FlightHandler) ListMine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	list, err := h.Reservations.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list reservations failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// Get handles GET /user/flight-bookings/:id.  With ?verify=true the
// supplier is asked for the live status first and the local mirror is
// synced when it moved.
func (h *FlightHandler) Get(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load reservation failed")
	}
	if res.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if c.QueryParam("verify") != "true" {
		return c.JSON(http.StatusOK, res)
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	booking, err := h.AFS.RetrieveBooking(ctx, res.AfsBookingID, u.LastName)
	if err != nil {
		return afsError(c, err, "verify with supplier failed")
	}
	if booking.Status != res.Status {
		if err := h.Reservations.UpdateStatus(ctx, id, booking.Status); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync status failed"})
		}
		res.Status = booking.Status
	}
	return c.JSON(http.StatusOK, echo.Map{"reservation": res, "supplier": booking})
}

// Cancel handles DELETE /user/flight-bookings/:id.  The local status only
// flips when the supplier actually reports the booking cancelled; a
// refusal leaves the mirror untouched.
func (h *FlightHandler) Cancel(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load reservation failed")
	}
	if res.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if res.Status == afs.StatusCancelled {
		return c.NoContent(http.StatusNoContent)
	}
	if res.Status != afs.StatusConfirmed {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only confirmed bookings can be cancelled"})
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	booking, err := h.AFS.CancelBooking(ctx, res.AfsBookingID, u.LastName)
	if err != nil {
		return afsError(c, err, "cancel with supplier failed")
	}
	if booking.Status != afs.StatusCancelled {
		return c.JSON(http.StatusConflict, echo.Map{"error": "supplier did not cancel the booking"})
	}
	if err := h.Reservations.UpdateStatus(ctx, id, afs.StatusCancelled); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync status failed"})
	}
	if res.ItineraryID != nil {
		if err := h.Itineraries.AddToTotal(ctx, *res.ItineraryID, -res.PriceCents); err != nil {
			c.Logger().Warnf("adjust itinerary %d total failed: %v", *res.ItineraryID, err)
		}
	}
	if _, nerr := h.Notifs.Create(ctx, uid,
		"Your flight booking "+res.AfsBookingID+" was cancelled."); nerr != nil {
		c.Logger().Warnf("notify user %d failed: %v", uid, nerr)
	}
	return c.NoContent(http.StatusNoContent)
}
