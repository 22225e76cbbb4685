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

// ItineraryHandler groups reservations into itineraries and serves
// their lifecycle: create (DRAFT), list, detail and cancel.  Checkout
// lives in CheckoutHandler.
type ItineraryHandler struct {
	AFS          *afs.Client
	Users        *repository.UserRepo
	Itineraries  *repository.ItineraryRepo
	HotelRes     *repository.HotelReservationRepo
	FlightRes    *repository.FlightReservationRepo
	RoomTypes    *repository.RoomTypeRepo
	Availability *repository.AvailabilityRepo
	Notifs       *repository.NotificationRepo
}

func NewItineraryHandler(client *afs.Client, u *repository.UserRepo, it *repository.ItineraryRepo, hr *repository.HotelReservationRepo, fr *repository.FlightReservationRepo, rt *repository.RoomTypeRepo, av *repository.AvailabilityRepo, n *repository.NotificationRepo) *ItineraryHandler {
	return &ItineraryHandler{AFS: client, Users: u, Itineraries: it, HotelRes: hr, FlightRes: fr, RoomTypes: rt, Availability: av, Notifs: n}
}

type createItineraryReq struct {
	FlightReservationID *uint64 `json:"flight_reservation_id"`
	HotelReservationID  *uint64 `json:"hotel_reservation_id"`
}

// Create handles POST /itineraries.  At least one reservation must be
// given; the insert and both links run in one transaction so an
// already-linked reservation aborts the whole thing.
func (h *ItineraryHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createItineraryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.FlightReservationID == nil && req.HotelReservationID == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "at least one reservation is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	tx, err := h.Itineraries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin itinerary failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var total int64
	if req.FlightReservationID != nil {
		owner, linked, price, err := h.FlightRes.GetForLinkTx(ctx, tx, *req.FlightReservationID)
		if err != nil {
			return repoError(c, err, "load flight reservation failed")
		}
		if owner != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		if linked != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "flight reservation already belongs to an itinerary"})
		}
		total += price
	}
	if req.HotelReservationID != nil {
		owner, linked, price, _, err := h.HotelRes.GetForLinkTx(ctx, tx, *req.HotelReservationID)
		if err != nil {
			return repoError(c, err, "load hotel reservation failed")
		}
		if owner != uid {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		if linked != nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "hotel reservation already belongs to an itinerary"})
		}
		total += price
	}

	it := model.Itinerary{
		UserID:          uid,
		TotalPriceCents: total,
		Status:          model.ItineraryDraft,
	}
	if err := h.Itineraries.CreateTx(ctx, tx, &it); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create itinerary failed"})
	}
	if req.FlightReservationID != nil {
		if err := h.FlightRes.LinkItineraryTx(ctx, tx, *req.FlightReservationID, it.ID); err != nil {
			return repoError(c, err, "link flight reservation failed")
		}
	}
	if req.HotelReservationID != nil {
		if err := h.HotelRes.LinkItineraryTx(ctx, tx, *req.HotelReservationID, it.ID); err != nil {
			return repoError(c, err, "link hotel reservation failed")
		}
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit itinerary failed"})
	}
	committed = true

	if _, nerr := h.Notifs.Create(ctx, uid, "Your itinerary was created. Check out to confirm it."); nerr != nil {
		c.Logger().Warnf("notify user %d failed: %v", uid, nerr)
	}
	return c.JSON(http.StatusCreated, it)
}

// itineraryDetail is an itinerary with its linked reservations.
type itineraryDetail struct {
	Itinerary model.Itinerary          `json:"itinerary"`
	Flight    *model.FlightReservation `json:"flight,omitempty"`
	Hotel     *model.HotelReservation  `json:"hotel,omitempty"`
}

func (h *ItineraryHandler) detail(ctx context.Context, it model.Itinerary) itineraryDetail {
	d := itineraryDetail{Itinerary: it}
	if f, err := h.FlightRes.GetByItinerary(ctx, it.ID); err == nil {
		d.Flight = &f
	}
	if hr, err := h.HotelRes.GetByItinerary(ctx, it.ID); err == nil {
		d.Hotel = &hr
	}
	return d
}

// List handles GET /itineraries.
func (h *ItineraryHandler) List(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	list, err := h.Itineraries.ListByUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list itineraries failed"})
	}
	out := make([]itineraryDetail, 0, len(list))
	for _, it := range list {
		out = append(out, h.detail(ctx, it))
	}
	return c.JSON(http.StatusOK, echo.Map{"itineraries": out})
}

// Get handles GET /itineraries/:id.
func (h *ItineraryHandler) Get(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid itinerary id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	it, err := h.Itineraries.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return repoError(c, err, "load itinerary failed")
	}
	return c.JSON(http.StatusOK, h.detail(ctx, it))
}

// Cancel handles DELETE /itineraries/:id: cancels the itinerary and
// everything linked to it.  The flight leg is cancelled with the
// supplier first; if the supplier refuses, nothing local changes.
func (h *ItineraryHandler) Cancel(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid itinerary id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 20*time.Second)
	defer cancel()

	it, err := h.Itineraries.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return repoError(c, err, "load itinerary failed")
	}
	if it.Status == model.ItineraryCancelled {
		return c.NoContent(http.StatusNoContent)
	}

	// Supplier cancellation happens before any local write so a refusal
	// leaves the itinerary fully intact.
	flight, flightErr := h.FlightRes.GetByItinerary(ctx, it.ID)
	hasFlight := flightErr == nil
	if hasFlight && flight.Status != afs.StatusCancelled {
		u, err := h.Users.GetByID(ctx, uid)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
		}
		booking, err := h.AFS.CancelBooking(ctx, flight.AfsBookingID, u.LastName)
		if err != nil {
			return afsError(c, err, "cancel with supplier failed")
		}
		if booking.Status != afs.StatusCancelled {
			return c.JSON(http.StatusConflict, echo.Map{"error": "supplier did not cancel the flight"})
		}
		if err := h.FlightRes.UpdateStatus(ctx, flight.ID, afs.StatusCancelled); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "sync flight status failed"})
		}
	}

	hotelRes, hotelErr := h.HotelRes.GetByItinerary(ctx, it.ID)
	hasHotel := hotelErr == nil

	tx, err := h.Itineraries.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin cancel failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if hasHotel && hotelRes.Status != model.ReservationCancelled {
		if _, err := h.HotelRes.MarkCancelledTx(ctx, tx, hotelRes.ID); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel hotel reservation failed"})
		}
		nights := repository.DaysBetween(hotelRes.CheckIn, hotelRes.CheckOut)
		if err := h.Availability.IncrementDaysTx(ctx, tx, hotelRes.RoomTypeID, nights); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restore availability failed"})
		}
	}
	if err := h.Itineraries.CancelTx(ctx, tx, it.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel itinerary failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit cancel failed"})
	}
	committed = true

	if hasHotel && hotelRes.Status != model.ReservationCancelled {
		if err := h.RoomTypes.IncrementCurrentAvailability(ctx, hotelRes.RoomTypeID); err != nil {
			c.Logger().Warnf("restore template availability failed for room type %d: %v", hotelRes.RoomTypeID, err)
		}
	}
	if _, nerr := h.Notifs.Create(ctx, uid, "Your itinerary was cancelled."); nerr != nil {
		c.Logger().Warnf("notify user %d failed: %v", uid, nerr)
	}
	return c.NoContent(http.StatusNoContent)
}
