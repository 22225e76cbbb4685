package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/repository"
)

// HotelBookingHandler serves customer-side room reservations.
type HotelBookingHandler struct {
	Hotels       *repository.HotelRepo
	RoomTypes    *repository.RoomTypeRepo
	Availability *repository.AvailabilityRepo
	Reservations *repository.HotelReservationRepo
	Itineraries  *repository.ItineraryRepo
	Notifs       *repository.NotificationRepo
}

func NewHotelBookingHandler(h *repository.HotelRepo, rt *repository.RoomTypeRepo, av *repository.AvailabilityRepo, res *repository.HotelReservationRepo, it *repository.ItineraryRepo, n *repository.NotificationRepo) *HotelBookingHandler {
	return &HotelBookingHandler{Hotels: h, RoomTypes: rt, Availability: av, Reservations: res, Itineraries: it, Notifs: n}
}

type bookRoomReq struct {
	RoomTypeID uint64 `json:"room_type_id" validate:"required"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
}

// Book handles POST /hotels/book.  The per-night decrement and the
// reservation insert share one transaction: if any night is sold out or
// unseeded, the whole booking rolls back and no night loses a room.
func (h *HotelBookingHandler) Book(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookRoomReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	checkIn, err1 := time.Parse("2006-01-02", req.CheckIn)
	checkOut, err2 := time.Parse("2006-01-02", req.CheckOut)
	if err1 != nil || err2 != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be YYYY-MM-DD"})
	}
	if !checkIn.Before(checkOut) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be before check_out"})
	}
	if repository.Day(checkIn).Before(repository.Day(time.Now())) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in cannot be in the past"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rt, err := h.RoomTypes.GetByID(ctx, req.RoomTypeID)
	if err != nil {
		return repoError(c, err, "load room type failed")
	}
	nights := repository.DaysBetween(checkIn, checkOut)
	// Seed any missing ledger rows before entering the transaction, but
	// never past the bookable window: a night beyond it stays unseeded
	// and fails the decrement as an unsupported date.
	seedTo := nights[len(nights)-1]
	if windowEnd := repository.Day(time.Now()).AddDate(0, availabilityWindowMonths, 0); seedTo.After(windowEnd) {
		seedTo = windowEnd
	}
	if !nights[0].After(seedTo) {
		if err := h.Availability.EnsureWindow(ctx, rt.ID, nights[0], seedTo, rt.CurrentAvailability); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "prepare availability failed"})
		}
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin booking failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := h.Availability.DecrementDaysTx(ctx, tx, rt.ID, nights); err != nil {
		return repoError(c, err, "reserve rooms failed")
	}

	res := model.HotelReservation{
		UserID:     uid,
		HotelID:    rt.HotelID,
		RoomTypeID: rt.ID,
		CheckIn:    repository.Day(checkIn),
		CheckOut:   repository.Day(checkOut),
		PriceCents: int64(len(nights)) * rt.PricePerNightCents,
		Status:     model.ReservationConfirmed,
	}
	if err := h.Reservations.CreateTx(ctx, tx, &res); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create reservation failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit booking failed"})
	}
	committed = true

	hotel, err := h.Hotels.GetByID(ctx, res.HotelID)
	if err == nil {
		if _, nerr := h.Notifs.Create(ctx, uid, fmt.Sprintf(
			"Your reservation at %s (%s to %s) is confirmed.",
			hotel.Name, res.CheckIn.Format("2006-01-02"), res.CheckOut.Format("2006-01-02"))); nerr != nil {
			c.Logger().Warnf("notify user %d failed: %v", uid, nerr)
		}
		if _, nerr := h.Notifs.Create(ctx, hotel.OwnerID, fmt.Sprintf(
			"New booking at %s: %s to %s.",
			hotel.Name, res.CheckIn.Format("2006-01-02"), res.CheckOut.Format("2006-01-02"))); nerr != nil {
			c.Logger().Warnf("notify owner %d failed: %v", hotel.OwnerID, nerr)
		}
	}
	return c.JSON(http.StatusCreated, res)
}

// ListMine handles GET /user/hotel-bookings.
func (h *HotelBookingHandler) ListMine(c echo.Context) error {
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

// Get handles GET /user/hotel-bookings/:id.
func (h *HotelBookingHandler) Get(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load reservation failed")
	}
	if res.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, res)
}

// Cancel handles DELETE /hotels/book?reservationId=.  Cancelling twice
// is a no-op.  The room goes back to the template counter and to the
// per-day ledger for the stay's nights; a linked itinerary loses the
// price.
func (h *HotelBookingHandler) Cancel(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.QueryParam("reservationId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservationId is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Reservations.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load reservation failed")
	}
	if res.UserID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if res.Status == model.ReservationCancelled {
		return c.NoContent(http.StatusNoContent)
	}

	tx, err := h.Reservations.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "begin cancel failed"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	n, err := h.Reservations.MarkCancelledTx(ctx, tx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	if n == 0 {
		// Lost a race with another cancel; nothing left to do.
		_ = tx.Rollback()
		return c.NoContent(http.StatusNoContent)
	}
	nights := repository.DaysBetween(res.CheckIn, res.CheckOut)
	if err := h.Availability.IncrementDaysTx(ctx, tx, res.RoomTypeID, nights); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "restore availability failed"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "commit cancel failed"})
	}
	committed = true

	if err := h.RoomTypes.IncrementCurrentAvailability(ctx, res.RoomTypeID); err != nil {
		c.Logger().Warnf("restore template availability failed for room type %d: %v", res.RoomTypeID, err)
	}
	if res.ItineraryID != nil {
		if err := h.Itineraries.AddToTotal(ctx, *res.ItineraryID, -res.PriceCents); err != nil {
			c.Logger().Warnf("adjust itinerary %d total failed: %v", *res.ItineraryID, err)
		}
	}
	if _, err := h.Notifs.Create(ctx, uid, "Your hotel reservation was cancelled."); err != nil {
		c.Logger().Warnf("notify user %d failed: %v", uid, err)
	}
	return c.NoContent(http.StatusNoContent)
}
