package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/invoice"
	"github.com/flynext/flynext-server/internal/repository"
)

// InvoiceHandler renders an itinerary's invoice as a downloadable PDF.
type InvoiceHandler struct {
	Users       *repository.UserRepo
	Itineraries *repository.ItineraryRepo
	HotelRes    *repository.HotelReservationRepo
	FlightRes   *repository.FlightReservationRepo
	Hotels      *repository.HotelRepo
	RoomTypes   *repository.RoomTypeRepo
}

func NewInvoiceHandler(u *repository.UserRepo, it *repository.ItineraryRepo, hr *repository.HotelReservationRepo, fr *repository.FlightReservationRepo, h *repository.HotelRepo, rt *repository.RoomTypeRepo) *InvoiceHandler {
	return &InvoiceHandler{Users: u, Itineraries: it, HotelRes: hr, FlightRes: fr, Hotels: h, RoomTypes: rt}
}

// Get handles GET /invoice?itineraryId=.
func (h *InvoiceHandler) Get(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.QueryParam("itineraryId"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "itineraryId is required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	it, err := h.Itineraries.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return repoError(c, err, "load itinerary failed")
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}

	data := invoice.Data{
		ItineraryID:     it.ID,
		CustomerName:    u.FirstName + " " + u.LastName,
		CustomerEmail:   u.Email,
		Status:          it.Status,
		BookingDate:     it.BookingDate,
		TotalPriceCents: it.TotalPriceCents,
		CardLast4:       it.CardLast4,
	}
	if f, err := h.FlightRes.GetByItinerary(ctx, it.ID); err == nil {
		line := invoice.FlightLine{
			BookingRef:  f.AfsBookingID,
			Origin:      f.OutboundOrigin,
			Destination: f.OutboundDestination,
			DepartAt:    f.OutboundDepartAt,
			ReturnAt:    f.ReturnDepartAt,
			PriceCents:  f.PriceCents,
			Status:      f.Status,
		}
		data.Flight = &line
	}
	if hr, err := h.HotelRes.GetByItinerary(ctx, it.ID); err == nil {
		line := invoice.HotelLine{
			CheckIn:    hr.CheckIn,
			CheckOut:   hr.CheckOut,
			Nights:     len(repository.DaysBetween(hr.CheckIn, hr.CheckOut)),
			PriceCents: hr.PriceCents,
			Status:     hr.Status,
		}
		if hotel, err := h.Hotels.GetByID(ctx, hr.HotelID); err == nil {
			line.HotelName = hotel.Name
		}
		if rt, err := h.RoomTypes.GetByID(ctx, hr.RoomTypeID); err == nil {
			line.RoomType = rt.Name
		}
		data.Hotel = &line
	}

	pdf, err := invoice.Render(data)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "render invoice failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="invoice-%d.pdf"`, it.ID))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
