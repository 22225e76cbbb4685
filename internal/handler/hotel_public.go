package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/repository"
)

// HotelPublicHandler serves unauthenticated hotel search and detail
// endpoints.  Search results report a starting (lowest nightly) price
// and, when a date range is given, only hotels with at least one room
// type free for every night of the stay.
type HotelPublicHandler struct {
	Hotels       *repository.HotelRepo
	RoomTypes    *repository.RoomTypeRepo
	Availability *repository.AvailabilityRepo
}

func NewHotelPublicHandler(h *repository.HotelRepo, rt *repository.RoomTypeRepo, av *repository.AvailabilityRepo) *HotelPublicHandler {
	return &HotelPublicHandler{Hotels: h, RoomTypes: rt, Availability: av}
}

type hotelSummary struct {
	ID                 uint64   `json:"id"`
	Name               string   `json:"name"`
	Address            string   `json:"address"`
	Location           string   `json:"location"`
	StarRating         uint8    `json:"star_rating"`
	Logo               *string  `json:"logo"`
	Images             []string `json:"images"`
	StartingPriceCents int64    `json:"starting_price_cents"`
}

type roomTypeDetail struct {
	ID                 uint64   `json:"id"`
	Name               string   `json:"name"`
	Amenities          string   `json:"amenities"`
	PricePerNightCents int64    `json:"price_per_night_cents"`
	Images             []string `json:"images"`
	RoomsLeft          *int     `json:"rooms_left,omitempty"`
	AvailableForDates  *bool    `json:"available_for_dates,omitempty"`
}

// parseDateRange reads optional check_in/check_out query params as
// YYYY-MM-DD.  Both or neither must be present and check_in must come
// before check_out.
func parseDateRange(c echo.Context) (from, to time.Time, ok bool, err string) {
	ci := c.QueryParam("check_in")
	co := c.QueryParam("check_out")
	if ci == "" && co == "" {
		return time.Time{}, time.Time{}, false, ""
	}
	if ci == "" || co == "" {
		return time.Time{}, time.Time{}, false, "check_in and check_out must be given together"
	}
	from, e1 := time.Parse("2006-01-02", ci)
	to, e2 := time.Parse("2006-01-02", co)
	if e1 != nil || e2 != nil {
		return time.Time{}, time.Time{}, false, "dates must be YYYY-MM-DD"
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, false, "check_in must be before check_out"
	}
	return from, to, true, ""
}

// roomFreeForStay reports whether the room type has at least one room on
// every night of [from, to).  The ledger window is seeded on demand from
// the template counter so never-booked dates count as available.
func (h *HotelPublicHandler) roomFreeForStay(ctx context.Context, rt model.RoomType, from, to time.Time) (bool, int, error) {
	nights := repository.DaysBetween(from, to)
	if len(nights) == 0 {
		return false, 0, nil
	}
	if err := h.Availability.EnsureWindow(ctx, rt.ID, nights[0], nights[len(nights)-1], rt.CurrentAvailability); err != nil {
		return false, 0, err
	}
	recs, err := h.Availability.ListWindow(ctx, rt.ID, nights[0], nights[len(nights)-1])
	if err != nil {
		return false, 0, err
	}
	if len(recs) < len(nights) {
		return false, 0, nil
	}
	min := recs[0].Availability
	for _, rec := range recs {
		if rec.Availability < min {
			min = rec.Availability
		}
	}
	return min > 0, min, nil
}

// Search handles GET /hotels with optional filters: city, name, stars,
// price_min/price_max (cents) and a check_in/check_out window.
func (h *HotelPublicHandler) Search(c echo.Context) error {
	var f repository.HotelFilter
	f.City = c.QueryParam("city")
	f.Name = c.QueryParam("name")
	if s := c.QueryParam("stars"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 5 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "stars must be 1-5"})
		}
		f.StarRating = n
	}
	if s := c.QueryParam("price_min"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price_min"})
		}
		f.PriceMinCents = n
	}
	if s := c.QueryParam("price_max"); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price_max"})
		}
		f.PriceMaxCents = n
	}
	from, to, hasDates, derr := parseDateRange(c)
	if derr != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": derr})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	hotels, err := h.Hotels.Search(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}

	out := make([]hotelSummary, 0, len(hotels))
	for _, hotel := range hotels {
		roomTypes, err := h.RoomTypes.ListByHotel(ctx, hotel.ID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
		}
		var starting int64
		anyFree := false
		for _, rt := range roomTypes {
			if hasDates {
				free, _, err := h.roomFreeForStay(ctx, rt, from, to)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
				}
				if !free {
					continue
				}
			}
			anyFree = true
			if starting == 0 || rt.PricePerNightCents < starting {
				starting = rt.PricePerNightCents
			}
		}
		if hasDates && !anyFree {
			continue
		}
		out = append(out, hotelSummary{
			ID:                 hotel.ID,
			Name:               hotel.Name,
			Address:            hotel.Address,
			Location:           hotel.Location,
			StarRating:         hotel.StarRating,
			Logo:               hotel.Logo,
			Images:             hotel.Images,
			StartingPriceCents: starting,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"hotels": out})
}

// Get handles GET /hotels/:id and returns the hotel together with its
// room types.  When a date range is supplied each room type also
// reports whether it is free for the stay and how many rooms are left.
func (h *HotelPublicHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	from, to, hasDates, derr := parseDateRange(c)
	if derr != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": derr})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load hotel failed")
	}
	roomTypes, err := h.RoomTypes.ListByHotel(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rooms failed"})
	}

	details := make([]roomTypeDetail, 0, len(roomTypes))
	for _, rt := range roomTypes {
		d := roomTypeDetail{
			ID:                 rt.ID,
			Name:               rt.Name,
			Amenities:          rt.Amenities,
			PricePerNightCents: rt.PricePerNightCents,
			Images:             rt.Images,
		}
		if hasDates {
			free, left, err := h.roomFreeForStay(ctx, rt, from, to)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load rooms failed"})
			}
			d.AvailableForDates = &free
			d.RoomsLeft = &left
		}
		details = append(details, d)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"hotel": hotelSummary{
			ID:         hotel.ID,
			Name:       hotel.Name,
			Address:    hotel.Address,
			Location:   hotel.Location,
			StarRating: hotel.StarRating,
			Logo:       hotel.Logo,
			Images:     hotel.Images,
		},
		"room_types": details,
	})
}
