package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/config"
	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/repository"
)

// availabilityWindowMonths is how far ahead the per-day ledger gets
// seeded when a room type's availability is viewed.
const availabilityWindowMonths = 2

// OwnerRoomTypeHandler serves room type management for hotel owners.
type OwnerRoomTypeHandler struct {
	Cfg          config.Config
	Hotels       *repository.HotelRepo
	RoomTypes    *repository.RoomTypeRepo
	Availability *repository.AvailabilityRepo
}

func NewOwnerRoomTypeHandler(cfg config.Config, h *repository.HotelRepo, rt *repository.RoomTypeRepo, av *repository.AvailabilityRepo) *OwnerRoomTypeHandler {
	return &OwnerRoomTypeHandler{Cfg: cfg, Hotels: h, RoomTypes: rt, Availability: av}
}

// requireHotelOwner loads the hotel and verifies the caller owns it.
func (h *OwnerRoomTypeHandler) requireHotelOwner(ctx context.Context, hotelID, uid uint64) error {
	hotel, err := h.Hotels.GetByID(ctx, hotelID)
	if err != nil {
		return err
	}
	if hotel.OwnerID != uid {
		return repository.ErrForbidden
	}
	return nil
}

type roomTypeReq struct {
	Name                string   `json:"name" validate:"required"`
	Amenities           string   `json:"amenities"`
	PricePerNightCents  int64    `json:"price_per_night_cents" validate:"required,gt=0"`
	CurrentAvailability int      `json:"current_availability" validate:"gte=0"`
	Images              []string `json:"images"`
}

// Create handles POST /hotels/:id/room-types.
func (h *OwnerRoomTypeHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	var req roomTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireHotelOwner(ctx, hotelID, uid); err != nil {
		return repoError(c, err, "load hotel failed")
	}

	rt := model.RoomType{
		HotelID:             hotelID,
		Name:                req.Name,
		Amenities:           req.Amenities,
		PricePerNightCents:  req.PricePerNightCents,
		CurrentAvailability: req.CurrentAvailability,
		Images:              req.Images,
	}
	id, err := h.RoomTypes.Create(ctx, &rt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create room type failed"})
	}
	rt.ID = id
	return c.JSON(http.StatusCreated, rt)
}

// List handles GET /hotels/:id/room-types.
func (h *OwnerRoomTypeHandler) List(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.requireHotelOwner(ctx, hotelID, uid); err != nil {
		return repoError(c, err, "load hotel failed")
	}
	roomTypes, err := h.RoomTypes.ListByHotel(ctx, hotelID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list room types failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_types": roomTypes})
}

type roomTypeUpdateReq struct {
	Name                *string  `json:"name"`
	Amenities           *string  `json:"amenities"`
	PricePerNightCents  *int64   `json:"price_per_night_cents"`
	CurrentAvailability *int     `json:"current_availability"`
	Images              []string `json:"images"`
}

// Update handles PUT /hotels/:hotelId/room-types/:id (partial).
func (h *OwnerRoomTypeHandler) Update(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, id, err := roomTypePath(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req roomTypeUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.PricePerNightCents != nil && *req.PricePerNightCents <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_per_night_cents must be positive"})
	}
	if req.CurrentAvailability != nil && *req.CurrentAvailability < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_availability cannot be negative"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt, err := h.RoomTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load room type failed")
	}
	if rt.HotelID != hotelID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
	}
	if err := h.requireHotelOwner(ctx, rt.HotelID, uid); err != nil {
		return repoError(c, err, "load hotel failed")
	}
	if err := h.RoomTypes.Update(ctx, id, req.Name, req.Amenities, req.PricePerNightCents, req.CurrentAvailability, req.Images); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update room type failed"})
	}
	rt, err = h.RoomTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load room type failed")
	}
	return c.JSON(http.StatusOK, rt)
}

// Delete handles DELETE /hotels/:hotelId/room-types/:id.
func (h *OwnerRoomTypeHandler) Delete(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, id, err := roomTypePath(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rt, err := h.RoomTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load room type failed")
	}
	if rt.HotelID != hotelID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
	}
	if err := h.requireHotelOwner(ctx, rt.HotelID, uid); err != nil {
		return repoError(c, err, "load hotel failed")
	}
	if err := h.RoomTypes.Delete(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete room type failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Get handles GET /hotels/:hotelId/room-types/:id.  Viewing a room type
// seeds the per-day ledger from today through two months out and
// returns it alongside the room type, so owners always see a full
// calendar even before any booking.
func (h *OwnerRoomTypeHandler) Get(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	hotelID, id, err := roomTypePath(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	rt, err := h.RoomTypes.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load room type failed")
	}
	if rt.HotelID != hotelID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "room type not found"})
	}
	if err := h.requireHotelOwner(ctx, rt.HotelID, uid); err != nil {
		return repoError(c, err, "load hotel failed")
	}

	from := repository.Day(time.Now())
	to := from.AddDate(0, availabilityWindowMonths, 0)
	if err := h.Availability.EnsureWindow(ctx, id, from, to, rt.CurrentAvailability); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "seed availability failed"})
	}
	recs, err := h.Availability.ListWindow(ctx, id, from, to)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load availability failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"room_type": rt, "availability": recs})
}

// roomTypePath pulls the nested hotel and room type ids out of the
// route.
func roomTypePath(c echo.Context) (hotelID, roomTypeID uint64, err error) {
	if hotelID, err = pathID(c, "hotelId"); err != nil {
		return 0, 0, err
	}
	if roomTypeID, err = pathID(c, "id"); err != nil {
		return 0, 0, err
	}
	return hotelID, roomTypeID, nil
}
