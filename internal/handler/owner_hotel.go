package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/config"
	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/repository"
	"github.com/flynext/flynext-server/internal/utils"
)

// OwnerHotelHandler serves hotel management endpoints for users with
// the OWNER role.  Create and Update accept multipart forms so the logo
// and gallery images arrive in the same request as the fields.
type OwnerHotelHandler struct {
	Cfg          config.Config
	Hotels       *repository.HotelRepo
	Reservations *repository.HotelReservationRepo
	RoomTypes    *repository.RoomTypeRepo
	Availability *repository.AvailabilityRepo
	Notifs       *repository.NotificationRepo
}

func NewOwnerHotelHandler(cfg config.Config, h *repository.HotelRepo, res *repository.HotelReservationRepo, rt *repository.RoomTypeRepo, av *repository.AvailabilityRepo, n *repository.NotificationRepo) *OwnerHotelHandler {
	return &OwnerHotelHandler{Cfg: cfg, Hotels: h, Reservations: res, RoomTypes: rt, Availability: av, Notifs: n}
}

// saveFormImages stores every file under the given multipart field and
// returns their paths.  Missing field means no images.
func (h *OwnerHotelHandler) saveFormImages(c echo.Context, field string) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, nil
	}
	files := form.File[field]
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		p, err := utils.SaveImage(fh, h.Cfg.UploadDir)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func uploadError(c echo.Context, err error) error {
	switch err {
	case utils.ErrUploadTooLarge:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image exceeds 5MB limit"})
	case utils.ErrUploadBadType:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "only jpeg, png and webp images are accepted"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store image failed"})
	}
}

// Create handles POST /hotels (multipart form).
func (h *OwnerHotelHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	name := c.FormValue("name")
	address := c.FormValue("address")
	location := c.FormValue("location")
	stars, err := strconv.Atoi(c.FormValue("star_rating"))
	if name == "" || address == "" || location == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, address and location are required"})
	}
	if err != nil || stars < 1 || stars > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "star_rating must be 1-5"})
	}

	hotel := model.Hotel{
		OwnerID:    uid,
		Name:       name,
		Address:    address,
		Location:   location,
		StarRating: uint8(stars),
	}
	if fh, err := c.FormFile("logo"); err == nil {
		p, err := utils.SaveImage(fh, h.Cfg.UploadDir)
		if err != nil {
			return uploadError(c, err)
		}
		hotel.Logo = &p
	}
	images, err := h.saveFormImages(c, "images")
	if err != nil {
		return uploadError(c, err)
	}
	hotel.Images = images

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Hotels.Create(ctx, &hotel)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create hotel failed"})
	}
	hotel.ID = id
	return c.JSON(http.StatusCreated, hotel)
}

// ListMine handles GET /hotels/owner.
func (h *OwnerHotelHandler) ListMine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hotels, err := h.Hotels.ListByOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list hotels failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"hotels": hotels})
}

// Update handles PUT /hotels/:id (multipart form, partial).
func (h *OwnerHotelHandler) Update(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}

	var name, address, location, logo *string
	var stars *int
	if v := c.FormValue("name"); v != "" {
		name = &v
	}
	if v := c.FormValue("address"); v != "" {
		address = &v
	}
	if v := c.FormValue("location"); v != "" {
		location = &v
	}
	if v := c.FormValue("star_rating"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 5 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "star_rating must be 1-5"})
		}
		stars = &n
	}
	if fh, err := c.FormFile("logo"); err == nil {
		p, err := utils.SaveImage(fh, h.Cfg.UploadDir)
		if err != nil {
			return uploadError(c, err)
		}
		logo = &p
	}
	images, err := h.saveFormImages(c, "images")
	if err != nil {
		return uploadError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hotels.Update(ctx, id, uid, name, address, location, stars, logo, images); err != nil {
		return repoError(c, err, "update hotel failed")
	}
	hotel, err := h.Hotels.GetByID(ctx, id)
	if err != nil {
		return repoError(c, err, "load hotel failed")
	}
	return c.JSON(http.StatusOK, hotel)
}

// Delete handles DELETE /hotels/:id.
func (h *OwnerHotelHandler) Delete(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid hotel id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Hotels.Delete(ctx, id, uid); err != nil {
		return repoError(c, err, "delete hotel failed")
	}
	return c.NoContent(http.StatusNoContent)
}

// Bookings handles GET /hotels/owner/bookings: every reservation across the
// owner's hotels, optionally filtered by hotel and date.
func (h *OwnerHotelHandler) Bookings(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	bookings, err := h.Reservations.ListByHotelOwner(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list bookings failed"})
	}

	// Optional filters applied in memory; the result set is one owner's.
	hotelFilter := c.QueryParam("hotel_id")
	dateFilter := c.QueryParam("date")
	if hotelFilter != "" || dateFilter != "" {
		var day time.Time
		if dateFilter != "" {
			var err error
			day, err = time.Parse("2006-01-02", dateFilter)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
			}
		}
		filtered := bookings[:0]
		for _, b := range bookings {
			if hotelFilter != "" && strconv.FormatUint(b.HotelID, 10) != hotelFilter {
				continue
			}
			if dateFilter != "" && (day.Before(repository.Day(b.CheckIn)) || !day.Before(repository.Day(b.CheckOut))) {
				continue
			}
			filtered = append(filtered, b)
		}
		bookings = filtered
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": bookings})
}

// CancelBooking handles DELETE /hotels/owner/bookings/:id: an owner may cancel
// any reservation on one of their hotels.  The guest gets a
// notification and the room goes back into the pool.
func (h *OwnerHotelHandler) CancelBooking(c echo.Context) error {
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
		return repoError(c, err, "load booking failed")
	}
	hotel, err := h.Hotels.GetByID(ctx, res.HotelID)
	if err != nil {
		return repoError(c, err, "load hotel failed")
	}
	if hotel.OwnerID != uid {
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
		c.Logger().Warnf("restore availability failed for room type %d: %v", res.RoomTypeID, err)
	}
	if _, err := h.Notifs.Create(ctx, res.UserID,
		"Your reservation at "+hotel.Name+" was cancelled by the hotel."); err != nil {
		c.Logger().Warnf("notify user %d failed: %v", res.UserID, err)
	}
	return c.NoContent(http.StatusNoContent)
}
