package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/queue"
	"github.com/flynext/flynext-server/internal/repository"
	queue_publisher "github.com/flynext/flynext-server/internal/service"
	"github.com/flynext/flynext-server/internal/utils"
)

// CheckoutHandler finalizes a DRAFT itinerary.  The card is validated
// and masked but never charged or stored beyond its last four digits.
type CheckoutHandler struct {
	Users       *repository.UserRepo
	Itineraries *repository.ItineraryRepo
	HotelRes    *repository.HotelReservationRepo
	FlightRes   *repository.FlightReservationRepo
	Hotels      *repository.HotelRepo
	Notifs      *repository.NotificationRepo
}

func NewCheckoutHandler(u *repository.UserRepo, it *repository.ItineraryRepo, hr *repository.HotelReservationRepo, fr *repository.FlightReservationRepo, h *repository.HotelRepo, n *repository.NotificationRepo) *CheckoutHandler {
	return &CheckoutHandler{Users: u, Itineraries: it, HotelRes: hr, FlightRes: fr, Hotels: h, Notifs: n}
}

type checkoutReq struct {
	ItineraryID uint64 `json:"itinerary_id" validate:"required"`
	CardNumber  string `json:"card_number" validate:"required"`
	CardExpiry  string `json:"card_expiry" validate:"required"`
	CardHolder  string `json:"card_holder"`
}

// Checkout handles POST /checkout.
func (h *CheckoutHandler) Checkout(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id := req.ItineraryID
	digits, err := utils.ValidateCardNumber(req.CardNumber)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid card number"})
	}
	if err := utils.ValidateCardExpiry(req.CardExpiry, time.Now()); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "card is expired or expiry is malformed"})
	}
	last4 := utils.CardLast4(digits)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	it, err := h.Itineraries.GetByIDForUser(ctx, id, uid)
	if err != nil {
		return repoError(c, err, "load itinerary failed")
	}
	if it.Status != model.ItineraryDraft {
		return c.JSON(http.StatusConflict, echo.Map{"error": "itinerary is not awaiting checkout"})
	}
	if err := h.Itineraries.Confirm(ctx, id, last4, req.CardExpiry); err != nil {
		return repoError(c, err, "checkout failed")
	}
	it.Status = model.ItineraryConfirmed
	it.CardLast4 = last4
	it.CardExpiry = req.CardExpiry

	h.publishConfirmed(ctx, c, it)

	if _, nerr := h.Notifs.Create(ctx, uid, "Your itinerary checkout is complete. See your invoice for details."); nerr != nil {
		c.Logger().Warnf("notify user %d failed: %v", uid, nerr)
	}
	return c.JSON(http.StatusOK, it)
}

// publishConfirmed assembles the broker event from whatever detail is
// loadable and publishes it in the background.  Failures only log; the
// checkout response never waits on the broker.
func (h *CheckoutHandler) publishConfirmed(ctx context.Context, c echo.Context, it model.Itinerary) {
	ev := queue.ItineraryConfirmedEvent{
		ItineraryID:     it.ID,
		UserID:          it.UserID,
		TotalPriceCents: it.TotalPriceCents,
		CardLast4:       it.CardLast4,
		ConfirmedAt:     time.Now().UTC().Format(time.RFC3339),
	}
	if u, err := h.Users.GetByID(ctx, it.UserID); err == nil {
		ev.UserEmail = u.Email
	}
	if f, err := h.FlightRes.GetByItinerary(ctx, it.ID); err == nil {
		ev.FlightBookingRef = f.AfsBookingID
	}
	if hr, err := h.HotelRes.GetByItinerary(ctx, it.ID); err == nil {
		ev.CheckIn = hr.CheckIn.Format("2006-01-02")
		ev.CheckOut = hr.CheckOut.Format("2006-01-02")
		if hotel, err := h.Hotels.GetByID(ctx, hr.HotelID); err == nil {
			ev.HotelName = hotel.Name
		}
	}
	go func() {
		pctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := queue_publisher.PublishItineraryConfirmed(pctx, ev); err != nil {
			c.Logger().Warnf("publish itinerary.confirmed failed: %v", err)
		}
	}()
}
