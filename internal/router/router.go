package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/flynext/flynext-server/internal/config"
	"github.com/flynext/flynext-server/internal/handler"
	"github.com/flynext/flynext-server/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	HotelPublic  *handler.HotelPublicHandler
	OwnerHotel   *handler.OwnerHotelHandler
	OwnerRoom    *handler.OwnerRoomTypeHandler
	HotelBooking *handler.HotelBookingHandler
	Flight       *handler.FlightHandler
	Itinerary    *handler.ItineraryHandler
	Checkout     *handler.CheckoutHandler
	Invoice      *handler.InvoiceHandler
	Notification *handler.NotificationHandler
	Location     *handler.LocationHandler
}

// Register mounts every route under /api.  Public browse endpoints get
// the Redis response cache, authenticated endpoints require a valid
// token, hotel management additionally requires the OWNER role, and
// everything shares the token-bucket rate limiter.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.GET("/healthz", handler.Health)

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	authed := middleware.JWTAuth(cfg.JWTSecret)
	anyRole := middleware.RequireRole("OWNER", "CUSTOMER")
	ownerOnly := middleware.RequireRole("OWNER")

	api := e.Group("/api", rl)

	// --- public ---
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.POST("/auth/refresh", h.Auth.Refresh)
	api.POST("/auth/logout", h.Auth.Logout)

	api.GET("/hotels", h.HotelPublic.Search, cache)
	api.GET("/hotels/:id", h.HotelPublic.Get)
	api.GET("/locations/cities", h.Location.Cities, cache)
	api.GET("/locations/airports", h.Location.Airports, cache)
	api.GET("/flights/search", h.Flight.Search)

	// --- authenticated (any role) ---
	user := api.Group("", authed, anyRole)
	user.GET("/user", h.User.GetProfile)
	user.PUT("/user", h.User.UpdateProfile)
	user.POST("/user/picture", h.User.UploadPicture)

	user.POST("/hotels/book", h.HotelBooking.Book)
	user.DELETE("/hotels/book", h.HotelBooking.Cancel)
	user.GET("/user/hotel-bookings", h.HotelBooking.ListMine)
	user.GET("/user/hotel-bookings/:id", h.HotelBooking.Get)

	user.POST("/flights/book", h.Flight.Book)
	user.GET("/user/flight-bookings", h.Flight.ListMine)
	user.GET("/user/flight-bookings/:id", h.Flight.Get)
	user.DELETE("/user/flight-bookings/:id", h.Flight.Cancel)

	user.POST("/itineraries", h.Itinerary.Create)
	user.GET("/itineraries", h.Itinerary.List)
	user.GET("/itineraries/:id", h.Itinerary.Get)
	user.DELETE("/itineraries/:id", h.Itinerary.Cancel)
	user.POST("/checkout", h.Checkout.Checkout)
	user.GET("/invoice", h.Invoice.Get)

	user.POST("/notifications", h.Notification.Create)
	user.GET("/notifications", h.Notification.List)
	user.GET("/notifications/unread-count", h.Notification.UnreadCount)
	user.PUT("/notifications/:id/read", h.Notification.MarkRead)

	// --- hotel owners ---
	owner := api.Group("", authed, ownerOnly)
	owner.POST("/hotels", h.OwnerHotel.Create)
	owner.GET("/hotels/owner", h.OwnerHotel.ListMine)
	owner.PUT("/hotels/:id", h.OwnerHotel.Update)
	owner.DELETE("/hotels/:id", h.OwnerHotel.Delete)
	owner.GET("/hotels/owner/bookings", h.OwnerHotel.Bookings)
	owner.DELETE("/hotels/owner/bookings/:id", h.OwnerHotel.CancelBooking)

	owner.POST("/hotels/:id/room-types", h.OwnerRoom.Create)
	owner.GET("/hotels/:id/room-types", h.OwnerRoom.List)
	owner.GET("/hotels/:hotelId/room-types/:id", h.OwnerRoom.Get)
	owner.PUT("/hotels/:hotelId/room-types/:id", h.OwnerRoom.Update)
	owner.DELETE("/hotels/:hotelId/room-types/:id", h.OwnerRoom.Delete)
}
