package main

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/flynext/flynext-server/internal/afs"
	"github.com/flynext/flynext-server/internal/config"
	"github.com/flynext/flynext-server/internal/database"
	"github.com/flynext/flynext-server/internal/handler"
	"github.com/flynext/flynext-server/internal/model"
	"github.com/flynext/flynext-server/internal/queue"
	"github.com/flynext/flynext-server/internal/repository"
	"github.com/flynext/flynext-server/internal/router"
)

// requestValidator adapts go-playground/validator to Echo's Validator
// interface so handlers can call c.Validate on bound requests.
type requestValidator struct {
	v *validator.Validate
}

func (rv *requestValidator) Validate(i interface{}) error {
	return rv.v.Struct(i)
}

// syncLocations refreshes the city and airport reference tables from
// the flight supplier.
func syncLocations(client *afs.Client, locations *repository.LocationRepo) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cities, err := client.Cities(ctx)
	if err != nil {
		log.Printf("[locations] city sync skipped: %v", err)
	} else {
		out := make([]model.City, 0, len(cities))
		for _, c := range cities {
			out = append(out, model.City{Name: c.City, Country: c.Country})
		}
		if err := locations.ReplaceCities(ctx, out); err != nil {
			log.Printf("[locations] store cities failed: %v", err)
		} else {
			log.Printf("[locations] synced %d cities", len(out))
		}
	}

	airports, err := client.Airports(ctx)
	if err != nil {
		log.Printf("[locations] airport sync skipped: %v", err)
		return
	}
	out := make([]model.Airport, 0, len(airports))
	for _, a := range airports {
		out = append(out, model.Airport{Code: a.Code, Name: a.Name, City: a.City, Country: a.Country})
	}
	if err := locations.ReplaceAirports(ctx, out); err != nil {
		log.Printf("[locations] store airports failed: %v", err)
		return
	}
	log.Printf("[locations] synced %d airports", len(out))
}

func main() {
	_ = godotenv.Load() // .env is optional; real env always wins

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Bootstrap(ctx, db); err != nil {
		cancel()
		log.Fatalf("bootstrap schema: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil disables cache and rate limiting

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	hotels := repository.NewHotelRepo(db)
	roomTypes := repository.NewRoomTypeRepo(db)
	availability := repository.NewAvailabilityRepo(db)
	hotelRes := repository.NewHotelReservationRepo(db)
	flightRes := repository.NewFlightReservationRepo(db)
	itineraries := repository.NewItineraryRepo(db)
	notifs := repository.NewNotificationRepo(db)
	locations := repository.NewLocationRepo(db)

	afsClient := afs.New(cfg.AFSBaseURL, cfg.AFSAPIKey)

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{v: validator.New()}
	e.Static("/uploads", cfg.UploadDir)

	router.Register(e, cfg, rdb, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		User:         handler.NewUserHandler(cfg, users),
		HotelPublic:  handler.NewHotelPublicHandler(hotels, roomTypes, availability),
		OwnerHotel:   handler.NewOwnerHotelHandler(cfg, hotels, hotelRes, roomTypes, availability, notifs),
		OwnerRoom:    handler.NewOwnerRoomTypeHandler(cfg, hotels, roomTypes, availability),
		HotelBooking: handler.NewHotelBookingHandler(hotels, roomTypes, availability, hotelRes, itineraries, notifs),
		Flight:       handler.NewFlightHandler(afsClient, users, flightRes, itineraries, notifs),
		Itinerary:    handler.NewItineraryHandler(afsClient, users, itineraries, hotelRes, flightRes, roomTypes, availability, notifs),
		Checkout:     handler.NewCheckoutHandler(users, itineraries, hotelRes, flightRes, hotels, notifs),
		Invoice:      handler.NewInvoiceHandler(users, itineraries, hotelRes, flightRes, hotels, roomTypes),
		Notification: handler.NewNotificationHandler(notifs),
		Location:     handler.NewLocationHandler(locations),
	})

	// City and airport suggestions come from a supplier snapshot taken at
	// startup.  A sync failure leaves whatever the tables already hold.
	go syncLocations(afsClient, locations)

	// Background consumer mirrors confirmed checkouts into logs/booking.log.
	go func() {
		if err := queue.StartItineraryConsumer(); err != nil {
			log.Printf("itinerary consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
