// Demo flow: wires the SDK end to end against the in-memory backend double.
// Stands in for the product's view layer, which renders what these calls
// return.
package main

import (
	"context"
	"net"
	"net/http"
	"time"

	"driveshare/api"
	"driveshare/auth"
	"driveshare/config"
	"driveshare/fakeapi"
	"driveshare/guard"
	"driveshare/models"
	"driveshare/notify"
	"driveshare/resource"
	"driveshare/utils"
	"driveshare/validation"

	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	// Local backend double; point API_BASE_URL at a real deployment to skip it.
	backend := fakeapi.NewServer()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		logger.Sugar().Fatalf("main: failed to listen: %v", err)
	}
	go http.Serve(ln, backend.Router()) //nolint:errcheck
	baseURL := "http://" + ln.Addr().String() + "/api"
	logger.Info("Backend double listening", zap.String("baseURL", baseURL))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Another provider's listing to browse and book.
	ownerCred, err := backend.Identity().SignUp(ctx, "owner@driveshare.dev", "Passw0rd", "Olivia Owner", "")
	if err != nil {
		logger.Sugar().Fatalf("main: seed owner: %v", err)
	}
	backend.SeedCar(models.Car{
		CarName:       "Tesla Model 3",
		Description:   "Long range electric sedan with autopilot enabled.",
		Category:      models.CategoryElectric,
		RentPrice:     89.5,
		Location:      "Nairobi",
		ImageURL:      "https://example.com/model3.jpg",
		ProviderEmail: ownerCred.Email,
		ProviderName:  ownerCred.DisplayName,
	})

	sessions := auth.NewProvider(backend.Identity(), nil)
	sessions.StartRefresher(ctx, 30*time.Second)
	client := api.New(baseURL, sessions, api.WithRateLimit(config.AppConfig.MaxRequestsPerMin))
	toasts := notify.NewEmitter(notify.LogNotifier{})

	// Route guard: mounting a protected view while anonymous redirects.
	g := guard.New(sessions, func(to string) {
		logger.Info("Redirect", zap.String("to", to))
	})
	defer g.Close()
	myListings, _ := guard.FindRoute("my-listings")
	g.Mount(myListings, func() {
		logger.Info("Rendered my-listings")
	})

	// Register and retry the protected view.
	identity, err := sessions.Register(ctx, "renter@driveshare.dev", "Sup3rSecret", "Riley Renter", "https://example.com/riley.png")
	if err != nil {
		logger.Sugar().Fatalf("main: register: %v", err)
	}
	g.Mount(myListings, func() {
		logger.Info("Rendered my-listings", zap.String("user", identity.DisplayName))
	})

	// Browse with filters.
	listings := resource.NewCarList(ctx, client, toasts, models.CarFilters{Category: "Electric"})
	view := listings.Snapshot()
	logger.Info("Browsed listings", zap.Int("count", len(view.Cars)), zap.String("error", view.Error))

	// Add a listing: a short description fails locally, nothing hits the wire.
	form := validation.CarForm{
		CarName:     "Honda Fit",
		Description: "short",
		Category:    "Hatchback",
		RentPrice:   "49.99",
		Location:    "Mombasa",
		ImageURL:    "https://example.com/fit.jpg",
	}
	if _, errs := form.Validate(); errs != nil {
		logger.Info("Form rejected locally", zap.String("description", errs.Field("description")))
	}
	form.Description = "Compact, economical hatchback in great condition."
	input, errs := form.Validate()
	if errs != nil {
		logger.Sugar().Fatalf("main: unexpected validation errors: %v", errs)
	}

	carActions := resource.NewCarActions(client, toasts)
	if _, err := carActions.Create(ctx, input); err != nil {
		logger.Sugar().Fatalf("main: create listing: %v", err)
	}
	// Mutations never refetch reads; the caller does.
	listings.SetFilters(ctx, models.CarFilters{})
	logger.Info("Listings after create", zap.Int("count", len(listings.Snapshot().Cars)))

	// Book the seeded car, then refetch bookings explicitly.
	bookingActions := resource.NewBookingActions(client, toasts)
	for _, car := range listings.Snapshot().Cars {
		if car.ProviderEmail == identity.Email {
			continue // own listings are not bookable
		}
		if _, err := bookingActions.Book(ctx, car.ID); err != nil {
			logger.Warn("Booking failed", zap.String("car", car.CarName), zap.Error(err))
		}
		break
	}
	bookings := resource.NewUserBookings(ctx, client, toasts, identity.Email)
	logger.Info("My bookings", zap.Int("count", len(bookings.Snapshot().Bookings)))

	sessions.Logout()
}
