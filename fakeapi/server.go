// Package fakeapi is an in-memory rendition of the marketplace backend: the
// full REST contract (envelopes included) plus an identity provider double.
// Tests run the SDK against it end to end; the demo program can too, when no
// real backend is reachable.
package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"driveshare/models"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const featuredCount = 6

// Server holds the in-memory marketplace state behind a gin router.
type Server struct {
	mu       sync.Mutex
	cars     []*models.Car
	bookings []*models.Booking
	identity *IdentityDouble
	router   *gin.Engine
}

func NewServer() *Server {
	s := &Server{identity: NewIdentityDouble()}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	api := router.Group("/api")
	{
		api.GET("/cars", s.listCars)
		api.GET("/cars/featured", s.featuredCars)
		api.GET("/cars/provider/:email", s.carsByProvider)
		api.GET("/cars/:id", s.carByID)
		api.POST("/cars", s.requireAuth, s.createCar)
		api.PUT("/cars/:id", s.requireAuth, s.updateCar)
		api.DELETE("/cars/:id", s.requireAuth, s.deleteCar)

		api.GET("/bookings/user/:email", s.requireAuth, s.bookingsByUser)
		api.GET("/bookings/car/:carId", s.bookingStatus)
		api.POST("/bookings", s.requireAuth, s.createBooking)
	}

	s.router = router
	return s
}

// Router returns the HTTP handler; mount it on any listener.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Identity returns the identity provider double sharing this server's users.
func (s *Server) Identity() *IdentityDouble {
	return s.identity
}

// SeedCar inserts a listing directly, bypassing auth. Test setup helper.
func (s *Server) SeedCar(car models.Car) models.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	if car.ID == "" {
		car.ID = uuid.NewString()
	}
	if car.CreatedAt.IsZero() {
		car.CreatedAt = time.Now()
	}
	if car.AvailabilityStatus == "" {
		car.AvailabilityStatus = models.StatusAvailable
	}
	stored := car
	s.cars = append(s.cars, &stored)
	return stored
}

func fail(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.ErrorEnvelope{Message: message})
}

// requireAuth checks the bearer token against the identity double and stashes
// the caller on the context.
func (s *Server) requireAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		fail(c, http.StatusUnauthorized, "Missing or invalid Authorization header")
		return
	}
	user, ok := s.identity.verify(strings.TrimPrefix(header, "Bearer "))
	if !ok {
		fail(c, http.StatusUnauthorized, "Invalid token")
		return
	}
	c.Set("user", user)
	c.Next()
}

func caller(c *gin.Context) *fakeUser {
	u, _ := c.MustGet("user").(*fakeUser)
	return u
}

func (s *Server) listCars(c *gin.Context) {
	category := c.Query("category")
	search := strings.ToLower(c.Query("search"))
	sortKey := c.Query("sort")
	limit, _ := strconv.Atoi(c.Query("limit"))

	s.mu.Lock()
	cars := make([]models.Car, 0, len(s.cars))
	for _, car := range s.cars {
		if category != "" && string(car.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(car.CarName), search) &&
			!strings.Contains(strings.ToLower(car.Description), search) &&
			!strings.Contains(strings.ToLower(car.Location), search) {
			continue
		}
		cars = append(cars, *car)
	}
	s.mu.Unlock()

	switch sortKey {
	case "price_asc":
		sort.Slice(cars, func(i, j int) bool { return cars[i].RentPrice < cars[j].RentPrice })
	case "price_desc":
		sort.Slice(cars, func(i, j int) bool { return cars[i].RentPrice > cars[j].RentPrice })
	default:
		sort.Slice(cars, func(i, j int) bool { return cars[i].CreatedAt.After(cars[j].CreatedAt) })
	}

	if limit > 0 && limit < len(cars) {
		cars = cars[:limit]
	}
	c.JSON(http.StatusOK, gin.H{"data": cars})
}

func (s *Server) featuredCars(c *gin.Context) {
	s.mu.Lock()
	cars := make([]models.Car, 0, len(s.cars))
	for _, car := range s.cars {
		cars = append(cars, *car)
	}
	s.mu.Unlock()

	sort.Slice(cars, func(i, j int) bool { return cars[i].CreatedAt.After(cars[j].CreatedAt) })
	if len(cars) > featuredCount {
		cars = cars[:featuredCount]
	}
	c.JSON(http.StatusOK, gin.H{"data": cars})
}

func (s *Server) carByID(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, car := range s.cars {
		if car.ID == c.Param("id") {
			c.JSON(http.StatusOK, gin.H{"data": *car})
			return
		}
	}
	fail(c, http.StatusNotFound, "Car not found")
}

func (s *Server) carsByProvider(c *gin.Context) {
	email := c.Param("email")
	s.mu.Lock()
	defer s.mu.Unlock()
	cars := make([]models.Car, 0)
	for _, car := range s.cars {
		if car.ProviderEmail == email {
			cars = append(cars, *car)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": cars})
}

func (s *Server) createCar(c *gin.Context) {
	var input models.CarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid car data")
		return
	}
	if input.CarName == "" || input.Description == "" || input.RentPrice <= 0 {
		fail(c, http.StatusBadRequest, "Invalid car data")
		return
	}

	user := caller(c)
	car := &models.Car{
		ID:                 uuid.NewString(),
		CarName:            input.CarName,
		Description:        input.Description,
		Category:           input.Category,
		RentPrice:          input.RentPrice,
		Location:           input.Location,
		ImageURL:           input.ImageURL,
		AvailabilityStatus: models.StatusAvailable,
		ProviderEmail:      user.email,
		ProviderName:       user.displayName,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	if input.AvailabilityStatus != "" {
		car.AvailabilityStatus = input.AvailabilityStatus
	}

	s.mu.Lock()
	s.cars = append(s.cars, car)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"data": *car})
}

func (s *Server) updateCar(c *gin.Context) {
	var input models.CarInput
	if err := c.ShouldBindJSON(&input); err != nil {
		fail(c, http.StatusBadRequest, "Invalid car data")
		return
	}

	user := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, car := range s.cars {
		if car.ID != c.Param("id") {
			continue
		}
		if car.ProviderEmail != user.email {
			fail(c, http.StatusForbidden, "Not authorized to update this car")
			return
		}
		car.CarName = input.CarName
		car.Description = input.Description
		car.Category = input.Category
		car.RentPrice = input.RentPrice
		car.Location = input.Location
		car.ImageURL = input.ImageURL
		if input.AvailabilityStatus != "" {
			car.AvailabilityStatus = input.AvailabilityStatus
		}
		car.UpdatedAt = time.Now()
		c.JSON(http.StatusOK, gin.H{"data": *car})
		return
	}
	fail(c, http.StatusNotFound, "Car not found")
}

func (s *Server) deleteCar(c *gin.Context) {
	user := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, car := range s.cars {
		if car.ID != c.Param("id") {
			continue
		}
		if car.ProviderEmail != user.email {
			fail(c, http.StatusForbidden, "Not authorized to delete this car")
			return
		}
		s.cars = append(s.cars[:i], s.cars[i+1:]...)
		c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
		return
	}
	fail(c, http.StatusNotFound, "Car not found")
}

func (s *Server) bookingsByUser(c *gin.Context) {
	email := c.Param("email")
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings := make([]models.Booking, 0)
	for _, b := range s.bookings {
		if b.UserEmail == email {
			bookings = append(bookings, *b)
		}
	}
	c.JSON(http.StatusOK, gin.H{"data": bookings})
}

// bookingStatus answers unwrapped, matching the production backend's one
// deviation from the data envelope.
func (s *Server) bookingStatus(c *gin.Context) {
	carID := c.Param("carId")
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.CarID == carID && b.Status != models.BookingCancelled {
			c.JSON(http.StatusOK, gin.H{"isBooked": true})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"isBooked": false})
}

func (s *Server) createBooking(c *gin.Context) {
	var input models.BookingInput
	if err := c.ShouldBindJSON(&input); err != nil || input.CarID == "" {
		fail(c, http.StatusBadRequest, "Invalid booking data")
		return
	}

	user := caller(c)
	s.mu.Lock()
	defer s.mu.Unlock()

	var car *models.Car
	for _, candidate := range s.cars {
		if candidate.ID == input.CarID {
			car = candidate
			break
		}
	}
	if car == nil {
		fail(c, http.StatusNotFound, "Car not found")
		return
	}
	if car.ProviderEmail == user.email {
		fail(c, http.StatusBadRequest, "You cannot book your own car")
		return
	}
	for _, b := range s.bookings {
		if b.CarID == car.ID && b.Status != models.BookingCancelled {
			fail(c, http.StatusBadRequest, "Car is already booked")
			return
		}
	}
	if car.AvailabilityStatus != models.StatusAvailable {
		fail(c, http.StatusBadRequest, "Car is not available")
		return
	}

	booking := &models.Booking{
		ID:            uuid.NewString(),
		CarID:         car.ID,
		CarName:       car.CarName,
		CarImage:      car.ImageURL,
		RentPrice:     car.RentPrice,
		ProviderEmail: car.ProviderEmail,
		UserEmail:     user.email,
		BookingDate:   time.Now(),
		Status:        models.BookingPending,
	}
	s.bookings = append(s.bookings, booking)
	car.AvailabilityStatus = models.StatusUnavailable

	c.JSON(http.StatusCreated, gin.H{"data": *booking})
}
