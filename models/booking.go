package models

import "time"

// BookingStatus is the lifecycle state of a booking. The backend is the only
// writer; the client never mutates a booking after creation.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

// Booking is a rental booking as the backend denormalizes it: the car's name,
// image and price are copied in at creation time.
type Booking struct {
	ID            string        `json:"_id"`
	CarID         string        `json:"carId"`
	CarName       string        `json:"carName"`
	CarImage      string        `json:"carImage"`
	RentPrice     float64       `json:"rentPrice"`
	ProviderEmail string        `json:"providerEmail"`
	UserEmail     string        `json:"userEmail,omitempty"`
	BookingDate   time.Time     `json:"bookingDate"`
	Status        BookingStatus `json:"status"`
}

// BookingInput is the booking-creation payload.
type BookingInput struct {
	CarID string `json:"carId"`
}

// BookingStatusResponse is the /bookings/car/:carId answer. Unlike every
// other read it comes back unwrapped, without a data envelope.
type BookingStatusResponse struct {
	IsBooked bool `json:"isBooked"`
}
