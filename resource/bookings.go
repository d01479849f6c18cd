package resource

import (
	"context"
	"net/url"

	"driveshare/models"
	"driveshare/notify"
)

// BookingListView is a point-in-time snapshot of a UserBookings store.
type BookingListView struct {
	FetchState
	Bookings []models.Booking
}

// UserBookings reads the bookings made by one user. An empty email performs
// no fetch and leaves the data empty.
type UserBookings struct {
	client   Requester
	notifier notify.Notifier
	f        fetcher
	email    string
	bookings []models.Booking
}

func NewUserBookings(ctx context.Context, client Requester, notifier notify.Notifier, email string) *UserBookings {
	s := &UserBookings{client: client, notifier: notifier, email: email}
	s.Fetch(ctx)
	return s
}

func (s *UserBookings) Fetch(ctx context.Context) {
	if s.email == "" {
		return
	}
	ticket := s.f.begin()
	var resp struct {
		Data []models.Booking `json:"data"`
	}
	err := s.client.Get(ctx, "/bookings/user/"+url.PathEscape(s.email), &resp)
	committed := s.f.resolve(ticket, err, func() { s.bookings = resp.Data })
	if committed && err != nil {
		s.notifier.Error(err.Error())
	}
}

func (s *UserBookings) Refetch(ctx context.Context) {
	s.Fetch(ctx)
}

func (s *UserBookings) Snapshot() BookingListView {
	var view BookingListView
	view.FetchState = s.f.state()
	s.f.read(func() { view.Bookings = append([]models.Booking(nil), s.bookings...) })
	return view
}

// BookingStatusView is a point-in-time snapshot of a CarBookingStatus store.
type BookingStatusView struct {
	FetchState
	IsBooked bool
}

// CarBookingStatus reads whether a car currently has a booking. The endpoint
// answers unwrapped ({"isBooked": …}, no data envelope). Errors land in state
// only; this read never emits a notification. An empty car id performs no
// fetch.
type CarBookingStatus struct {
	client   Requester
	f        fetcher
	carID    string
	isBooked bool
}

func NewCarBookingStatus(ctx context.Context, client Requester, carID string) *CarBookingStatus {
	s := &CarBookingStatus{client: client, carID: carID}
	s.Fetch(ctx)
	return s
}

func (s *CarBookingStatus) Fetch(ctx context.Context) {
	if s.carID == "" {
		return
	}
	ticket := s.f.begin()
	var resp models.BookingStatusResponse
	err := s.client.Get(ctx, "/bookings/car/"+url.PathEscape(s.carID), &resp)
	s.f.resolve(ticket, err, func() { s.isBooked = resp.IsBooked })
}

func (s *CarBookingStatus) Refetch(ctx context.Context) {
	s.Fetch(ctx)
}

func (s *CarBookingStatus) Snapshot() BookingStatusView {
	var view BookingStatusView
	view.FetchState = s.f.state()
	s.f.read(func() { view.IsBooked = s.isBooked })
	return view
}
