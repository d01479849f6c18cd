package resource

import (
	"context"
	"net/url"
	"sync"

	"driveshare/models"
	"driveshare/notify"
)

// Success notification texts, verbatim from the product.
const (
	msgCarCreated = "Car listing created successfully!"
	msgCarUpdated = "Car listing updated successfully!"
	msgCarDeleted = "Car listing deleted successfully!"
	msgCarBooked  = "Car booked successfully!"
)

// actions carries the shared loading flag for one mutation set.
type actions struct {
	mu      sync.Mutex
	loading bool
}

func (a *actions) setLoading(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loading = v
}

// Loading reports whether any mutation in the set is in flight.
func (a *actions) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

// CarActions is the listing mutation set. On success it notifies and returns
// the server payload; on failure it notifies once and re-raises so the caller
// can skip dependent side effects. Mutations never refetch read stores;
// the caller refetches every store the mutation may have invalidated.
type CarActions struct {
	actions
	client   Requester
	notifier notify.Notifier
}

func NewCarActions(client Requester, notifier notify.Notifier) *CarActions {
	return &CarActions{client: client, notifier: notifier}
}

// Create posts a new listing.
func (a *CarActions) Create(ctx context.Context, input models.CarInput) (*models.Car, error) {
	a.setLoading(true)
	defer a.setLoading(false)

	var resp struct {
		Data models.Car `json:"data"`
	}
	if err := a.client.Post(ctx, "/cars", input, &resp); err != nil {
		a.notifier.Error(err.Error())
		return nil, err
	}
	a.notifier.Success(msgCarCreated)
	return &resp.Data, nil
}

// Update replaces an existing listing.
func (a *CarActions) Update(ctx context.Context, id string, input models.CarInput) (*models.Car, error) {
	a.setLoading(true)
	defer a.setLoading(false)

	var resp struct {
		Data models.Car `json:"data"`
	}
	if err := a.client.Put(ctx, "/cars/"+url.PathEscape(id), input, &resp); err != nil {
		a.notifier.Error(err.Error())
		return nil, err
	}
	a.notifier.Success(msgCarUpdated)
	return &resp.Data, nil
}

// Remove deletes a listing.
func (a *CarActions) Remove(ctx context.Context, id string) error {
	a.setLoading(true)
	defer a.setLoading(false)

	if err := a.client.Delete(ctx, "/cars/"+url.PathEscape(id), nil); err != nil {
		a.notifier.Error(err.Error())
		return err
	}
	a.notifier.Success(msgCarDeleted)
	return nil
}

// BookingActions is the booking mutation set. Same contract as CarActions:
// notify, re-raise, never auto-refetch.
type BookingActions struct {
	actions
	client   Requester
	notifier notify.Notifier
}

func NewBookingActions(client Requester, notifier notify.Notifier) *BookingActions {
	return &BookingActions{client: client, notifier: notifier}
}

// Book creates a booking for a car.
func (a *BookingActions) Book(ctx context.Context, carID string) (*models.Booking, error) {
	a.setLoading(true)
	defer a.setLoading(false)

	var resp struct {
		Data models.Booking `json:"data"`
	}
	if err := a.client.Post(ctx, "/bookings", models.BookingInput{CarID: carID}, &resp); err != nil {
		a.notifier.Error(err.Error())
		return nil, err
	}
	a.notifier.Success(msgCarBooked)
	return &resp.Data, nil
}
