package resource

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"driveshare/models"
	"driveshare/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingsBody(carNames ...string) string {
	bookings := make([]models.Booking, 0, len(carNames))
	for i, name := range carNames {
		bookings = append(bookings, models.Booking{
			ID:          string(rune('a' + i)),
			CarName:     name,
			BookingDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Status:      models.BookingPending,
		})
	}
	raw, _ := json.Marshal(map[string]any{"data": bookings})
	return string(raw)
}

func TestUserBookingsEmptyEmailFetchesNothing(t *testing.T) {
	client := &fakeClient{}
	store := NewUserBookings(context.Background(), client, &notify.Record{}, "")
	assert.Zero(t, client.callCount())

	view := store.Snapshot()
	assert.Empty(t, view.Bookings)
	assert.Empty(t, view.Error)
	assert.False(t, view.Loading)
}

func TestUserBookingsFetchAndRefetch(t *testing.T) {
	client := &fakeClient{}
	client.enqueue(bookingsBody("Civic"), nil)
	rec := &notify.Record{}

	store := NewUserBookings(context.Background(), client, rec, "renter@driveshare.dev")
	assert.Equal(t, "/bookings/user/renter@driveshare.dev", client.lastCall())
	require.Len(t, store.Snapshot().Bookings, 1)
	assert.Equal(t, models.BookingPending, store.Snapshot().Bookings[0].Status)

	client.enqueue(bookingsBody("Civic", "Model 3"), nil)
	store.Refetch(context.Background())
	assert.Len(t, store.Snapshot().Bookings, 2)
}

func TestUserBookingsErrorNotifiesOnce(t *testing.T) {
	client := &fakeClient{}
	client.enqueue("", assertableError("Service unavailable"))
	rec := &notify.Record{}

	store := NewUserBookings(context.Background(), client, rec, "renter@driveshare.dev")

	assert.Equal(t, "Service unavailable", store.Snapshot().Error)
	require.Len(t, rec.Errors, 1)
	assert.Equal(t, "Service unavailable", rec.Errors[0])
}

func TestCarBookingStatusDecodesUnwrappedEnvelope(t *testing.T) {
	client := &fakeClient{}
	client.enqueue(`{"isBooked":true}`, nil)

	store := NewCarBookingStatus(context.Background(), client, "c1")

	assert.Equal(t, "/bookings/car/c1", client.lastCall())
	view := store.Snapshot()
	assert.True(t, view.IsBooked)
	assert.False(t, view.Loading)
}

func TestCarBookingStatusEmptyIDFetchesNothing(t *testing.T) {
	client := &fakeClient{}
	store := NewCarBookingStatus(context.Background(), client, "")
	assert.Zero(t, client.callCount())
	assert.False(t, store.Snapshot().IsBooked)
}

func TestCarBookingStatusErrorStaysOutOfNotifications(t *testing.T) {
	client := &fakeClient{}
	client.enqueue("", assertableError("boom"))

	store := NewCarBookingStatus(context.Background(), client, "c1")

	// Error lands in state only; this read has no toast in the product.
	assert.Equal(t, "boom", store.Snapshot().Error)
	assert.False(t, store.Snapshot().IsBooked)
}
