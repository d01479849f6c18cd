package resource

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"driveshare/models"
	"driveshare/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient scripts responses per path and records every call. A response
// can be gated on a channel to interleave overlapping fetches.
type fakeClient struct {
	mu        sync.Mutex
	calls     []string
	responses []fakeResponse
}

type fakeResponse struct {
	body string
	err  error
	gate chan struct{} // when set, the call blocks until the gate closes
}

func (f *fakeClient) enqueue(body string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{body: body, err: err})
}

func (f *fakeClient) enqueueGated(body string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, fakeResponse{body: body, gate: gate})
	return gate
}

func (f *fakeClient) next(path string) fakeResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, path)
	if len(f.responses) == 0 {
		return fakeResponse{body: `{"data":[]}`}
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp
}

func (f *fakeClient) do(path string, out any) error {
	resp := f.next(path)
	if resp.gate != nil {
		<-resp.gate
	}
	if resp.err != nil {
		return resp.err
	}
	if out != nil {
		return json.Unmarshal([]byte(resp.body), out)
	}
	return nil
}

func (f *fakeClient) Get(ctx context.Context, path string, out any) error {
	return f.do(path, out)
}

func (f *fakeClient) Post(ctx context.Context, path string, body, out any) error {
	return f.do(path, out)
}

func (f *fakeClient) Put(ctx context.Context, path string, body, out any) error {
	return f.do(path, out)
}

func (f *fakeClient) Delete(ctx context.Context, path string, out any) error {
	return f.do(path, out)
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func carsBody(names ...string) string {
	cars := make([]models.Car, 0, len(names))
	for i, name := range names {
		cars = append(cars, models.Car{ID: string(rune('a' + i)), CarName: name})
	}
	raw, _ := json.Marshal(map[string]any{"data": cars})
	return string(raw)
}

func TestCarListInitialFetch(t *testing.T) {
	client := &fakeClient{}
	client.enqueue(carsBody("Civic", "Corolla"), nil)
	rec := &notify.Record{}

	list := NewCarList(context.Background(), client, rec, models.CarFilters{})

	view := list.Snapshot()
	require.Len(t, view.Cars, 2)
	assert.Equal(t, "Civic", view.Cars[0].CarName)
	assert.False(t, view.Loading)
	assert.Empty(t, view.Error)
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, "/cars", client.lastCall())
	assert.Empty(t, rec.Errors)
}

func TestCarListFilterChangeTriggersExactlyOneFetch(t *testing.T) {
	client := &fakeClient{}
	rec := &notify.Record{}
	list := NewCarList(context.Background(), client, rec, models.CarFilters{})
	require.Equal(t, 1, client.callCount())

	list.SetFilters(context.Background(), models.CarFilters{Category: "SUV", Search: "jeep", Limit: 5, Sort: "price_asc"})
	assert.Equal(t, 2, client.callCount())
	assert.Equal(t, "/cars?category=SUV&limit=5&search=jeep&sort=price_asc", client.lastCall())

	// Equal-by-value filter set: no new fetch.
	list.SetFilters(context.Background(), models.CarFilters{Category: "SUV", Search: "jeep", Limit: 5, Sort: "price_asc"})
	assert.Equal(t, 2, client.callCount())

	// Any single field change fetches again.
	list.SetFilters(context.Background(), models.CarFilters{Category: "SUV", Search: "jeep", Limit: 5, Sort: "price_desc"})
	assert.Equal(t, 3, client.callCount())
}

func TestCarListStaleResponseDiscarded(t *testing.T) {
	client := &fakeClient{}
	rec := &notify.Record{}
	client.enqueue(carsBody(), nil)
	list := NewCarList(context.Background(), client, rec, models.CarFilters{})

	// First refetch blocks; second completes with the newer payload.
	gate := client.enqueueGated(carsBody("Stale"))
	client.enqueue(carsBody("Fresh"), nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		list.Refetch(context.Background())
	}()
	// Wait for the first refetch to be issued before starting the second.
	for client.callCount() < 2 {
		time.Sleep(time.Millisecond)
	}
	list.Refetch(context.Background())

	require.Len(t, list.Snapshot().Cars, 1)
	assert.Equal(t, "Fresh", list.Snapshot().Cars[0].CarName)

	// Let the first-issued fetch resolve last; it must not overwrite.
	close(gate)
	wg.Wait()
	require.Len(t, list.Snapshot().Cars, 1)
	assert.Equal(t, "Fresh", list.Snapshot().Cars[0].CarName)
	assert.False(t, list.Snapshot().Loading)
}

func TestCarListErrorStateAndSingleNotification(t *testing.T) {
	client := &fakeClient{}
	client.enqueue("", assertableError("Service unavailable"))
	rec := &notify.Record{}

	list := NewCarList(context.Background(), client, rec, models.CarFilters{})

	view := list.Snapshot()
	assert.Empty(t, view.Cars)
	assert.Equal(t, "Service unavailable", view.Error)
	require.Len(t, rec.Errors, 1)
	assert.Equal(t, "Service unavailable", rec.Errors[0])

	// A later successful refetch clears the error.
	client.enqueue(carsBody("Civic"), nil)
	list.Refetch(context.Background())
	view = list.Snapshot()
	assert.Empty(t, view.Error)
	assert.Len(t, view.Cars, 1)
}

func TestCarDetailEmptyIDFetchesNothing(t *testing.T) {
	client := &fakeClient{}
	rec := &notify.Record{}

	detail := NewCarDetail(context.Background(), client, rec, "")

	view := detail.Snapshot()
	assert.Nil(t, view.Car)
	assert.False(t, view.Loading)
	assert.Empty(t, view.Error)
	assert.Zero(t, client.callCount())

	detail.Refetch(context.Background())
	assert.Zero(t, client.callCount())
}

func TestCarDetailFetchesByID(t *testing.T) {
	client := &fakeClient{}
	raw, _ := json.Marshal(map[string]any{"data": models.Car{ID: "c1", CarName: "Model 3"}})
	client.enqueue(string(raw), nil)
	rec := &notify.Record{}

	detail := NewCarDetail(context.Background(), client, rec, "c1")

	view := detail.Snapshot()
	require.NotNil(t, view.Car)
	assert.Equal(t, "Model 3", view.Car.CarName)
	assert.Equal(t, "/cars/c1", client.lastCall())
}

func TestProviderCarsEmptyEmailFetchesNothing(t *testing.T) {
	client := &fakeClient{}
	store := NewProviderCars(context.Background(), client, &notify.Record{}, "")
	assert.Zero(t, client.callCount())
	assert.Empty(t, store.Snapshot().Cars)
}

func TestProviderCarsPathEscapesEmail(t *testing.T) {
	client := &fakeClient{}
	client.enqueue(carsBody("Civic"), nil)
	store := NewProviderCars(context.Background(), client, &notify.Record{}, "owner@driveshare.dev")
	assert.Equal(t, "/cars/provider/owner@driveshare.dev", client.lastCall())
	assert.Len(t, store.Snapshot().Cars, 1)
}

func TestFeaturedCarsRefetch(t *testing.T) {
	client := &fakeClient{}
	client.enqueue(carsBody("One"), nil)
	store := NewFeaturedCars(context.Background(), client, &notify.Record{})
	assert.Equal(t, "/cars/featured", client.lastCall())
	require.Len(t, store.Snapshot().Cars, 1)

	client.enqueue(carsBody("One", "Two"), nil)
	store.Refetch(context.Background())
	assert.Len(t, store.Snapshot().Cars, 2)
}

// assertableError is a plain error whose message is its whole identity, like
// the normalized errors the HTTP client returns.
type assertableError string

func (e assertableError) Error() string { return string(e) }
