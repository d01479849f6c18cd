package resource

import (
	"context"
	"net/url"
	"strconv"

	"driveshare/models"
	"driveshare/notify"
)

// CarListView is a point-in-time snapshot of a CarList store.
type CarListView struct {
	FetchState
	Cars []models.Car
}

// CarList reads /cars with a filter set. Changing any filter field triggers
// exactly one new fetch; setting an equal-by-value filter set triggers none.
type CarList struct {
	client   Requester
	notifier notify.Notifier
	f        fetcher
	filters  models.CarFilters
	cars     []models.Car
}

// NewCarList builds the store and runs the initial fetch.
func NewCarList(ctx context.Context, client Requester, notifier notify.Notifier, filters models.CarFilters) *CarList {
	l := &CarList{client: client, notifier: notifier, filters: filters}
	l.Fetch(ctx)
	return l
}

func carsQuery(f models.CarFilters) string {
	params := url.Values{}
	if f.Category != "" {
		params.Set("category", f.Category)
	}
	if f.Search != "" {
		params.Set("search", f.Search)
	}
	if f.Limit > 0 {
		params.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Sort != "" {
		params.Set("sort", f.Sort)
	}
	if len(params) == 0 {
		return "/cars"
	}
	return "/cars?" + params.Encode()
}

// Fetch loads the list for the current filter set. Safe to call from any
// goroutine; if fetches overlap, only the latest-issued one commits.
func (l *CarList) Fetch(ctx context.Context) {
	ticket := l.f.begin()
	var filters models.CarFilters
	l.f.read(func() { filters = l.filters })

	var resp struct {
		Data []models.Car `json:"data"`
	}
	err := l.client.Get(ctx, carsQuery(filters), &resp)
	committed := l.f.resolve(ticket, err, func() { l.cars = resp.Data })
	if committed && err != nil {
		l.notifier.Error(err.Error())
	}
}

// Refetch re-executes the same read on demand.
func (l *CarList) Refetch(ctx context.Context) {
	l.Fetch(ctx)
}

// SetFilters swaps the filter set. Equality is structural: only an actual
// value change causes a fetch.
func (l *CarList) SetFilters(ctx context.Context, filters models.CarFilters) {
	var changed bool
	l.f.read(func() {
		changed = !l.filters.Equal(filters)
		if changed {
			l.filters = filters
		}
	})
	if changed {
		l.Fetch(ctx)
	}
}

// Filters returns the active filter set.
func (l *CarList) Filters() models.CarFilters {
	var filters models.CarFilters
	l.f.read(func() { filters = l.filters })
	return filters
}

// Snapshot returns the current cars plus fetch state.
func (l *CarList) Snapshot() CarListView {
	var view CarListView
	view.FetchState = l.f.state()
	l.f.read(func() { view.Cars = append([]models.Car(nil), l.cars...) })
	return view
}

// FeaturedCars reads /cars/featured (the newest listings).
type FeaturedCars struct {
	client   Requester
	notifier notify.Notifier
	f        fetcher
	cars     []models.Car
}

func NewFeaturedCars(ctx context.Context, client Requester, notifier notify.Notifier) *FeaturedCars {
	s := &FeaturedCars{client: client, notifier: notifier}
	s.Fetch(ctx)
	return s
}

func (s *FeaturedCars) Fetch(ctx context.Context) {
	ticket := s.f.begin()
	var resp struct {
		Data []models.Car `json:"data"`
	}
	err := s.client.Get(ctx, "/cars/featured", &resp)
	committed := s.f.resolve(ticket, err, func() { s.cars = resp.Data })
	if committed && err != nil {
		s.notifier.Error(err.Error())
	}
}

func (s *FeaturedCars) Refetch(ctx context.Context) {
	s.Fetch(ctx)
}

func (s *FeaturedCars) Snapshot() CarListView {
	var view CarListView
	view.FetchState = s.f.state()
	s.f.read(func() { view.Cars = append([]models.Car(nil), s.cars...) })
	return view
}

// CarDetailView is a point-in-time snapshot of a CarDetail store.
type CarDetailView struct {
	FetchState
	Car *models.Car
}

// CarDetail reads a single listing by id. An empty id performs no fetch and
// leaves the data empty.
type CarDetail struct {
	client   Requester
	notifier notify.Notifier
	f        fetcher
	id       string
	car      *models.Car
}

func NewCarDetail(ctx context.Context, client Requester, notifier notify.Notifier, id string) *CarDetail {
	d := &CarDetail{client: client, notifier: notifier, id: id}
	d.Fetch(ctx)
	return d
}

func (d *CarDetail) Fetch(ctx context.Context) {
	if d.id == "" {
		return
	}
	ticket := d.f.begin()
	var resp struct {
		Data models.Car `json:"data"`
	}
	err := d.client.Get(ctx, "/cars/"+url.PathEscape(d.id), &resp)
	committed := d.f.resolve(ticket, err, func() {
		car := resp.Data
		d.car = &car
	})
	if committed && err != nil {
		d.notifier.Error(err.Error())
	}
}

func (d *CarDetail) Refetch(ctx context.Context) {
	d.Fetch(ctx)
}

func (d *CarDetail) Snapshot() CarDetailView {
	var view CarDetailView
	view.FetchState = d.f.state()
	d.f.read(func() {
		if d.car != nil {
			car := *d.car
			view.Car = &car
		}
	})
	return view
}

// ProviderCars reads the listings owned by one provider. An empty email
// performs no fetch and leaves the data empty.
type ProviderCars struct {
	client   Requester
	notifier notify.Notifier
	f        fetcher
	email    string
	cars     []models.Car
}

func NewProviderCars(ctx context.Context, client Requester, notifier notify.Notifier, email string) *ProviderCars {
	s := &ProviderCars{client: client, notifier: notifier, email: email}
	s.Fetch(ctx)
	return s
}

func (s *ProviderCars) Fetch(ctx context.Context) {
	if s.email == "" {
		return
	}
	ticket := s.f.begin()
	var resp struct {
		Data []models.Car `json:"data"`
	}
	err := s.client.Get(ctx, "/cars/provider/"+url.PathEscape(s.email), &resp)
	committed := s.f.resolve(ticket, err, func() { s.cars = resp.Data })
	if committed && err != nil {
		s.notifier.Error(err.Error())
	}
}

func (s *ProviderCars) Refetch(ctx context.Context) {
	s.Fetch(ctx)
}

func (s *ProviderCars) Snapshot() CarListView {
	var view CarListView
	view.FetchState = s.f.state()
	s.f.read(func() { view.Cars = append([]models.Car(nil), s.cars...) })
	return view
}
