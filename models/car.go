package models

import "time"

// Category is the listing category enum used by the backend.
type Category string

const (
	CategorySedan     Category = "Sedan"
	CategorySUV       Category = "SUV"
	CategoryHatchback Category = "Hatchback"
	CategoryLuxury    Category = "Luxury"
	CategoryElectric  Category = "Electric"
)

// Categories lists every valid listing category.
var Categories = []Category{
	CategorySedan,
	CategorySUV,
	CategoryHatchback,
	CategoryLuxury,
	CategoryElectric,
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// AvailabilityStatus is the listing availability enum.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "Available"
	StatusUnavailable AvailabilityStatus = "Unavailable"
)

// Car is a marketplace listing. The backend owns these records; the client
// only holds transient copies invalidated by refetch.
type Car struct {
	ID                 string             `json:"_id"`
	CarName            string             `json:"carName"`
	Description        string             `json:"description"`
	Category           Category           `json:"category"`
	RentPrice          float64            `json:"rentPrice"`
	Location           string             `json:"location"`
	ImageURL           string             `json:"imageUrl"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus"`
	ProviderEmail      string             `json:"providerEmail"`
	ProviderName       string             `json:"providerName"`
	CreatedAt          time.Time          `json:"createdAt,omitempty"`
	UpdatedAt          time.Time          `json:"updatedAt,omitempty"`
}

// CarInput is the create/update payload. RentPrice goes over the wire as a
// number, never a string.
type CarInput struct {
	CarName            string             `json:"carName"`
	Description        string             `json:"description"`
	Category           Category           `json:"category"`
	RentPrice          float64            `json:"rentPrice"`
	Location           string             `json:"location"`
	ImageURL           string             `json:"imageUrl"`
	AvailabilityStatus AvailabilityStatus `json:"availabilityStatus,omitempty"`
	ProviderEmail      string             `json:"providerEmail,omitempty"`
	ProviderName       string             `json:"providerName,omitempty"`
}

// CarFilters narrows a listing search. The zero value means "everything".
type CarFilters struct {
	Category string
	Search   string
	Limit    int
	Sort     string
}

// Equal compares filter sets field by field. Dependency-change detection for
// list reads keys off this, so equality must be structural, not by reference.
func (f CarFilters) Equal(other CarFilters) bool {
	return f.Category == other.Category &&
		f.Search == other.Search &&
		f.Limit == other.Limit &&
		f.Sort == other.Sort
}

// IsZero reports whether no filter field is set.
func (f CarFilters) IsZero() bool {
	return f.Equal(CarFilters{})
}
