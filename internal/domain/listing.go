package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingStatus enumerates availability states for listed items.
type ListingStatus string

const (
	ListingAvailable   ListingStatus = "available"
	ListingRented      ListingStatus = "rented"
	ListingUnavailable ListingStatus = "unavailable"
)

// Valid reports whether s is a known listing status.
func (s ListingStatus) Valid() bool {
	return s == ListingAvailable || s == ListingRented || s == ListingUnavailable
}

// Listing is an item offered for rent. Price is per day.
type Listing struct {
	ID          string
	OwnerID     string
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
	Status      ListingStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ListingReleasePolicy decides what happens to a rented listing when its
// transaction is rejected or cancelled.
type ListingReleasePolicy string

const (
	ListingRetain  ListingReleasePolicy = "retain"
	ListingRelease ListingReleasePolicy = "release"
)

// ParseListingReleasePolicy falls back to retain for unknown values.
func ParseListingReleasePolicy(v string) ListingReleasePolicy {
	if ListingReleasePolicy(v) == ListingRelease {
		return ListingRelease
	}
	return ListingRetain
}
