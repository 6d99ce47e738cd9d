package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hulame/rental-service/internal/domain"
)

// CreateListingRequest payload.
type CreateListingRequest struct {
	Title       string          `json:"title" validate:"required,min=3,max=255"`
	Description string          `json:"description" validate:"max=5000"`
	Price       decimal.Decimal `json:"price"`
	Location    string          `json:"location" validate:"max=255"`
}

// UpdateListingRequest payload; omitted fields stay unchanged.
type UpdateListingRequest struct {
	Title       *string          `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price"`
	Location    *string          `json:"location" validate:"omitempty,max=255"`
	Status      *string          `json:"status" validate:"omitempty,oneof=available rented unavailable"`
}

// ListingResponse is the public view of a listing.
type ListingResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	Location    string    `json:"location"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewListingResponse maps a listing.
func NewListingResponse(l *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:          l.ID,
		OwnerID:     l.OwnerID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price.StringFixed(2),
		Location:    l.Location,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}
