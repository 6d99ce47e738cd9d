package memory

import (
	"context"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/repository"
)

type listingRepository struct {
	s *Store
}

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	defer r.s.lock()()
	if listing.ID == "" {
		listing.ID = newID()
	}
	listing.CreatedAt = r.s.now()
	listing.UpdatedAt = listing.CreatedAt
	r.s.data().listings[listing.ID] = *listing
	return nil
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	defer r.s.lock()()
	stored, ok := r.s.data().listings[listing.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Title = listing.Title
	stored.Description = listing.Description
	stored.Price = listing.Price
	stored.Location = listing.Location
	stored.UpdatedAt = r.s.now()
	r.s.data().listings[listing.ID] = stored
	*listing = stored
	return nil
}

func (r *listingRepository) SetStatus(ctx context.Context, id string, to, from domain.ListingStatus) error {
	if !r.swap(id, from, to) {
		return repository.ErrStaleStatus
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	defer r.s.lock()()
	listing, ok := r.s.data().listings[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &listing, nil
}

func (r *listingRepository) List(ctx context.Context, filter repository.ListingFilter) ([]domain.Listing, error) {
	defer r.s.lock()()
	var result []domain.Listing
	for _, listing := range r.s.data().listings {
		if filter.OwnerID != nil && listing.OwnerID != *filter.OwnerID {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, listing.Status) {
			continue
		}
		if filter.SearchTerm != nil && !containsFold(listing.Title, *filter.SearchTerm) && !containsFold(listing.Description, *filter.SearchTerm) {
			continue
		}
		result = append(result, listing)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return page(result, filter.Limit, filter.Offset), nil
}

func (r *listingRepository) Reserve(ctx context.Context, id string) (bool, error) {
	return r.swap(id, domain.ListingAvailable, domain.ListingRented), nil
}

func (r *listingRepository) Release(ctx context.Context, id string) (bool, error) {
	return r.swap(id, domain.ListingRented, domain.ListingAvailable), nil
}

func (r *listingRepository) swap(id string, from, to domain.ListingStatus) bool {
	defer r.s.lock()()
	listing, ok := r.s.data().listings[id]
	if !ok || listing.Status != from {
		return false
	}
	listing.Status = to
	listing.UpdatedAt = r.s.now()
	r.s.data().listings[id] = listing
	return true
}
