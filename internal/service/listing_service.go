package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/repository"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// ListingService coordinates listing workflows.
type ListingService struct {
	store  repository.Store
	gate   *auth.StatusGate
	logger *zap.Logger
}

// ListingInput describes a new listing.
type ListingInput struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Location    string
}

// ListingUpdate carries optional listing fields.
type ListingUpdate struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Location    *string
	Status      *domain.ListingStatus
}

// ListingQuery filters the public browse list.
type ListingQuery struct {
	Search  string
	Status  string
	OwnerID string
	Limit   int
	Offset  int
}

// NewListingService constructs the service.
func NewListingService(store repository.Store, gate *auth.StatusGate, logger *zap.Logger) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{store: store, gate: gate, logger: logger}
}

// CreateListing publishes a new available listing for ownerID.
func (s *ListingService) CreateListing(ctx context.Context, ownerID string, input ListingInput) (*domain.Listing, error) {
	owner, err := loadActor(ctx, s.store.Users(), s.gate, ownerID, auth.ActionCreateListing)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if !input.Price.IsPositive() {
		return nil, apperrors.NewInvalidOperation("price must be greater than zero", map[string]any{"price": input.Price.StringFixed(2)})
	}
	listing := &domain.Listing{
		OwnerID:     owner.ID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Location:    strings.TrimSpace(input.Location),
		Status:      domain.ListingAvailable,
	}
	if err := s.store.Listings().Create(ctx, listing); err != nil {
		return nil, err
	}
	s.logger.Info("listing created", zap.String("listing_id", listing.ID), zap.String("owner_id", owner.ID))
	return listing, nil
}

// UpdateListing edits a listing owned by ownerID.
func (s *ListingService) UpdateListing(ctx context.Context, ownerID, listingID string, update ListingUpdate) (*domain.Listing, error) {
	if _, err := loadActor(ctx, s.store.Users(), s.gate, ownerID, auth.ActionUpdateListing); err != nil {
		return nil, err
	}
	listing, err := s.store.Listings().GetByID(ctx, listingID)
	if err != nil {
		return nil, notFoundAs(err, "listing", map[string]any{"listing_id": listingID})
	}
	if listing.OwnerID != ownerID {
		return nil, apperrors.NewUnauthorized("only the owner can edit this listing")
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return nil, apperrors.NewValidationError("title must not be empty", nil)
		}
		listing.Title = title
	}
	if update.Description != nil {
		listing.Description = strings.TrimSpace(*update.Description)
	}
	if update.Price != nil {
		if !update.Price.IsPositive() {
			return nil, apperrors.NewInvalidOperation("price must be greater than zero", nil)
		}
		listing.Price = *update.Price
	}
	if update.Location != nil {
		listing.Location = strings.TrimSpace(*update.Location)
	}
	seen := listing.Status
	var target *domain.ListingStatus
	if update.Status != nil {
		if !update.Status.Valid() {
			return nil, apperrors.NewValidationError("unknown listing status", map[string]any{"status": string(*update.Status)})
		}
		if *update.Status != seen {
			target = update.Status
		}
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Listings().Update(ctx, listing); err != nil {
			return notFoundAs(err, "listing", map[string]any{"listing_id": listingID})
		}
		if target != nil {
			// Guarded on the status the owner saw; a reservation in between wins.
			if err := tx.Listings().SetStatus(ctx, listing.ID, *target, seen); err != nil {
				if errors.Is(err, repository.ErrStaleStatus) {
					return apperrors.NewInvalidState("listing status changed, reload and retry",
						map[string]any{"listing_id": listing.ID})
				}
				return err
			}
		}
		fresh, err := tx.Listings().GetByID(ctx, listing.ID)
		if err != nil {
			return err
		}
		listing = fresh
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// GetListing returns one listing.
func (s *ListingService) GetListing(ctx context.Context, listingID string) (*domain.Listing, error) {
	listing, err := s.store.Listings().GetByID(ctx, listingID)
	if err != nil {
		return nil, notFoundAs(err, "listing", map[string]any{"listing_id": listingID})
	}
	return listing, nil
}

// ListListings browses listings. Without a status only available items are shown.
func (s *ListingService) ListListings(ctx context.Context, query ListingQuery) ([]domain.Listing, error) {
	filter := repository.ListingFilter{Limit: query.Limit, Offset: query.Offset}
	switch status := domain.ListingStatus(strings.ToLower(query.Status)); {
	case status == "":
		filter.Statuses = []domain.ListingStatus{domain.ListingAvailable}
	case status == "all":
	case status.Valid():
		filter.Statuses = []domain.ListingStatus{status}
	default:
		return nil, apperrors.NewValidationError("unknown listing status", map[string]any{"status": query.Status})
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.SearchTerm = &search
	}
	if query.OwnerID != "" {
		filter.OwnerID = &query.OwnerID
	}
	return s.store.Listings().List(ctx, filter)
}
