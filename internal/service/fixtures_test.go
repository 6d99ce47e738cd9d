package service_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/repository"
	"github.com/hulame/rental-service/internal/repository/memory"
)

var fixedNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func newMemoryStore() *memory.Store {
	return memory.NewStore().WithClock(clock)
}

func seedUser(store repository.Store, name, email string, status domain.VerificationStatus) *domain.User {
	user := &domain.User{
		Name:   name,
		Email:  email,
		Role:   domain.RoleUser,
		Status: status,
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

func seedListing(store repository.Store, ownerID, title string, price int64) *domain.Listing {
	listing := &domain.Listing{
		OwnerID: ownerID,
		Title:   title,
		Price:   decimal.NewFromInt(price),
		Status:  domain.ListingAvailable,
	}
	if err := store.Listings().Create(context.Background(), listing); err != nil {
		panic(err)
	}
	return listing
}

// notificationStore swaps the notification repository of an otherwise real store.
type notificationStore struct {
	repository.Store
	notifications repository.NotificationRepository
}

func (s notificationStore) Notifications() repository.NotificationRepository {
	return s.notifications
}

// MockNotificationRepository is a mock type for the NotificationRepository interface
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	args := m.Called(ctx, userID, id, at)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

// MockPublisher is a mock type for the realtime Publisher interface
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, channel string, payload any) error {
	args := m.Called(ctx, channel, payload)
	return args.Error(0)
}

// hookedStore lets a test change rows between a service's read and its
// write. afterListingRead fires outside transactions only, so whatever it
// writes commits on its own like a concurrent request would.
type hookedStore struct {
	repository.Store
	afterListingRead    func(*domain.Listing)
	beforeProfileUpdate func(repository.UserRepository, *domain.User)
}

func (s hookedStore) Listings() repository.ListingRepository {
	return hookedListings{ListingRepository: s.Store.Listings(), after: s.afterListingRead}
}

func (s hookedStore) Users() repository.UserRepository {
	return hookedUsers{UserRepository: s.Store.Users(), before: s.beforeProfileUpdate}
}

func (s hookedStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return s.Store.WithinTx(ctx, func(tx repository.Store) error {
		return fn(hookedStore{Store: tx, beforeProfileUpdate: s.beforeProfileUpdate})
	})
}

type hookedListings struct {
	repository.ListingRepository
	after func(*domain.Listing)
}

func (r hookedListings) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	listing, err := r.ListingRepository.GetByID(ctx, id)
	if err == nil && r.after != nil {
		r.after(listing)
	}
	return listing, err
}

type hookedUsers struct {
	repository.UserRepository
	before func(repository.UserRepository, *domain.User)
}

func (r hookedUsers) UpdateProfile(ctx context.Context, user *domain.User) error {
	if r.before != nil {
		r.before(r.UserRepository, user)
	}
	return r.UserRepository.UpdateProfile(ctx, user)
}
