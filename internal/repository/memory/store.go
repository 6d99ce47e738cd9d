// Package memory is an in-process repository.Store used for local runs and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/repository"
)

type state struct {
	transactions  map[string]domain.Transaction
	history       []domain.TransactionHistory
	listings      map[string]domain.Listing
	users         map[string]domain.User
	notifications map[string]domain.Notification
}

func newState() *state {
	return &state{
		transactions:  map[string]domain.Transaction{},
		listings:      map[string]domain.Listing{},
		users:         map[string]domain.User{},
		notifications: map[string]domain.Notification{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.transactions {
		c.transactions[k] = v
	}
	c.history = append(c.history, s.history...)
	for k, v := range s.listings {
		c.listings[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.notifications {
		c.notifications[k] = v
	}
	return c
}

// Store keeps every table in maps guarded by one mutex.
type Store struct {
	mu  *sync.Mutex
	db  **state
	now func() time.Time
	// inTx is set on views handed to WithinTx callbacks, which already hold mu.
	inTx bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	st := newState()
	return &Store{mu: &sync.Mutex{}, db: &st, now: time.Now}
}

// WithClock overrides the clock used for generated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) data() *state {
	return *s.db
}

func (s *Store) Transactions() repository.TransactionRepository {
	return &transactionRepository{s: s}
}

func (s *Store) History() repository.TransactionHistoryRepository {
	return &historyRepository{s: s}
}

func (s *Store) Listings() repository.ListingRepository {
	return &listingRepository{s: s}
}

func (s *Store) Users() repository.UserRepository {
	return &userRepository{s: s}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return &notificationRepository{s: s}
}

// WithinTx serializes fn against every other store call and restores the
// previous contents when fn fails.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data().clone()
	view := &Store{mu: s.mu, db: s.db, now: s.now, inTx: true}
	if err := fn(view); err != nil {
		*s.db = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		*s.db = snapshot
		return err
	}
	return nil
}

func newID() string {
	return uuid.NewString()
}
