package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrStaleStatus is returned by conditional updates that matched no row
// because the stored status no longer satisfies the precondition.
var ErrStaleStatus = errors.New("status precondition not met")

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = "23505"

func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store groups the repositories that must commit together.
type Store interface {
	Transactions() TransactionRepository
	History() TransactionHistoryRepository
	Listings() ListingRepository
	Users() UserRepository
	Notifications() NotificationRepository
	// WithinTx runs fn against a store bound to one database transaction.
	// Returning an error rolls every write back.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

type pgStore struct {
	pool *pgxpool.Pool
	db   Querier
	inTx bool
}

// NewStore returns a Postgres-backed store.
func NewStore(pool *pgxpool.Pool) Store {
	return &pgStore{pool: pool, db: pool}
}

func (s *pgStore) Transactions() TransactionRepository {
	return &transactionRepository{db: s.db}
}

func (s *pgStore) History() TransactionHistoryRepository {
	return &transactionHistoryRepository{db: s.db}
}

func (s *pgStore) Listings() ListingRepository {
	return &listingRepository{db: s.db}
}

func (s *pgStore) Users() UserRepository {
	return &userRepository{db: s.db}
}

func (s *pgStore) Notifications() NotificationRepository {
	return &notificationRepository{db: s.db}
}

func (s *pgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(&pgStore{pool: s.pool, db: tx, inTx: true})
	})
}

func statusArgs[T ~string](statuses []T) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
