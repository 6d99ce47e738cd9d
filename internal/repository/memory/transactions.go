package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/repository"
)

type transactionRepository struct {
	s *Store
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	defer r.s.lock()()
	if txn.ID == "" {
		txn.ID = newID()
	}
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = r.s.now()
	}
	txn.UpdatedAt = txn.CreatedAt
	r.s.data().transactions[txn.ID] = *txn
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	defer r.s.lock()()
	txn, ok := r.s.data().transactions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &txn, nil
}

func (r *transactionRepository) List(ctx context.Context, filter repository.TransactionFilter) ([]domain.Transaction, error) {
	defer r.s.lock()()
	var result []domain.Transaction
	for _, txn := range r.s.data().transactions {
		if matchTransaction(txn, filter) {
			result = append(result, txn)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return page(result, filter.Limit, filter.Offset), nil
}

func matchTransaction(txn domain.Transaction, f repository.TransactionFilter) bool {
	if f.OwnerID != nil && txn.OwnerID != *f.OwnerID {
		return false
	}
	if f.RenterID != nil && !txn.IsRenter(*f.RenterID) {
		return false
	}
	if f.PartyID != nil && !txn.IsParty(*f.PartyID) {
		return false
	}
	if f.RentalID != nil && txn.RentalID != *f.RentalID {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, txn.Status) {
		return false
	}
	return true
}

func (r *transactionRepository) ChangeStatus(ctx context.Context, change repository.StatusChange) (*domain.Transaction, error) {
	defer r.s.lock()()
	txn, ok := r.s.data().transactions[change.ID]
	if !ok || !contains(change.From, txn.Status) {
		return nil, repository.ErrStaleStatus
	}
	at := change.At
	switch change.To {
	case domain.TransactionStatusApproved:
		if txn.ApprovedAt == nil {
			txn.ApprovedAt = &at
		}
	case domain.TransactionStatusRejected:
		if txn.RejectedAt == nil {
			txn.RejectedAt = &at
		}
	case domain.TransactionStatusCompleted:
		if txn.CompletedAt == nil {
			txn.CompletedAt = &at
		}
	case domain.TransactionStatusCancelled:
		if txn.CancelledAt == nil {
			txn.CancelledAt = &at
		}
	default:
		return nil, fmt.Errorf("no timestamp column for status %q", change.To)
	}
	txn.Status = change.To
	if change.OwnerResponse != nil {
		txn.OwnerResponse = change.OwnerResponse
	}
	txn.UpdatedAt = at
	r.s.data().transactions[txn.ID] = txn
	return &txn, nil
}

func (r *transactionRepository) CountOpenByRental(ctx context.Context, rentalID, excludeID string) (int, error) {
	defer r.s.lock()()
	count := 0
	for _, txn := range r.s.data().transactions {
		if txn.RentalID != rentalID || txn.ID == excludeID {
			continue
		}
		if txn.Status == domain.TransactionStatusPending || txn.Status == domain.TransactionStatusApproved {
			count++
		}
	}
	return count, nil
}

func (r *transactionRepository) EarningsByOwner(ctx context.Context, ownerID string) (domain.Earnings, error) {
	defer r.s.lock()()
	earnings := domain.Earnings{Completed: decimal.Zero, Pending: decimal.Zero}
	for _, txn := range r.s.data().transactions {
		if txn.OwnerID != ownerID {
			continue
		}
		switch txn.Status {
		case domain.TransactionStatusCompleted:
			earnings.Completed = earnings.Completed.Add(txn.TotalAmount)
			earnings.CompletedCount++
		case domain.TransactionStatusPending, domain.TransactionStatusApproved:
			earnings.Pending = earnings.Pending.Add(txn.TotalAmount)
			earnings.PendingCount++
		}
	}
	return earnings, nil
}

type historyRepository struct {
	s *Store
}

func (r *historyRepository) Create(ctx context.Context, entry *domain.TransactionHistory) error {
	defer r.s.lock()()
	entry.ID = newID()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.s.now()
	}
	r.s.data().history = append(r.s.data().history, *entry)
	return nil
}

func (r *historyRepository) ListByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error) {
	defer r.s.lock()()
	var result []domain.TransactionHistory
	for _, entry := range r.s.data().history {
		if entry.TransactionID == transactionID {
			result = append(result, entry)
		}
	}
	return result, nil
}

func contains[T comparable](set []T, v T) bool {
	for _, candidate := range set {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func page[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
