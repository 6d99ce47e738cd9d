package repository

import (
	"context"

	"github.com/hulame/rental-service/internal/domain"
)

// TransactionHistoryRepository stores lifecycle audit entries.
type TransactionHistoryRepository interface {
	Create(ctx context.Context, entry *domain.TransactionHistory) error
	ListByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error)
}

type transactionHistoryRepository struct {
	db Querier
}

func (r *transactionHistoryRepository) Create(ctx context.Context, entry *domain.TransactionHistory) error {
	const query = `
        INSERT INTO transaction_history (transaction_id, actor_id, operation, old_status, new_status, note, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		entry.TransactionID,
		entry.ActorID,
		entry.Operation,
		entry.OldStatus,
		entry.NewStatus,
		entry.Note,
		entry.CreatedAt,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *transactionHistoryRepository) ListByTransaction(ctx context.Context, transactionID string) ([]domain.TransactionHistory, error) {
	const query = `
        SELECT id, transaction_id, actor_id, operation, old_status, new_status, note, created_at
        FROM transaction_history WHERE transaction_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Query(ctx, query, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TransactionHistory
	for rows.Next() {
		var entry domain.TransactionHistory
		if err := rows.Scan(
			&entry.ID,
			&entry.TransactionID,
			&entry.ActorID,
			&entry.Operation,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Note,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
