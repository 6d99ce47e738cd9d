package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
)

// TransactionFilter captures listing parameters for transactions.
type TransactionFilter struct {
	OwnerID  *string
	RenterID *string
	// PartyID matches either side of the agreement.
	PartyID  *string
	RentalID *string
	Statuses []domain.TransactionStatus
	Limit    int
	Offset   int
}

// StatusChange is a conditional status update.
type StatusChange struct {
	ID            string
	From          []domain.TransactionStatus
	To            domain.TransactionStatus
	OwnerResponse *string
	At            time.Time
}

// TransactionRepository encapsulates transaction persistence.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	GetByID(ctx context.Context, id string) (*domain.Transaction, error)
	List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)
	// ChangeStatus applies change only while the stored status is one of
	// change.From. It returns ErrStaleStatus when the row did not qualify.
	ChangeStatus(ctx context.Context, change StatusChange) (*domain.Transaction, error)
	CountOpenByRental(ctx context.Context, rentalID, excludeID string) (int, error)
	EarningsByOwner(ctx context.Context, ownerID string) (domain.Earnings, error)
}

type transactionRepository struct {
	db Querier
}

const transactionColumns = `id, rental_id, renter_id, owner_id, status, start_date, end_date, total_amount,
               renter_message, owner_response, payment_method, created_at, updated_at,
               approved_at, rejected_at, completed_at, cancelled_at`

var stampColumns = map[domain.TransactionStatus]string{
	domain.TransactionStatusApproved:  "approved_at",
	domain.TransactionStatusRejected:  "rejected_at",
	domain.TransactionStatusCompleted: "completed_at",
	domain.TransactionStatusCancelled: "cancelled_at",
}

func (r *transactionRepository) Create(ctx context.Context, txn *domain.Transaction) error {
	const query = `
        INSERT INTO transactions (rental_id, renter_id, owner_id, status, start_date, end_date, total_amount,
            renter_message, payment_method, created_at, updated_at, completed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$10,$11)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		txn.RentalID,
		txn.RenterID,
		txn.OwnerID,
		txn.Status,
		txn.StartDate,
		txn.EndDate,
		txn.TotalAmount,
		txn.RenterMessage,
		txn.PaymentMethod,
		txn.CreatedAt,
		txn.CompletedAt,
	).Scan(&txn.ID, &txn.CreatedAt, &txn.UpdatedAt)
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id=$1`
	return scanTransaction(r.db.QueryRow(ctx, query, id))
}

func (r *transactionRepository) List(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.RenterID != nil {
		args = append(args, *filter.RenterID)
		clauses = append(clauses, fmt.Sprintf("renter_id=$%d", len(args)))
	}
	if filter.PartyID != nil {
		args = append(args, *filter.PartyID)
		clauses = append(clauses, fmt.Sprintf("(owner_id=$%d OR renter_id=$%d)", len(args), len(args)))
	}
	if filter.RentalID != nil {
		args = append(args, *filter.RentalID)
		clauses = append(clauses, fmt.Sprintf("rental_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusArgs(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM transactions WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		transactionColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *txn)
	}
	return result, rows.Err()
}

func (r *transactionRepository) ChangeStatus(ctx context.Context, change StatusChange) (*domain.Transaction, error) {
	stamp, ok := stampColumns[change.To]
	if !ok {
		return nil, fmt.Errorf("no timestamp column for status %q", change.To)
	}
	// The stamp is only written while NULL so a timestamp is never overwritten.
	query := fmt.Sprintf(`
        UPDATE transactions
        SET status=$2, %[1]s=COALESCE(%[1]s, $3), owner_response=COALESCE($4, owner_response), updated_at=$3
        WHERE id=$1 AND status = ANY($5)
        RETURNING %[2]s`, stamp, transactionColumns)

	txn, err := scanTransaction(r.db.QueryRow(ctx, query,
		change.ID,
		change.To,
		change.At,
		change.OwnerResponse,
		statusArgs(change.From),
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrStaleStatus
	}
	return txn, err
}

func (r *transactionRepository) CountOpenByRental(ctx context.Context, rentalID, excludeID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM transactions
        WHERE rental_id=$1 AND id<>$2 AND status IN ('pending','approved')`
	var count int
	if err := r.db.QueryRow(ctx, query, rentalID, excludeID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *transactionRepository) EarningsByOwner(ctx context.Context, ownerID string) (domain.Earnings, error) {
	const query = `
        SELECT
            COALESCE(SUM(total_amount) FILTER (WHERE status='completed'), 0),
            COALESCE(SUM(total_amount) FILTER (WHERE status IN ('pending','approved')), 0),
            COUNT(*) FILTER (WHERE status='completed'),
            COUNT(*) FILTER (WHERE status IN ('pending','approved'))
        FROM transactions WHERE owner_id=$1`
	var earnings domain.Earnings
	err := r.db.QueryRow(ctx, query, ownerID).Scan(
		&earnings.Completed,
		&earnings.Pending,
		&earnings.CompletedCount,
		&earnings.PendingCount,
	)
	return earnings, err
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var txn domain.Transaction
	if err := row.Scan(
		&txn.ID,
		&txn.RentalID,
		&txn.RenterID,
		&txn.OwnerID,
		&txn.Status,
		&txn.StartDate,
		&txn.EndDate,
		&txn.TotalAmount,
		&txn.RenterMessage,
		&txn.OwnerResponse,
		&txn.PaymentMethod,
		&txn.CreatedAt,
		&txn.UpdatedAt,
		&txn.ApprovedAt,
		&txn.RejectedAt,
		&txn.CompletedAt,
		&txn.CancelledAt,
	); err != nil {
		return nil, err
	}
	return &txn, nil
}
