package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
)

// ListingFilter captures browse parameters.
type ListingFilter struct {
	OwnerID    *string
	Statuses   []domain.ListingStatus
	SearchTerm *string
	Limit      int
	Offset     int
}

// ListingRepository encapsulates listing persistence.
type ListingRepository interface {
	Create(ctx context.Context, listing *domain.Listing) error
	// Update writes the descriptive fields only. Status moves through
	// SetStatus, Reserve and Release.
	Update(ctx context.Context, listing *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error)
	// SetStatus moves a listing from one status to another and returns
	// ErrStaleStatus when the stored status is no longer from.
	SetStatus(ctx context.Context, id string, to, from domain.ListingStatus) error
	// Reserve flips an available listing to rented and reports whether it did.
	Reserve(ctx context.Context, id string) (bool, error)
	// Release flips a rented listing back to available and reports whether it did.
	Release(ctx context.Context, id string) (bool, error)
}

type listingRepository struct {
	db Querier
}

const listingColumns = `id, owner_id, title, description, price, location, status, created_at, updated_at`

func (r *listingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	const query = `
        INSERT INTO listings (owner_id, title, description, price, location, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		listing.OwnerID,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.Location,
		listing.Status,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
}

func (r *listingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	const query = `
        UPDATE listings SET title=$1, description=$2, price=$3, location=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query,
		listing.Title,
		listing.Description,
		listing.Price,
		listing.Location,
		listing.ID,
	).Scan(&listing.UpdatedAt)
}

func (r *listingRepository) SetStatus(ctx context.Context, id string, to, from domain.ListingStatus) error {
	const query = `UPDATE listings SET status=$2, updated_at=NOW() WHERE id=$1 AND status=$3`
	cmd, err := r.db.Exec(ctx, query, id, to, from)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id=$1`
	return scanListing(r.db.QueryRow(ctx, query, id))
}

func (r *listingRepository) List(ctx context.Context, filter ListingFilter) ([]domain.Listing, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		args = append(args, statusArgs(filter.Statuses))
		clauses = append(clauses, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(description) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM listings WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		listingColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *listing)
	}
	return result, rows.Err()
}

func (r *listingRepository) Reserve(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE listings SET status='rented', updated_at=NOW() WHERE id=$1 AND status='available'`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *listingRepository) Release(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE listings SET status='available', updated_at=NOW() WHERE id=$1 AND status='rented'`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var listing domain.Listing
	if err := row.Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Title,
		&listing.Description,
		&listing.Price,
		&listing.Location,
		&listing.Status,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &listing, nil
}
