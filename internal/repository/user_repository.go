package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
)

// UserFilter captures admin search parameters.
type UserFilter struct {
	SearchTerm *string
	Status     *domain.VerificationStatus
	Limit      int
	Offset     int
}

// UserRepository defines persistence access for marketplace accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// UpdateProfile writes name, contact number and bio. The write only applies
	// while the stored status still equals user.Status, otherwise ErrStaleStatus.
	UpdateProfile(ctx context.Context, user *domain.User) error
	SetVerificationDocument(ctx context.Context, id, documentRef string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter UserFilter) ([]domain.User, error)
	// SetStatus writes status. When from is non-empty the write only applies
	// while the stored status is one of from, otherwise ErrStaleStatus.
	SetStatus(ctx context.Context, id string, status domain.VerificationStatus, from ...domain.VerificationStatus) error
}

type userRepository struct {
	db Querier
}

const userColumns = `id, name, email, password_hash, role, status, contact_number, bio, verification_document, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (name, email, password_hash, role, status, contact_number, bio)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.ContactNumber,
		user.Bio,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translateUnique(err)
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, contact_number=$2, bio=$3, updated_at=NOW()
        WHERE id=$4 AND status=$5
        RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		user.Name,
		user.ContactNumber,
		user.Bio,
		user.ID,
		user.Status,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrStaleStatus
	}
	return err
}

func (r *userRepository) SetVerificationDocument(ctx context.Context, id, documentRef string) error {
	const query = `UPDATE users SET verification_document=$2, updated_at=NOW() WHERE id=$1`
	cmd, err := r.db.Exec(ctx, query, id, documentRef)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email)=LOWER($1)`
	return scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *userRepository) List(ctx context.Context, filter UserFilter) ([]domain.User, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.SearchTerm)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(name) LIKE %s OR LOWER(email) LIKE %s)", placeholder, placeholder))
	}

	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		userColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func (r *userRepository) SetStatus(ctx context.Context, id string, status domain.VerificationStatus, from ...domain.VerificationStatus) error {
	query := `UPDATE users SET status=$2, updated_at=NOW() WHERE id=$1`
	args := []any{id, status}
	if len(from) > 0 {
		query += ` AND status = ANY($3)`
		args = append(args, statusArgs(from))
	}
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if len(from) > 0 {
			return ErrStaleStatus
		}
		return pgx.ErrNoRows
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.ContactNumber,
		&user.Bio,
		&user.VerificationDocument,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
