package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
)

// NotificationRepository stores per-user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	// MarkRead returns pgx.ErrNoRows when id does not belong to userID.
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

type notificationRepository struct {
	db Querier
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	const query = `
        INSERT INTO notifications (user_id, kind, title, body, metadata, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return r.db.QueryRow(ctx, query,
		n.UserID,
		n.Kind,
		n.Title,
		n.Body,
		metadata,
		n.CreatedAt,
	).Scan(&n.ID, &n.CreatedAt)
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	query := `
        SELECT id, user_id, kind, title, body, metadata, read_at, created_at
        FROM notifications WHERE user_id=$1`
	if unreadOnly {
		query += ` AND read_at IS NULL`
	}
	limit, offset = normalizePage(limit, offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Kind,
			&n.Title,
			&n.Body,
			&n.Metadata,
			&n.ReadAt,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id=$1 AND read_at IS NULL`
	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	const query = `UPDATE notifications SET read_at=COALESCE(read_at, $3) WHERE id=$1 AND user_id=$2`
	cmd, err := r.db.Exec(ctx, query, id, userID, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	const query = `UPDATE notifications SET read_at=$2 WHERE user_id=$1 AND read_at IS NULL`
	cmd, err := r.db.Exec(ctx, query, userID, at)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
