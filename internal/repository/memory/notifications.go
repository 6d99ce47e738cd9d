package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
)

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	defer r.s.lock()()
	n.ID = newID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = r.s.now()
	}
	r.s.data().notifications[n.ID] = *n
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	defer r.s.lock()()
	var result []domain.Notification
	for _, n := range r.s.data().notifications {
		if n.UserID != userID || (unreadOnly && n.Read()) {
			continue
		}
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return page(result, limit, offset), nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	defer r.s.lock()()
	count := 0
	for _, n := range r.s.data().notifications {
		if n.UserID == userID && !n.Read() {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	defer r.s.lock()()
	n, ok := r.s.data().notifications[id]
	if !ok || n.UserID != userID {
		return pgx.ErrNoRows
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
		r.s.data().notifications[id] = n
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	defer r.s.lock()()
	var updated int64
	for id, n := range r.s.data().notifications {
		if n.UserID != userID || n.Read() {
			continue
		}
		n.ReadAt = &at
		r.s.data().notifications[id] = n
		updated++
	}
	return updated, nil
}
