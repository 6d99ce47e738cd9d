package dto

import (
	"time"

	"github.com/hulame/rental-service/internal/domain"
)

// NotificationResponse is the public view of a notification.
type NotificationResponse struct {
	ID        string         `json:"id"`
	Kind      string         `json:"type"`
	Title     string         `json:"title"`
	Body      string         `json:"message"`
	Metadata  map[string]any `json:"data"`
	Read      bool           `json:"read"`
	ReadAt    *time.Time     `json:"read_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewNotificationResponse maps a notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	metadata := n.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return NotificationResponse{
		ID:        n.ID,
		Kind:      string(n.Kind),
		Title:     n.Title,
		Body:      n.Body,
		Metadata:  metadata,
		Read:      n.Read(),
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}
