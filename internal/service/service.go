package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/events"
	"github.com/hulame/rental-service/internal/repository"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func (c Clock) orDefault() Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// loadActor fetches the acting account and applies the status gate.
func loadActor(ctx context.Context, users repository.UserRepository, gate *auth.StatusGate, userID string, action auth.Action) (*domain.User, error) {
	if userID == "" {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthenticated("account not found")
		}
		return nil, err
	}
	if err := gate.Authorize(user, action); err != nil {
		return nil, err
	}
	return user, nil
}

func notFoundAs(err error, resource string, details map[string]any) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound(resource, details)
	}
	return err
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, now Clock, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	// Delivery runs after commit; a failing subscriber never undoes the write.
	if err := dispatcher.Publish(ctx, event); err != nil && logger != nil {
		logger.Warn("event delivery failed",
			zap.String("event_type", string(event.Type)),
			zap.String("aggregate_id", event.AggregateID),
			zap.Error(err))
	}
}

func stringPtr(s string) *string {
	return &s
}
