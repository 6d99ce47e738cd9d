package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/config"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/events"
	"github.com/hulame/rental-service/internal/repository"
)

// Publisher fans a stored notification out to live subscribers.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// NotificationService turns domain events into per-user notifications.
type NotificationService struct {
	store      repository.Store
	gate       *auth.StatusGate
	dispatcher events.Dispatcher
	publisher  Publisher
	logger     *zap.Logger
	cfg        config.NotificationConfig
	now        Clock
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Store      repository.Store
	Gate       *auth.StatusGate
	Dispatcher events.Dispatcher
	// Publisher is optional; nil disables realtime delivery.
	Publisher Publisher
	Logger    *zap.Logger
	Config    config.NotificationConfig
	Clock     Clock
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		store:      deps.Store,
		gate:       deps.Gate,
		dispatcher: deps.Dispatcher,
		publisher:  deps.Publisher,
		logger:     logger,
		cfg:        deps.Config,
		now:        deps.Clock.orDefault(),
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventRentalRequested, n.handleRentalRequested)
	n.dispatcher.Subscribe(events.EventCheckoutCompleted, n.handleCheckoutCompleted)
	n.dispatcher.Subscribe(events.EventTransactionTransition, n.handleTransactionTransition)
	n.dispatcher.Subscribe(events.EventAccountStatusChanged, n.handleAccountStatusChanged)
	n.dispatcher.Subscribe(events.EventVerificationReviewed, n.handleVerificationReviewed)
}

// ChannelFor names the realtime channel of a user.
func (n *NotificationService) ChannelFor(userID string) string {
	prefix := strings.TrimSpace(n.cfg.ChannelPrefix)
	if prefix == "" {
		prefix = "notifications"
	}
	return prefix + ":" + userID
}

// Notify stores a notification and pushes it to live subscribers.
// Failures are logged and never reach the caller.
func (n *NotificationService) Notify(ctx context.Context, userID string, kind domain.NotificationKind, title, body string, metadata map[string]any) {
	if userID == "" {
		return
	}
	notification := &domain.Notification{
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Metadata:  metadata,
		CreatedAt: n.now(),
	}
	if err := n.store.Notifications().Create(ctx, notification); err != nil {
		n.logger.Error("store notification",
			zap.String("user_id", userID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return
	}
	if n.publisher == nil || !n.cfg.PublishRealtime {
		return
	}
	if err := n.publisher.Publish(ctx, n.ChannelFor(userID), realtimePayload(notification)); err != nil {
		n.logger.Warn("publish notification",
			zap.String("user_id", userID),
			zap.String("notification_id", notification.ID),
			zap.Error(err))
	}
}

// realtimePayload mirrors the REST representation of a notification.
func realtimePayload(n *domain.Notification) map[string]any {
	return map[string]any{
		"id":         n.ID,
		"type":       string(n.Kind),
		"title":      n.Title,
		"message":    n.Body,
		"data":       n.Metadata,
		"read":       n.Read(),
		"created_at": n.CreatedAt,
	}
}

// List returns a page of the user's notifications, newest first.
func (n *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	if _, err := loadActor(ctx, n.store.Users(), n.gate, userID, auth.ActionManageNotifications); err != nil {
		return nil, err
	}
	return n.store.Notifications().ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// UnreadCount returns how many notifications the user has not read.
func (n *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	if _, err := loadActor(ctx, n.store.Users(), n.gate, userID, auth.ActionManageNotifications); err != nil {
		return 0, err
	}
	return n.store.Notifications().CountUnread(ctx, userID)
}

// MarkRead marks one of the user's notifications as read.
func (n *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if _, err := loadActor(ctx, n.store.Users(), n.gate, userID, auth.ActionManageNotifications); err != nil {
		return err
	}
	err := n.store.Notifications().MarkRead(ctx, userID, notificationID, n.now())
	return notFoundAs(err, "notification", map[string]any{"notification_id": notificationID})
}

// MarkAllRead marks every unread notification of the user as read.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if _, err := loadActor(ctx, n.store.Users(), n.gate, userID, auth.ActionManageNotifications); err != nil {
		return 0, err
	}
	return n.store.Notifications().MarkAllRead(ctx, userID, n.now())
}

func (n *NotificationService) handleRentalRequested(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RentalRequestedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	txn := payload.Transaction
	days := domain.RentalDays(txn.StartDate, txn.EndDate)

	n.Notify(ctx, txn.OwnerID, domain.NotificationRentalRequest, "New Rental Request",
		fmt.Sprintf("%s wants to rent your '%s' from %s to %s",
			payload.RenterName, payload.ListingTitle,
			txn.StartDate.Format("Jan 02"), txn.EndDate.Format("Jan 02, 2006")),
		map[string]any{
			"transaction_id": txn.ID,
			"rental_id":      txn.RentalID,
			"renter_id":      txn.RenterID,
			"total_amount":   txn.TotalAmount.StringFixed(2),
			"total_days":     days,
		})

	if txn.RenterID != nil {
		n.Notify(ctx, *txn.RenterID, domain.NotificationRentalRequestSent, "Rental Request Sent",
			fmt.Sprintf("Your rental request for '%s' has been sent to the owner. You'll be notified when they respond.", payload.ListingTitle),
			map[string]any{
				"transaction_id": txn.ID,
				"rental_id":      txn.RentalID,
				"owner_id":       txn.OwnerID,
			})
	}
	return nil
}

func (n *NotificationService) handleCheckoutCompleted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.CheckoutCompletedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	paid := payload.PaymentMethod == domain.PaymentGCash

	for _, item := range payload.Items {
		txn := item.Transaction
		metadata := map[string]any{
			"transaction_id": txn.ID,
			"rental_id":      txn.RentalID,
			"renter_id":      txn.RenterID,
			"total_amount":   txn.TotalAmount.StringFixed(2),
			"payment_method": string(payload.PaymentMethod),
		}
		if paid {
			n.Notify(ctx, txn.OwnerID, domain.NotificationRentalCompleted, "Rental Payment Received",
				fmt.Sprintf("%s has completed payment for your '%s' via GCash. You have earned ₱%s",
					payload.ContactName, item.ListingTitle, txn.TotalAmount.StringFixed(2)),
				metadata)
			continue
		}
		n.Notify(ctx, txn.OwnerID, domain.NotificationRentalRequest, "New Rental Request",
			fmt.Sprintf("%s wants to rent your '%s' via checkout", payload.ContactName, item.ListingTitle),
			metadata)
	}

	if payload.RenterID == nil {
		return nil
	}
	summary := map[string]any{
		"total_amount":   payload.Total.StringFixed(2),
		"payment_method": string(payload.PaymentMethod),
		"item_count":     len(payload.Items),
	}
	if paid {
		n.Notify(ctx, *payload.RenterID, domain.NotificationPaymentSuccess, "Payment Successful",
			fmt.Sprintf("Your payment of ₱%s has been processed successfully. Your rental is confirmed!", payload.Total.StringFixed(2)),
			summary)
		return nil
	}
	n.Notify(ctx, *payload.RenterID, domain.NotificationCheckoutComplete, "Checkout Complete",
		fmt.Sprintf("Your rental request for %d item(s) has been submitted. Total: ₱%s", len(payload.Items), payload.Total.StringFixed(2)),
		summary)
	return nil
}

func (n *NotificationService) handleTransactionTransition(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TransactionTransitionPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	txn := payload.Transaction
	actorID := ""
	if event.ActorID != nil {
		actorID = *event.ActorID
	}
	recipient, ok := txn.Counterparty(actorID)
	if !ok {
		return nil
	}

	metadata := map[string]any{
		"transaction_id": txn.ID,
		"rental_id":      txn.RentalID,
		"status":         string(txn.Status),
	}
	if txn.OwnerResponse != nil {
		metadata["owner_response"] = *txn.OwnerResponse
	}

	var (
		kind  domain.NotificationKind
		title string
		body  string
	)
	switch payload.Operation {
	case domain.OperationApprove:
		kind, title = domain.NotificationRentalApproved, "Rental Request Approved"
		body = fmt.Sprintf("Your rental request for '%s' has been approved.", payload.ListingTitle)
	case domain.OperationReject:
		kind, title = domain.NotificationRentalRejected, "Rental Request Rejected"
		body = fmt.Sprintf("Your rental request for '%s' has been declined.", payload.ListingTitle)
	case domain.OperationComplete:
		kind, title = domain.NotificationRentalCompleted, "Rental Completed"
		body = fmt.Sprintf("Your rental of '%s' has been marked as completed.", payload.ListingTitle)
	case domain.OperationCancel:
		kind, title = domain.NotificationRentalCancelled, "Rental Cancelled"
		body = fmt.Sprintf("The rental of '%s' has been cancelled.", payload.ListingTitle)
	default:
		return nil
	}
	n.Notify(ctx, recipient, kind, title, body, metadata)
	return nil
}

func (n *NotificationService) handleAccountStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.AccountStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	status := domain.ToPublicStatus(payload.NewStatus)
	n.Notify(ctx, payload.UserID, domain.NotificationAccountStatus, "Account Status Updated",
		fmt.Sprintf("Your account status is now %s.", status),
		map[string]any{
			"old_status": string(domain.ToPublicStatus(payload.OldStatus)),
			"new_status": string(status),
		})
	return nil
}

func (n *NotificationService) handleVerificationReviewed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.VerificationReviewedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	if payload.Approved {
		n.Notify(ctx, payload.UserID, domain.NotificationVerification, "Verification Approved",
			"Your account has been verified. You can now use every marketplace feature.",
			map[string]any{"approved": true})
		return nil
	}
	n.Notify(ctx, payload.UserID, domain.NotificationVerification, "Verification Denied",
		"Your verification request was not approved. You may submit new documents.",
		map[string]any{"approved": false})
	return nil
}
