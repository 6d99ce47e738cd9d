package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hulame/rental-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventRentalRequested       EventType = "rental_requested"
	EventCheckoutCompleted     EventType = "checkout_completed"
	EventTransactionTransition EventType = "transaction_transitioned"
	EventAccountStatusChanged  EventType = "account_status_changed"
	EventVerificationReviewed  EventType = "verification_reviewed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	AggregateID string      `json:"aggregate_id"`
	ActorID     *string     `json:"actor_id,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// RentalRequestedPayload is emitted after a direct rental request is stored.
type RentalRequestedPayload struct {
	Transaction  domain.Transaction `json:"transaction"`
	ListingTitle string             `json:"listing_title"`
	RenterName   string             `json:"renter_name"`
}

// CheckoutItem pairs a created transaction with its listing title.
type CheckoutItem struct {
	Transaction  domain.Transaction `json:"transaction"`
	ListingTitle string             `json:"listing_title"`
}

// CheckoutCompletedPayload is emitted once per checkout.
type CheckoutCompletedPayload struct {
	RenterID      *string              `json:"renter_id,omitempty"`
	ContactName   string               `json:"contact_name"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Items         []CheckoutItem       `json:"items"`
	Total         decimal.Decimal      `json:"total"`
}

// TransactionTransitionPayload is emitted after approve, reject, complete or cancel.
type TransactionTransitionPayload struct {
	Operation    domain.TransactionOperation `json:"operation"`
	OldStatus    domain.TransactionStatus    `json:"old_status"`
	Transaction  domain.Transaction          `json:"transaction"`
	ListingTitle string                      `json:"listing_title"`
}

// AccountStatusChangedPayload is emitted when an admin changes an account status.
type AccountStatusChangedPayload struct {
	UserID    string                    `json:"user_id"`
	OldStatus domain.VerificationStatus `json:"old_status"`
	NewStatus domain.VerificationStatus `json:"new_status"`
}

// VerificationReviewedPayload is emitted when an admin decides a verification request.
type VerificationReviewedPayload struct {
	UserID   string `json:"user_id"`
	Approved bool   `json:"approved"`
}
