package domain

import "time"

// NotificationKind classifies messages delivered to a user.
type NotificationKind string

const (
	NotificationRentalRequest     NotificationKind = "rental_request"
	NotificationRentalRequestSent NotificationKind = "rental_request_sent"
	NotificationRentalCompleted   NotificationKind = "rental_completed"
	NotificationCheckoutComplete  NotificationKind = "checkout_complete"
	NotificationPaymentSuccess    NotificationKind = "payment_success"
	NotificationRentalApproved    NotificationKind = "rental_approved"
	NotificationRentalRejected    NotificationKind = "rental_rejected"
	NotificationRentalCancelled   NotificationKind = "rental_cancelled"
	NotificationAccountStatus     NotificationKind = "account_status"
	NotificationVerification      NotificationKind = "verification_update"
)

// Notification is a message addressed to one user.
type Notification struct {
	ID        string
	UserID    string
	Kind      NotificationKind
	Title     string
	Body      string
	Metadata  map[string]any
	ReadAt    *time.Time
	CreatedAt time.Time
}

// Read reports whether the user has seen the notification.
func (n *Notification) Read() bool {
	return n.ReadAt != nil
}
