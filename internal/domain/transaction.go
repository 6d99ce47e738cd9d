package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus enumerates lifecycle states for rental transactions.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusApproved  TransactionStatus = "approved"
	TransactionStatusRejected  TransactionStatus = "rejected"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// TransactionStatuses lists every status in lifecycle order.
var TransactionStatuses = []TransactionStatus{
	TransactionStatusPending,
	TransactionStatusApproved,
	TransactionStatusRejected,
	TransactionStatusCompleted,
	TransactionStatusCancelled,
}

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	for _, candidate := range TransactionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition may leave s.
func (s TransactionStatus) Terminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusRejected || s == TransactionStatusCancelled
}

// PaymentMethod enumerates checkout payment options.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentGCash          PaymentMethod = "gcash"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentCashOnDelivery || m == PaymentGCash
}

// Transaction is a rental agreement between a renter and a listing owner.
type Transaction struct {
	ID            string
	RentalID      string
	RenterID      *string
	OwnerID       string
	Status        TransactionStatus
	StartDate     time.Time
	EndDate       time.Time
	TotalAmount   decimal.Decimal
	RenterMessage *string
	OwnerResponse *string
	PaymentMethod *PaymentMethod
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ApprovedAt    *time.Time
	RejectedAt    *time.Time
	CompletedAt   *time.Time
	CancelledAt   *time.Time
}

// IsOwner reports whether userID owns the rented listing.
func (t *Transaction) IsOwner(userID string) bool {
	return userID != "" && t.OwnerID == userID
}

// IsRenter reports whether userID requested the rental.
func (t *Transaction) IsRenter(userID string) bool {
	return userID != "" && t.RenterID != nil && *t.RenterID == userID
}

// IsParty reports whether userID is owner or renter.
func (t *Transaction) IsParty(userID string) bool {
	return t.IsOwner(userID) || t.IsRenter(userID)
}

// Counterparty returns the other side of the agreement, if known.
func (t *Transaction) Counterparty(userID string) (string, bool) {
	if t.IsOwner(userID) {
		if t.RenterID == nil {
			return "", false
		}
		return *t.RenterID, true
	}
	return t.OwnerID, true
}

// Earnings aggregates an owner's income by settlement state.
type Earnings struct {
	Completed      decimal.Decimal
	Pending        decimal.Decimal
	CompletedCount int
	PendingCount   int
}
