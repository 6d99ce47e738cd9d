package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/hulame/rental-service/internal/domain"
)

// RentalRequest payload for POST /rental-requests.
type RentalRequest struct {
	RentalID  string  `json:"rental_id" validate:"required,uuid"`
	StartDate string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string  `json:"end_date" validate:"required,datetime=2006-01-02"`
	Message   *string `json:"message" validate:"omitempty,max=1000"`
}

// CheckoutItem is one cart line.
type CheckoutItem struct {
	ListingID string          `json:"listing_id" validate:"required,uuid"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutRequest payload for POST /checkout.
type CheckoutRequest struct {
	Items         []CheckoutItem `json:"items" validate:"required,min=1,dive"`
	Name          string         `json:"name" validate:"required,max=255"`
	Email         string         `json:"email" validate:"required,email"`
	ContactNumber string         `json:"contact_number" validate:"required,max=32"`
	RentDuration  string         `json:"rent_duration" validate:"required,max=64"`
	Message       *string        `json:"message" validate:"omitempty,max=1000"`
	PaymentMethod string         `json:"payment_method" validate:"required"`
}

// TransitionRequest carries the optional owner note for approve and reject.
type TransitionRequest struct {
	Response *string `json:"response" validate:"omitempty,max=1000"`
}

// TransactionResponse is the public view of a transaction.
type TransactionResponse struct {
	ID            string     `json:"id"`
	RentalID      string     `json:"rental_id"`
	RenterID      *string    `json:"renter_id"`
	OwnerID       string     `json:"owner_id"`
	Status        string     `json:"status"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	TotalAmount   string     `json:"total_amount"`
	RenterMessage *string    `json:"renter_message"`
	OwnerResponse *string    `json:"owner_response"`
	PaymentMethod *string    `json:"payment_method"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ApprovedAt    *time.Time `json:"approved_at"`
	RejectedAt    *time.Time `json:"rejected_at"`
	CompletedAt   *time.Time `json:"completed_at"`
	CancelledAt   *time.Time `json:"cancelled_at"`
}

// CheckoutResponse summarizes a completed checkout.
type CheckoutResponse struct {
	Transactions  []TransactionResponse `json:"transactions"`
	Subtotal      string                `json:"subtotal"`
	PlatformFee   string                `json:"platform_fee"`
	Total         string                `json:"total"`
	PaymentMethod string                `json:"payment_method"`
	ItemCount     int                   `json:"item_count"`
}

// HistoryResponse is one audit entry.
type HistoryResponse struct {
	ID        string    `json:"id"`
	ActorID   *string   `json:"actor_id"`
	Operation string    `json:"operation"`
	OldStatus *string   `json:"old_status"`
	NewStatus string    `json:"new_status"`
	Note      *string   `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTransactionResponse maps a transaction.
func NewTransactionResponse(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:            t.ID,
		RentalID:      t.RentalID,
		RenterID:      t.RenterID,
		OwnerID:       t.OwnerID,
		Status:        string(t.Status),
		StartDate:     t.StartDate.Format(time.DateOnly),
		EndDate:       t.EndDate.Format(time.DateOnly),
		TotalAmount:   t.TotalAmount.StringFixed(2),
		RenterMessage: t.RenterMessage,
		OwnerResponse: t.OwnerResponse,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ApprovedAt:    t.ApprovedAt,
		RejectedAt:    t.RejectedAt,
		CompletedAt:   t.CompletedAt,
		CancelledAt:   t.CancelledAt,
	}
	if t.PaymentMethod != nil {
		method := string(*t.PaymentMethod)
		resp.PaymentMethod = &method
	}
	return resp
}

// NewHistoryResponse maps an audit entry.
func NewHistoryResponse(h *domain.TransactionHistory) HistoryResponse {
	resp := HistoryResponse{
		ID:        h.ID,
		ActorID:   h.ActorID,
		Operation: string(h.Operation),
		NewStatus: string(h.NewStatus),
		Note:      h.Note,
		CreatedAt: h.CreatedAt,
	}
	if h.OldStatus != nil {
		old := string(*h.OldStatus)
		resp.OldStatus = &old
	}
	return resp
}
