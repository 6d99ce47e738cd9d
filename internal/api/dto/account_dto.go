package dto

import (
	"time"

	"github.com/hulame/rental-service/internal/domain"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Email                string    `json:"email"`
	Role                 string    `json:"role"`
	Status               string    `json:"status"`
	ContactNumber        *string   `json:"contact_number"`
	Bio                  *string   `json:"bio"`
	VerificationDocument *string   `json:"verification_document,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// UpdateProfileRequest payload for PUT /users/me/profile.
type UpdateProfileRequest struct {
	Name          *string `json:"name" validate:"omitempty,min=2,max=255"`
	ContactNumber *string `json:"contact_number" validate:"omitempty,max=32"`
	Bio           *string `json:"bio" validate:"omitempty,max=1000"`
}

// SubmitVerificationRequest references an uploaded document.
type SubmitVerificationRequest struct {
	DocumentRef string `json:"document_ref" validate:"required,max=512"`
}

// SetAccountStatusRequest payload for the admin status endpoint.
type SetAccountStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=verified active not-verified rejected pending suspended inactive"`
}

// EarningsResponse summarizes an owner's income.
type EarningsResponse struct {
	CompletedEarnings string `json:"completed_earnings"`
	PendingEarnings   string `json:"pending_earnings"`
	CompletedCount    int    `json:"completed_count"`
	PendingCount      int    `json:"pending_count"`
}

// NewUserResponse maps an account; the document reference is only shown when
// includePrivate is set.
func NewUserResponse(user *domain.User, includePrivate bool) UserResponse {
	resp := UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          string(user.Role),
		Status:        string(domain.ToPublicStatus(user.Status)),
		ContactNumber: user.ContactNumber,
		Bio:           user.Bio,
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
	}
	if includePrivate {
		resp.VerificationDocument = user.VerificationDocument
	}
	return resp
}

// NewEarningsResponse formats money with two decimals.
func NewEarningsResponse(e domain.Earnings) EarningsResponse {
	return EarningsResponse{
		CompletedEarnings: e.Completed.StringFixed(2),
		PendingEarnings:   e.Pending.StringFixed(2),
		CompletedCount:    e.CompletedCount,
		PendingCount:      e.PendingCount,
	}
}
