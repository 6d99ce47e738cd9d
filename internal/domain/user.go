package domain

import (
	"fmt"
	"strings"
	"time"
)

// VerificationStatus is the stored account status of a user.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "unverified"
	VerificationPending    VerificationStatus = "pending"
	VerificationApproved   VerificationStatus = "approved"
	VerificationDenied     VerificationStatus = "denied"
	VerificationSuspended  VerificationStatus = "suspended"
	VerificationInactive   VerificationStatus = "inactive"
)

// Valid reports whether s is a stored status.
func (s VerificationStatus) Valid() bool {
	_, ok := publicStatuses[s]
	return ok
}

// CanSubmitVerification reports whether a user in s may send documents for review.
func (s VerificationStatus) CanSubmitVerification() bool {
	return s == VerificationUnverified || s == VerificationDenied
}

// PublicStatus is the client-facing vocabulary for VerificationStatus.
type PublicStatus string

const (
	PublicNotVerified PublicStatus = "not-verified"
	PublicPending     PublicStatus = "pending"
	PublicVerified    PublicStatus = "verified"
	PublicRejected    PublicStatus = "rejected"
	PublicSuspended   PublicStatus = "suspended"
	PublicInactive    PublicStatus = "inactive"
	PublicActive      PublicStatus = "active"
)

var publicStatuses = map[VerificationStatus]PublicStatus{
	VerificationUnverified: PublicNotVerified,
	VerificationPending:    PublicPending,
	VerificationApproved:   PublicVerified,
	VerificationDenied:     PublicRejected,
	VerificationSuspended:  PublicSuspended,
	VerificationInactive:   PublicInactive,
}

var storedStatuses = map[PublicStatus]VerificationStatus{
	PublicVerified:    VerificationApproved,
	PublicActive:      VerificationApproved,
	PublicNotVerified: VerificationUnverified,
	PublicRejected:    VerificationDenied,
	PublicPending:     VerificationPending,
	PublicSuspended:   VerificationSuspended,
	PublicInactive:    VerificationInactive,
}

// ToPublicStatus maps a stored status to the client vocabulary.
// Unknown values render as not-verified.
func ToPublicStatus(s VerificationStatus) PublicStatus {
	if p, ok := publicStatuses[s]; ok {
		return p
	}
	return PublicNotVerified
}

// FromPublicStatus maps a client-supplied status to the stored vocabulary.
func FromPublicStatus(p string) (VerificationStatus, error) {
	s, ok := storedStatuses[PublicStatus(strings.ToLower(strings.TrimSpace(p)))]
	if !ok {
		return "", fmt.Errorf("unknown account status %q", p)
	}
	return s, nil
}

// Role distinguishes administrators from regular users.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a marketplace account. Every user may both list and rent.
type User struct {
	ID                   string
	Name                 string
	Email                string
	PasswordHash         string
	Role                 Role
	Status               VerificationStatus
	ContactNumber        *string
	Bio                  *string
	VerificationDocument *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
