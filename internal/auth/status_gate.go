package auth

import (
	"fmt"
	"strings"

	"github.com/hulame/rental-service/internal/domain"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// Action names an account-gated operation.
type Action string

const (
	ActionCreateListing       Action = "create_listing"
	ActionUpdateListing       Action = "update_listing"
	ActionRequestRental       Action = "request_rental"
	ActionCheckout            Action = "checkout"
	ActionApproveTransaction  Action = "approve_transaction"
	ActionRejectTransaction   Action = "reject_transaction"
	ActionCompleteTransaction Action = "complete_transaction"
	ActionCancelTransaction   Action = "cancel_transaction"
	ActionSubmitVerification  Action = "submit_verification"
	ActionUpdateProfile       Action = "update_profile"
	ActionManageNotifications Action = "manage_notifications"
	ActionSignIn              Action = "sign_in"
)

var actionLabels = map[Action]string{
	ActionCreateListing:       "posting items",
	ActionUpdateListing:       "editing your items",
	ActionRequestRental:       "requesting items to rent",
	ActionCheckout:            "checking out items",
	ActionApproveTransaction:  "approving rental requests",
	ActionRejectTransaction:   "rejecting rental requests",
	ActionCompleteTransaction: "completing transactions",
	ActionCancelTransaction:   "cancelling transactions",
	ActionSubmitVerification:  "submitting verification documents",
	ActionUpdateProfile:       "updating your profile",
	ActionManageNotifications: "managing notifications",
	ActionSignIn:              "signing in",
}

// Label returns the human readable form of the action.
func (a Action) Label() string {
	if label, ok := actionLabels[a]; ok {
		return label
	}
	return strings.ReplaceAll(string(a), "_", " ")
}

var suspendedDenied = map[Action]struct{}{
	ActionCreateListing:       {},
	ActionUpdateListing:       {},
	ActionRequestRental:       {},
	ActionCheckout:            {},
	ActionApproveTransaction:  {},
	ActionRejectTransaction:   {},
	ActionCompleteTransaction: {},
	ActionSubmitVerification:  {},
	ActionUpdateProfile:       {},
}

const (
	RestrictionSuspended   = "suspended"
	RestrictionDeactivated = "deactivated"

	defaultSupportContact = "support@hulame.com"
)

// Denial explains why the gate refused an action.
type Denial struct {
	Action         Action
	BlockedAction  string
	ContactMessage string
	UserStatus     domain.VerificationStatus
	Restriction    string
	RequiresLogout bool
}

// Err renders the denial as a Forbidden domain error.
func (d *Denial) Err() error {
	if d == nil {
		return nil
	}
	var message string
	if d.Restriction == RestrictionDeactivated {
		message = "Your account has been deactivated."
	} else {
		message = fmt.Sprintf("Your account is suspended. You cannot perform %s.", d.BlockedAction)
	}
	return apperrors.NewForbidden(message, map[string]any{
		"action":          string(d.Action),
		"blocked_action":  d.BlockedAction,
		"contact_message": d.ContactMessage,
		"user_status":     string(domain.ToPublicStatus(d.UserStatus)),
		"restriction":     d.Restriction,
		"requires_logout": d.RequiresLogout,
	})
}

// StatusGate decides which actions an account status permits.
type StatusGate struct {
	supportContact string
}

// NewStatusGate builds a gate whose denials point to supportContact.
func NewStatusGate(supportContact string) *StatusGate {
	if strings.TrimSpace(supportContact) == "" {
		supportContact = defaultSupportContact
	}
	return &StatusGate{supportContact: supportContact}
}

// Check returns nil when status may perform action.
func (g *StatusGate) Check(status domain.VerificationStatus, action Action) *Denial {
	switch status {
	case domain.VerificationInactive:
		return &Denial{
			Action:         action,
			BlockedAction:  action.Label(),
			ContactMessage: fmt.Sprintf("Please contact support to reactivate your account: %s", g.supportContact),
			UserStatus:     status,
			Restriction:    RestrictionDeactivated,
			RequiresLogout: true,
		}
	case domain.VerificationSuspended:
		if _, denied := suspendedDenied[action]; !denied {
			return nil
		}
		return &Denial{
			Action:         action,
			BlockedAction:  action.Label(),
			ContactMessage: fmt.Sprintf("Please contact support for assistance: %s", g.supportContact),
			UserStatus:     status,
			Restriction:    RestrictionSuspended,
		}
	default:
		return nil
	}
}

// Authorize is Check expressed as an error.
func (g *StatusGate) Authorize(user *domain.User, action Action) error {
	if user == nil {
		return nil
	}
	return g.Check(user.Status, action).Err()
}
