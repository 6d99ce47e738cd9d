package auth_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/domain"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

var allActions = []auth.Action{
	auth.ActionCreateListing,
	auth.ActionUpdateListing,
	auth.ActionRequestRental,
	auth.ActionCheckout,
	auth.ActionApproveTransaction,
	auth.ActionRejectTransaction,
	auth.ActionCompleteTransaction,
	auth.ActionCancelTransaction,
	auth.ActionSubmitVerification,
	auth.ActionUpdateProfile,
	auth.ActionManageNotifications,
	auth.ActionSignIn,
}

func TestStatusGate_InactiveDeniesEverything(t *testing.T) {
	gate := auth.NewStatusGate("help@example.com")
	for _, action := range allActions {
		denial := gate.Check(domain.VerificationInactive, action)
		require.NotNil(t, denial, string(action))
		assert.True(t, denial.RequiresLogout)
		assert.Equal(t, auth.RestrictionDeactivated, denial.Restriction)
		assert.Contains(t, denial.ContactMessage, "help@example.com")
	}
}

func TestStatusGate_SuspendedDeniesMutations(t *testing.T) {
	gate := auth.NewStatusGate("")
	permitted := map[auth.Action]bool{
		auth.ActionCancelTransaction:   true,
		auth.ActionManageNotifications: true,
		auth.ActionSignIn:              true,
	}
	for _, action := range allActions {
		denial := gate.Check(domain.VerificationSuspended, action)
		if permitted[action] {
			assert.Nil(t, denial, string(action))
			continue
		}
		require.NotNil(t, denial, string(action))
		assert.False(t, denial.RequiresLogout)
		assert.Equal(t, auth.RestrictionSuspended, denial.Restriction)
		assert.Contains(t, denial.ContactMessage, "support@hulame.com")
	}
}

func TestStatusGate_OtherStatusesAllowed(t *testing.T) {
	gate := auth.NewStatusGate("")
	for _, status := range []domain.VerificationStatus{
		domain.VerificationUnverified,
		domain.VerificationPending,
		domain.VerificationApproved,
		domain.VerificationDenied,
	} {
		for _, action := range allActions {
			assert.Nil(t, gate.Check(status, action), "%s/%s", status, action)
		}
	}
}

func TestDenialErr_CarriesDetails(t *testing.T) {
	gate := auth.NewStatusGate("help@example.com")

	err := gate.Authorize(&domain.User{Status: domain.VerificationSuspended}, auth.ActionRequestRental)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, apperrors.CodeForbidden, domainErr.Code)
	assert.Equal(t, 403, domainErr.HTTPStatus)
	assert.Equal(t, "Your account is suspended. You cannot perform requesting items to rent.", domainErr.Message)
	assert.Equal(t, "request_rental", domainErr.Details["action"])
	assert.Equal(t, "requesting items to rent", domainErr.Details["blocked_action"])
	assert.Equal(t, "suspended", domainErr.Details["user_status"])
	assert.Equal(t, "suspended", domainErr.Details["restriction"])
	assert.Equal(t, false, domainErr.Details["requires_logout"])
}

func TestAuthorize_NilUserAndNilDenial(t *testing.T) {
	gate := auth.NewStatusGate("")
	assert.NoError(t, gate.Authorize(nil, auth.ActionCheckout))

	var denial *auth.Denial
	assert.NoError(t, denial.Err())
}
