package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/config"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/events"
	"github.com/hulame/rental-service/internal/observability"
	"github.com/hulame/rental-service/internal/repository"
	"github.com/hulame/rental-service/internal/repository/memory"
	"github.com/hulame/rental-service/internal/service"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

type TransactionServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	store    *memory.Store
	gate     *auth.StatusGate
	metrics  *observability.Metrics
	service  *service.TransactionService
	owner    *domain.User
	renter   *domain.User
	stranger *domain.User
	listing  *domain.Listing
}

func TestTransactionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TransactionServiceTestSuite))
}

func (suite *TransactionServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = newMemoryStore()
	suite.gate = auth.NewStatusGate("support@example.com")
	suite.metrics = observability.NewMetrics()
	suite.owner = seedUser(suite.store, "Olivia Owner", "owner@example.com", domain.VerificationApproved)
	suite.renter = seedUser(suite.store, "Ravi Renter", "renter@example.com", domain.VerificationApproved)
	suite.stranger = seedUser(suite.store, "Sam Stranger", "stranger@example.com", domain.VerificationApproved)
	suite.listing = seedListing(suite.store, suite.owner.ID, "Graphing calculator", 100)
	suite.service = suite.newService(suite.store, service.TransactionPolicy{PlatformFee: domain.DefaultPlatformFee})
}

func (suite *TransactionServiceTestSuite) newService(store repository.Store, policy service.TransactionPolicy) *service.TransactionService {
	dispatcher := events.NewInMemoryDispatcher()
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Store:      store,
		Gate:       suite.gate,
		Dispatcher: dispatcher,
		Config:     config.NotificationConfig{ChannelPrefix: "notifications"},
		Clock:      clock,
	})
	notifications.RegisterHandlers()
	return service.NewTransactionService(service.TransactionDependencies{
		Store:      store,
		Gate:       suite.gate,
		Dispatcher: dispatcher,
		Metrics:    suite.metrics,
		Policy:     policy,
		Clock:      clock,
	})
}

func (suite *TransactionServiceTestSuite) assertCode(err error, code string) {
	suite.Require().Error(err)
	suite.Equal(code, apperrors.ToDomainError(err).Code, err.Error())
}

func (suite *TransactionServiceTestSuite) request(listingID string) *domain.Transaction {
	txn, err := suite.service.CreateDirectRequest(suite.ctx, service.DirectRequestInput{
		RentalID:  listingID,
		RenterID:  suite.renter.ID,
		StartDate: fixedNow.AddDate(0, 0, 1),
		EndDate:   fixedNow.AddDate(0, 0, 3),
	})
	suite.Require().NoError(err)
	return txn
}

func (suite *TransactionServiceTestSuite) setStatus(user *domain.User, status domain.VerificationStatus) {
	suite.Require().NoError(suite.store.Users().SetStatus(suite.ctx, user.ID, status))
}

func (suite *TransactionServiceTestSuite) notificationsFor(userID string) []domain.Notification {
	items, err := suite.store.Notifications().ListByUser(suite.ctx, userID, false, 100, 0)
	suite.Require().NoError(err)
	return items
}

func (suite *TransactionServiceTestSuite) hasNotification(userID string, kind domain.NotificationKind) bool {
	for _, n := range suite.notificationsFor(userID) {
		if n.Kind == kind {
			return true
		}
	}
	return false
}

// --- Direct requests ---

func (suite *TransactionServiceTestSuite) TestCreateDirectRequest_Success() {
	message := "  Need it for finals week  "
	txn, err := suite.service.CreateDirectRequest(suite.ctx, service.DirectRequestInput{
		RentalID:  suite.listing.ID,
		RenterID:  suite.renter.ID,
		StartDate: fixedNow.AddDate(0, 0, 1),
		EndDate:   fixedNow.AddDate(0, 0, 3),
		Message:   &message,
	})

	suite.Require().NoError(err)
	suite.NotEmpty(txn.ID)
	suite.Equal(domain.TransactionStatusPending, txn.Status)
	suite.Equal(suite.owner.ID, txn.OwnerID)
	suite.Equal(suite.renter.ID, *txn.RenterID)
	suite.Equal("300.00", txn.TotalAmount.StringFixed(2))
	suite.Equal("Need it for finals week", *txn.RenterMessage)
	suite.Nil(txn.PaymentMethod)

	listing, err := suite.store.Listings().GetByID(suite.ctx, suite.listing.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.ListingAvailable, listing.Status)

	history, err := suite.store.History().ListByTransaction(suite.ctx, txn.ID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.Equal(domain.OperationCreate, history[0].Operation)
	suite.Nil(history[0].OldStatus)

	ownerInbox := suite.notificationsFor(suite.owner.ID)
	suite.Require().Len(ownerInbox, 1)
	suite.Equal(domain.NotificationRentalRequest, ownerInbox[0].Kind)
	suite.Contains(ownerInbox[0].Body, "Ravi Renter wants to rent your 'Graphing calculator'")

	renterInbox := suite.notificationsFor(suite.renter.ID)
	suite.Require().Len(renterInbox, 1)
	suite.Equal(domain.NotificationRentalRequestSent, renterInbox[0].Kind)
}

func (suite *TransactionServiceTestSuite) TestCreateDirectRequest_SingleDay() {
	txn, err := suite.service.CreateDirectRequest(suite.ctx, service.DirectRequestInput{
		RentalID:  suite.listing.ID,
		RenterID:  suite.renter.ID,
		StartDate: fixedNow,
		EndDate:   fixedNow,
	})
	suite.Require().NoError(err)
	suite.Equal("100.00", txn.TotalAmount.StringFixed(2))
}

func (suite *TransactionServiceTestSuite) TestCreateDirectRequest_Rejections() {
	zeroPriced := seedListing(suite.store, suite.owner.ID, "Free pencil", 0)
	cases := []struct {
		name  string
		input service.DirectRequestInput
		code  string
	}{
		{
			name: "own item",
			input: service.DirectRequestInput{
				RentalID: suite.listing.ID, RenterID: suite.owner.ID,
				StartDate: fixedNow, EndDate: fixedNow,
			},
			code: apperrors.CodeInvalidOperation,
		},
		{
			name: "start in the past",
			input: service.DirectRequestInput{
				RentalID: suite.listing.ID, RenterID: suite.renter.ID,
				StartDate: fixedNow.AddDate(0, 0, -1), EndDate: fixedNow,
			},
			code: apperrors.CodeInvalidOperation,
		},
		{
			name: "end before start",
			input: service.DirectRequestInput{
				RentalID: suite.listing.ID, RenterID: suite.renter.ID,
				StartDate: fixedNow.AddDate(0, 0, 3), EndDate: fixedNow.AddDate(0, 0, 2),
			},
			code: apperrors.CodeInvalidOperation,
		},
		{
			name: "zero total",
			input: service.DirectRequestInput{
				RentalID: zeroPriced.ID, RenterID: suite.renter.ID,
				StartDate: fixedNow, EndDate: fixedNow,
			},
			code: apperrors.CodeInvalidOperation,
		},
		{
			name: "missing listing",
			input: service.DirectRequestInput{
				RentalID: "does-not-exist", RenterID: suite.renter.ID,
				StartDate: fixedNow, EndDate: fixedNow,
			},
			code: apperrors.CodeNotFound,
		},
		{
			name: "anonymous",
			input: service.DirectRequestInput{
				RentalID:  suite.listing.ID,
				StartDate: fixedNow, EndDate: fixedNow,
			},
			code: apperrors.CodeUnauthenticated,
		},
	}
	for _, tc := range cases {
		suite.Run(tc.name, func() {
			_, err := suite.service.CreateDirectRequest(suite.ctx, tc.input)
			suite.assertCode(err, tc.code)
		})
	}

	txns, err := suite.store.Transactions().List(suite.ctx, repository.TransactionFilter{})
	suite.Require().NoError(err)
	suite.Empty(txns)
}

func (suite *TransactionServiceTestSuite) TestCreateDirectRequest_SuspendedRenterForbidden() {
	suite.setStatus(suite.renter, domain.VerificationSuspended)

	_, err := suite.service.CreateDirectRequest(suite.ctx, service.DirectRequestInput{
		RentalID:  suite.listing.ID,
		RenterID:  suite.renter.ID,
		StartDate: fixedNow,
		EndDate:   fixedNow,
	})

	suite.assertCode(err, apperrors.CodeForbidden)
	details := apperrors.ToDomainError(err).Details
	suite.Equal("requesting items to rent", details["blocked_action"])
	suite.Equal("suspended", details["restriction"])
}

func (suite *TransactionServiceTestSuite) TestCreateDirectRequest_ReservesWhenConfigured() {
	svc := suite.newService(suite.store, service.TransactionPolicy{
		PlatformFee:            domain.DefaultPlatformFee,
		ReserveOnDirectRequest: true,
	})
	input := service.DirectRequestInput{
		RentalID:  suite.listing.ID,
		RenterID:  suite.renter.ID,
		StartDate: fixedNow,
		EndDate:   fixedNow,
	}

	_, err := svc.CreateDirectRequest(suite.ctx, input)
	suite.Require().NoError(err)
	listing, err := suite.store.Listings().GetByID(suite.ctx, suite.listing.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.ListingRented, listing.Status)

	_, err = svc.CreateDirectRequest(suite.ctx, input)
	suite.assertCode(err, apperrors.CodeInvalidOperation)
}

// --- Checkout ---

func (suite *TransactionServiceTestSuite) checkoutInput(method domain.PaymentMethod, items ...service.CheckoutItemInput) service.CheckoutInput {
	renterID := suite.renter.ID
	return service.CheckoutInput{
		RenterID:      &renterID,
		Items:         items,
		Contact:       service.CheckoutContact{Name: "Ravi Renter", Email: "renter@example.com", ContactNumber: "09170000000"},
		RentDuration:  "1 week",
		PaymentMethod: method,
	}
}

func item(listing *domain.Listing, price string) service.CheckoutItemInput {
	return service.CheckoutItemInput{ListingID: listing.ID, Price: decimal.RequireFromString(price)}
}

func (suite *TransactionServiceTestSuite) TestCheckout_GCashCompletesImmediately() {
	second := seedListing(suite.store, suite.stranger.ID, "Lab gown", 40)

	result, err := suite.service.Checkout(suite.ctx, suite.checkoutInput(domain.PaymentGCash,
		item(suite.listing, "700"), item(second, "280")))

	suite.Require().NoError(err)
	suite.Require().Len(result.Transactions, 2)
	for _, txn := range result.Transactions {
		suite.Equal(domain.TransactionStatusCompleted, txn.Status)
		suite.Require().NotNil(txn.CompletedAt)
		suite.Equal(fixedNow, *txn.CompletedAt)
		suite.Equal(domain.PaymentGCash, *txn.PaymentMethod)
		suite.Equal(domain.DateOnly(fixedNow).AddDate(0, 0, 1), txn.StartDate)
		suite.Equal(domain.DateOnly(fixedNow).AddDate(0, 0, 7), txn.EndDate)
		suite.Equal("Rental request via checkout for 1 week", *txn.RenterMessage)
	}
	suite.Equal("980.00", result.Totals.Subtotal.StringFixed(2))
	suite.Equal("10.00", result.Totals.PlatformFee.StringFixed(2))
	suite.Equal("990.00", result.Totals.Total.StringFixed(2))

	for _, id := range []string{suite.listing.ID, second.ID} {
		listing, err := suite.store.Listings().GetByID(suite.ctx, id)
		suite.Require().NoError(err)
		suite.Equal(domain.ListingRented, listing.Status)
	}

	renterInbox := suite.notificationsFor(suite.renter.ID)
	suite.Require().Len(renterInbox, 1)
	suite.Equal(domain.NotificationPaymentSuccess, renterInbox[0].Kind)
	ownerInbox := suite.notificationsFor(suite.owner.ID)
	suite.Require().Len(ownerInbox, 1)
	suite.Equal(domain.NotificationRentalCompleted, ownerInbox[0].Kind)

	earnings, err := suite.service.GetEarnings(suite.ctx, suite.owner.ID)
	suite.Require().NoError(err)
	suite.Equal("700.00", earnings.Completed.StringFixed(2))
}

func (suite *TransactionServiceTestSuite) TestCheckout_CashOnDeliveryStaysPending() {
	result, err := suite.service.Checkout(suite.ctx, suite.checkoutInput(domain.PaymentCashOnDelivery, item(suite.listing, "700")))

	suite.Require().NoError(err)
	suite.Require().Len(result.Transactions, 1)
	txn := result.Transactions[0]
	suite.Equal(domain.TransactionStatusPending, txn.Status)
	suite.Nil(txn.CompletedAt)
	suite.Equal(domain.PaymentCashOnDelivery, *txn.PaymentMethod)
	suite.Equal("710.00", result.Totals.Total.StringFixed(2))

	renterInbox := suite.notificationsFor(suite.renter.ID)
	suite.Require().Len(renterInbox, 1)
	suite.Equal(domain.NotificationCheckoutComplete, renterInbox[0].Kind)
}

func (suite *TransactionServiceTestSuite) TestCheckout_UsesConfiguredFee() {
	svc := suite.newService(suite.store, service.TransactionPolicy{PlatformFee: decimal.RequireFromString("25")})

	result, err := svc.Checkout(suite.ctx, suite.checkoutInput(domain.PaymentCashOnDelivery, item(suite.listing, "100")))

	suite.Require().NoError(err)
	suite.Equal("125.00", result.Totals.Total.StringFixed(2))
}

func (suite *TransactionServiceTestSuite) TestCheckout_RollsBackWhenAnyListingUnavailable() {
	taken := seedListing(suite.store, suite.stranger.ID, "Drafting table", 90)
	_, err := suite.store.Listings().Reserve(suite.ctx, taken.ID)
	suite.Require().NoError(err)

	_, err = suite.service.Checkout(suite.ctx, suite.checkoutInput(domain.PaymentGCash,
		item(suite.listing, "100"), item(taken, "90")))

	suite.assertCode(err, apperrors.CodeInvalidOperation)
	listing, err := suite.store.Listings().GetByID(suite.ctx, suite.listing.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.ListingAvailable, listing.Status)
	txns, err := suite.store.Transactions().List(suite.ctx, repository.TransactionFilter{})
	suite.Require().NoError(err)
	suite.Empty(txns)
	suite.Empty(suite.notificationsFor(suite.owner.ID))
}

func (suite *TransactionServiceTestSuite) TestCheckout_Guest() {
	input := suite.checkoutInput(domain.PaymentCashOnDelivery, item(suite.listing, "100"))
	input.RenterID = nil

	result, err := suite.service.Checkout(suite.ctx, input)

	suite.Require().NoError(err)
	suite.Nil(result.Transactions[0].RenterID)
	suite.Len(suite.notificationsFor(suite.owner.ID), 1)
}

func (suite *TransactionServiceTestSuite) TestCheckout_Validation() {
	own := seedListing(suite.store, suite.renter.ID, "My own lamp", 30)
	cases := map[string]struct {
		input service.CheckoutInput
		code  string
	}{
		"empty cart":      {suite.checkoutInput(domain.PaymentGCash), apperrors.CodeInvalidOperation},
		"bad method":      {suite.checkoutInput("paypal", item(suite.listing, "10")), apperrors.CodeInvalidOperation},
		"duplicate":       {suite.checkoutInput(domain.PaymentGCash, item(suite.listing, "10"), item(suite.listing, "10")), apperrors.CodeInvalidOperation},
		"non-positive":    {suite.checkoutInput(domain.PaymentGCash, item(suite.listing, "0")), apperrors.CodeInvalidOperation},
		"own item":        {suite.checkoutInput(domain.PaymentGCash, item(own, "30")), apperrors.CodeInvalidOperation},
		"missing listing": {suite.checkoutInput(domain.PaymentGCash, service.CheckoutItemInput{ListingID: "nope", Price: decimal.NewFromInt(5)}), apperrors.CodeNotFound},
	}
	for name, tc := range cases {
		suite.Run(name, func() {
			_, err := suite.service.Checkout(suite.ctx, tc.input)
			suite.assertCode(err, tc.code)
		})
	}
}

func (suite *TransactionServiceTestSuite) TestCheckout_SuspendedRenterForbidden() {
	suite.setStatus(suite.renter, domain.VerificationSuspended)

	_, err := suite.service.Checkout(suite.ctx, suite.checkoutInput(domain.PaymentGCash, item(suite.listing, "100")))

	suite.assertCode(err, apperrors.CodeForbidden)
}

// --- Transitions ---

func (suite *TransactionServiceTestSuite) TestApprove_OwnerOnly() {
	txn := suite.request(suite.listing.ID)

	_, err := suite.service.Approve(suite.ctx, suite.renter.ID, txn.ID, nil)
	suite.assertCode(err, apperrors.CodeUnauthorized)

	note := " See you Monday "
	approved, err := suite.service.Approve(suite.ctx, suite.owner.ID, txn.ID, &note)
	suite.Require().NoError(err)
	suite.Equal(domain.TransactionStatusApproved, approved.Status)
	suite.Require().NotNil(approved.ApprovedAt)
	suite.Equal("See you Monday", *approved.OwnerResponse)

	suite.True(suite.hasNotification(suite.renter.ID, domain.NotificationRentalApproved))

	history, err := suite.service.History(suite.ctx, suite.renter.ID, txn.ID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
	suite.Equal(domain.OperationApprove, history[1].Operation)
	suite.Equal(domain.TransactionStatusPending, *history[1].OldStatus)
	suite.Equal(domain.TransactionStatusApproved, history[1].NewStatus)

	snap := suite.metrics.Snapshot()
	suite.Equal(int64(1), snap.Transitions["approve|ok"])
	suite.Equal(int64(1), snap.Transitions["approve|"+apperrors.CodeUnauthorized])
}

func (suite *TransactionServiceTestSuite) TestTransitions_InvalidState() {
	txn := suite.request(suite.listing.ID)

	_, err := suite.service.Complete(suite.ctx, suite.owner.ID, txn.ID)
	suite.assertCode(err, apperrors.CodeInvalidState)

	_, err = suite.service.Reject(suite.ctx, suite.owner.ID, txn.ID, nil)
	suite.Require().NoError(err)

	for name, apply := range map[string]func() (*domain.Transaction, error){
		"approve":  func() (*domain.Transaction, error) { return suite.service.Approve(suite.ctx, suite.owner.ID, txn.ID, nil) },
		"reject":   func() (*domain.Transaction, error) { return suite.service.Reject(suite.ctx, suite.owner.ID, txn.ID, nil) },
		"complete": func() (*domain.Transaction, error) { return suite.service.Complete(suite.ctx, suite.owner.ID, txn.ID) },
		"cancel":   func() (*domain.Transaction, error) { return suite.service.Cancel(suite.ctx, suite.renter.ID, txn.ID) },
	} {
		_, err := apply()
		suite.assertCode(err, apperrors.CodeInvalidState)
		suite.Contains(err.Error(), "rejected", name)
	}
}

func (suite *TransactionServiceTestSuite) TestCancel_EitherPartyButNotStrangers() {
	first := suite.request(suite.listing.ID)
	second := suite.request(suite.listing.ID)

	_, err := suite.service.Cancel(suite.ctx, suite.stranger.ID, first.ID)
	suite.assertCode(err, apperrors.CodeUnauthorized)

	cancelled, err := suite.service.Cancel(suite.ctx, suite.renter.ID, first.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.TransactionStatusCancelled, cancelled.Status)
	suite.NotNil(cancelled.CancelledAt)

	_, err = suite.service.Approve(suite.ctx, suite.owner.ID, second.ID, nil)
	suite.Require().NoError(err)
	cancelled, err = suite.service.Cancel(suite.ctx, suite.owner.ID, second.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.TransactionStatusCancelled, cancelled.Status)
}

func (suite *TransactionServiceTestSuite) TestTransition_MissingTransaction() {
	_, err := suite.service.Approve(suite.ctx, suite.owner.ID, "missing", nil)
	suite.assertCode(err, apperrors.CodeNotFound)
}

func (suite *TransactionServiceTestSuite) TestSuspendedOwnerCannotApproveButRenterMayCancel() {
	txn := suite.request(suite.listing.ID)
	suite.setStatus(suite.owner, domain.VerificationSuspended)

	_, err := suite.service.Approve(suite.ctx, suite.owner.ID, txn.ID, nil)
	suite.assertCode(err, apperrors.CodeForbidden)
	suite.Equal("approving rental requests", apperrors.ToDomainError(err).Details["blocked_action"])

	suite.setStatus(suite.renter, domain.VerificationSuspended)
	cancelled, err := suite.service.Cancel(suite.ctx, suite.renter.ID, txn.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.TransactionStatusCancelled, cancelled.Status)
}

func (suite *TransactionServiceTestSuite) TestInactiveAccountCannotCancel() {
	txn := suite.request(suite.listing.ID)
	suite.setStatus(suite.renter, domain.VerificationInactive)

	_, err := suite.service.Cancel(suite.ctx, suite.renter.ID, txn.ID)

	suite.assertCode(err, apperrors.CodeForbidden)
	details := apperrors.ToDomainError(err).Details
	suite.Equal(true, details["requires_logout"])
	suite.Equal("deactivated", details["restriction"])
	stored, err := suite.store.Transactions().GetByID(suite.ctx, txn.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.TransactionStatusPending, stored.Status)
}

func (suite *TransactionServiceTestSuite) TestConcurrentApprove_ExactlyOneWins() {
	txn := suite.request(suite.listing.ID)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := suite.service.Approve(suite.ctx, suite.owner.ID, txn.ID, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperrors.HasCode(err, apperrors.CodeInvalidState):
				conflicts++
			}
		}()
	}
	wg.Wait()

	suite.Equal(1, successes)
	suite.Equal(attempts-1, conflicts)
	history, err := suite.store.History().ListByTransaction(suite.ctx, txn.ID)
	suite.Require().NoError(err)
	suite.Len(history, 2)
}

func (suite *TransactionServiceTestSuite) TestCompleteTwice_KeepsFirstTimestamp() {
	txn := suite.request(suite.listing.ID)
	_, err := suite.service.Approve(suite.ctx, suite.owner.ID, txn.ID, nil)
	suite.Require().NoError(err)

	completed, err := suite.service.Complete(suite.ctx, suite.owner.ID, txn.ID)
	suite.Require().NoError(err)
	first := *completed.CompletedAt

	_, err = suite.service.Complete(suite.ctx, suite.owner.ID, txn.ID)
	suite.assertCode(err, apperrors.CodeInvalidState)

	stored, err := suite.store.Transactions().GetByID(suite.ctx, txn.ID)
	suite.Require().NoError(err)
	suite.Equal(first, *stored.CompletedAt)
}

func (suite *TransactionServiceTestSuite) TestNotificationFailureDoesNotFailTransition() {
	notifications := new(MockNotificationRepository)
	notifications.On("Create", mock.Anything, mock.AnythingOfType("*domain.Notification")).Return(errors.New("notifications table offline"))
	store := notificationStore{Store: suite.store, notifications: notifications}
	svc := suite.newService(store, service.TransactionPolicy{PlatformFee: domain.DefaultPlatformFee})

	txn, err := svc.CreateDirectRequest(suite.ctx, service.DirectRequestInput{
		RentalID:  suite.listing.ID,
		RenterID:  suite.renter.ID,
		StartDate: fixedNow,
		EndDate:   fixedNow,
	})
	suite.Require().NoError(err)

	approved, err := svc.Approve(suite.ctx, suite.owner.ID, txn.ID, nil)
	suite.Require().NoError(err)
	suite.Equal(domain.TransactionStatusApproved, approved.Status)
	notifications.AssertNumberOfCalls(suite.T(), "Create", 3)
}

// --- Listing release policy ---

func (suite *TransactionServiceTestSuite) checkoutOne() *domain.Transaction {
	result, err := suite.service.Checkout(suite.ctx, suite.checkoutInput(domain.PaymentCashOnDelivery, item(suite.listing, "100")))
	suite.Require().NoError(err)
	return &result.Transactions[0]
}

func (suite *TransactionServiceTestSuite) listingStatus() domain.ListingStatus {
	listing, err := suite.store.Listings().GetByID(suite.ctx, suite.listing.ID)
	suite.Require().NoError(err)
	return listing.Status
}

func (suite *TransactionServiceTestSuite) TestReject_RetainPolicyKeepsListingRented() {
	txn := suite.checkoutOne()

	_, err := suite.service.Reject(suite.ctx, suite.owner.ID, txn.ID, nil)
	suite.Require().NoError(err)

	suite.Equal(domain.ListingRented, suite.listingStatus())
}

func (suite *TransactionServiceTestSuite) TestReject_ReleasePolicyFreesListing() {
	suite.service = suite.newService(suite.store, service.TransactionPolicy{
		PlatformFee:    domain.DefaultPlatformFee,
		ListingRelease: domain.ListingRelease,
	})
	txn := suite.checkoutOne()

	_, err := suite.service.Reject(suite.ctx, suite.owner.ID, txn.ID, nil)
	suite.Require().NoError(err)

	suite.Equal(domain.ListingAvailable, suite.listingStatus())
}

func (suite *TransactionServiceTestSuite) TestCancel_ReleasePolicyWaitsForOpenTransactions() {
	suite.service = suite.newService(suite.store, service.TransactionPolicy{
		PlatformFee:    domain.DefaultPlatformFee,
		ListingRelease: domain.ListingRelease,
	})
	checkout := suite.checkoutOne()
	direct := suite.request(suite.listing.ID)

	_, err := suite.service.Cancel(suite.ctx, suite.renter.ID, checkout.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.ListingRented, suite.listingStatus())

	_, err = suite.service.Cancel(suite.ctx, suite.renter.ID, direct.ID)
	suite.Require().NoError(err)
	suite.Equal(domain.ListingAvailable, suite.listingStatus())
}

// --- Reads ---

func (suite *TransactionServiceTestSuite) TestGetEarnings() {
	seed := func(status domain.TransactionStatus, amount int64) {
		suite.Require().NoError(suite.store.Transactions().Create(suite.ctx, &domain.Transaction{
			RentalID:    suite.listing.ID,
			OwnerID:     suite.owner.ID,
			Status:      status,
			TotalAmount: decimal.NewFromInt(amount),
		}))
	}
	seed(domain.TransactionStatusCompleted, 200)
	seed(domain.TransactionStatusCompleted, 300)
	seed(domain.TransactionStatusPending, 100)
	seed(domain.TransactionStatusApproved, 200)
	seed(domain.TransactionStatusRejected, 999)
	seed(domain.TransactionStatusCancelled, 999)

	earnings, err := suite.service.GetEarnings(suite.ctx, suite.owner.ID)

	suite.Require().NoError(err)
	suite.Equal("500.00", earnings.Completed.StringFixed(2))
	suite.Equal("300.00", earnings.Pending.StringFixed(2))
	suite.Equal(2, earnings.CompletedCount)
	suite.Equal(2, earnings.PendingCount)

	none, err := suite.service.GetEarnings(suite.ctx, suite.stranger.ID)
	suite.Require().NoError(err)
	suite.True(none.Completed.IsZero())
	suite.True(none.Pending.IsZero())
}

func (suite *TransactionServiceTestSuite) TestListAndGetTransactions() {
	txn := suite.request(suite.listing.ID)

	owned, err := suite.service.ListTransactions(suite.ctx, suite.owner.ID, service.TransactionQuery{Role: "owner"})
	suite.Require().NoError(err)
	suite.Len(owned, 1)

	rented, err := suite.service.ListTransactions(suite.ctx, suite.owner.ID, service.TransactionQuery{Role: "renter"})
	suite.Require().NoError(err)
	suite.Empty(rented)

	pending, err := suite.service.ListTransactions(suite.ctx, suite.renter.ID, service.TransactionQuery{
		Statuses: []domain.TransactionStatus{domain.TransactionStatusPending},
	})
	suite.Require().NoError(err)
	suite.Len(pending, 1)

	_, err = suite.service.ListTransactions(suite.ctx, suite.renter.ID, service.TransactionQuery{Role: "landlord"})
	suite.assertCode(err, apperrors.CodeValidation)
	_, err = suite.service.ListTransactions(suite.ctx, suite.renter.ID, service.TransactionQuery{
		Statuses: []domain.TransactionStatus{"archived"},
	})
	suite.assertCode(err, apperrors.CodeValidation)

	_, err = suite.service.GetTransaction(suite.ctx, suite.stranger.ID, txn.ID)
	suite.assertCode(err, apperrors.CodeUnauthorized)
	got, err := suite.service.GetTransaction(suite.ctx, suite.renter.ID, txn.ID)
	suite.Require().NoError(err)
	suite.Equal(txn.ID, got.ID)
}
