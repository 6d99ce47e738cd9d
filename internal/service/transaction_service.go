package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/events"
	"github.com/hulame/rental-service/internal/observability"
	"github.com/hulame/rental-service/internal/repository"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// Checkout rows start tomorrow and run for a week.
const (
	checkoutStartOffsetDays = 1
	checkoutEndOffsetDays   = 7
)

// TransactionPolicy holds the configurable business rules of the engine.
type TransactionPolicy struct {
	PlatformFee            decimal.Decimal
	ReserveOnDirectRequest bool
	ListingRelease         domain.ListingReleasePolicy
}

// TransactionService owns the rental transaction lifecycle.
type TransactionService struct {
	store      repository.Store
	gate       *auth.StatusGate
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	policy     TransactionPolicy
	now        Clock
}

// TransactionDependencies bundles collaborators for the transaction service.
type TransactionDependencies struct {
	Store      repository.Store
	Gate       *auth.StatusGate
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Policy     TransactionPolicy
	Clock      Clock
}

// DirectRequestInput describes a renter asking for one listing over a date range.
type DirectRequestInput struct {
	RentalID  string
	RenterID  string
	StartDate time.Time
	EndDate   time.Time
	Message   *string
}

// CheckoutItemInput is one cart line.
type CheckoutItemInput struct {
	ListingID string
	Price     decimal.Decimal
}

// CheckoutContact is the renter contact captured at checkout.
type CheckoutContact struct {
	Name          string
	Email         string
	ContactNumber string
}

// CheckoutInput describes a cart checkout. RenterID is nil for guests.
type CheckoutInput struct {
	RenterID      *string
	Items         []CheckoutItemInput
	Contact       CheckoutContact
	RentDuration  string
	Message       *string
	PaymentMethod domain.PaymentMethod
}

// CheckoutResult carries the created rows and the renter-facing totals.
type CheckoutResult struct {
	Transactions  []domain.Transaction
	Totals        domain.CheckoutTotals
	PaymentMethod domain.PaymentMethod
}

// TransactionQuery filters a user's transactions.
type TransactionQuery struct {
	// Role is "owner", "renter" or "" for either side.
	Role     string
	Statuses []domain.TransactionStatus
	Limit    int
	Offset   int
}

// NewTransactionService constructs the service.
func NewTransactionService(deps TransactionDependencies) *TransactionService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	policy := deps.Policy
	if policy.ListingRelease == "" {
		policy.ListingRelease = domain.ListingRetain
	}
	return &TransactionService{
		store:      deps.Store,
		gate:       deps.Gate,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		metrics:    deps.Metrics,
		policy:     policy,
		now:        deps.Clock.orDefault(),
	}
}

// CreateDirectRequest records a pending rental request for one listing.
func (s *TransactionService) CreateDirectRequest(ctx context.Context, input DirectRequestInput) (*domain.Transaction, error) {
	renter, err := loadActor(ctx, s.store.Users(), s.gate, input.RenterID, auth.ActionRequestRental)
	if err != nil {
		return nil, err
	}

	listing, err := s.store.Listings().GetByID(ctx, input.RentalID)
	if err != nil {
		return nil, notFoundAs(err, "listing", map[string]any{"rental_id": input.RentalID})
	}
	if listing.OwnerID == renter.ID {
		return nil, apperrors.NewInvalidOperation("you cannot rent your own item", map[string]any{"rental_id": listing.ID})
	}

	now := s.now()
	today := domain.DateOnly(now)
	start := domain.DateOnly(input.StartDate)
	end := domain.DateOnly(input.EndDate)
	if start.Before(today) {
		return nil, apperrors.NewInvalidOperation("start date cannot be in the past", map[string]any{"start_date": start.Format(time.DateOnly)})
	}
	if end.Before(start) {
		return nil, apperrors.NewInvalidOperation("end date must be on or after the start date", map[string]any{
			"start_date": start.Format(time.DateOnly),
			"end_date":   end.Format(time.DateOnly),
		})
	}
	total := domain.DirectRentalTotal(listing.Price, start, end)
	if !total.IsPositive() {
		return nil, apperrors.NewInvalidOperation("total amount must be greater than zero", map[string]any{"total_amount": total.StringFixed(2)})
	}

	txn := &domain.Transaction{
		RentalID:      listing.ID,
		RenterID:      stringPtr(renter.ID),
		OwnerID:       listing.OwnerID,
		Status:        domain.TransactionStatusPending,
		StartDate:     start,
		EndDate:       end,
		TotalAmount:   total,
		RenterMessage: trimmedOrNil(input.Message),
		CreatedAt:     now,
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if s.policy.ReserveOnDirectRequest {
			if err := reserveListing(ctx, tx, listing.ID); err != nil {
				return err
			}
		}
		if err := tx.Transactions().Create(ctx, txn); err != nil {
			return err
		}
		return recordCreated(ctx, tx, txn, renter.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("rental requested",
		zap.String("transaction_id", txn.ID),
		zap.String("rental_id", txn.RentalID),
		zap.String("total_amount", txn.TotalAmount.StringFixed(2)))
	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:        events.EventRentalRequested,
		AggregateID: txn.ID,
		ActorID:     stringPtr(renter.ID),
		Payload: events.RentalRequestedPayload{
			Transaction:  *txn,
			ListingTitle: listing.Title,
			RenterName:   renter.Name,
		},
	})
	return txn, nil
}

// Checkout turns a cart into one transaction per item inside a single store transaction.
func (s *TransactionService) Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	var renterID string
	if input.RenterID != nil && *input.RenterID != "" {
		renter, err := loadActor(ctx, s.store.Users(), s.gate, *input.RenterID, auth.ActionCheckout)
		if err != nil {
			return nil, err
		}
		renterID = renter.ID
	}

	if err := validateCart(input); err != nil {
		return nil, err
	}

	now := s.now()
	today := domain.DateOnly(now)
	start := today.AddDate(0, 0, checkoutStartOffsetDays)
	end := today.AddDate(0, 0, checkoutEndOffsetDays)

	status := domain.TransactionStatusPending
	var completedAt *time.Time
	if input.PaymentMethod == domain.PaymentGCash {
		status = domain.TransactionStatusCompleted
		completedAt = &now
	}

	message := trimmedOrNil(input.Message)
	if message == nil {
		message = stringPtr(fmt.Sprintf("Rental request via checkout for %s", strings.TrimSpace(input.RentDuration)))
	}
	method := input.PaymentMethod

	var renterRef *string
	if renterID != "" {
		renterRef = stringPtr(renterID)
	}

	created := make([]domain.Transaction, 0, len(input.Items))
	items := make([]events.CheckoutItem, 0, len(input.Items))
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		for _, item := range input.Items {
			listing, err := tx.Listings().GetByID(ctx, item.ListingID)
			if err != nil {
				return notFoundAs(err, "listing", map[string]any{"listing_id": item.ListingID})
			}
			if renterID != "" && listing.OwnerID == renterID {
				return apperrors.NewInvalidOperation("you cannot rent your own item", map[string]any{"listing_id": listing.ID})
			}
			if err := reserveListing(ctx, tx, listing.ID); err != nil {
				return err
			}

			txn := &domain.Transaction{
				RentalID:      listing.ID,
				RenterID:      renterRef,
				OwnerID:       listing.OwnerID,
				Status:        status,
				StartDate:     start,
				EndDate:       end,
				TotalAmount:   item.Price,
				RenterMessage: message,
				PaymentMethod: &method,
				CreatedAt:     now,
				CompletedAt:   completedAt,
			}
			if err := tx.Transactions().Create(ctx, txn); err != nil {
				return err
			}
			if err := recordCreated(ctx, tx, txn, renterID); err != nil {
				return err
			}
			created = append(created, *txn)
			items = append(items, events.CheckoutItem{Transaction: *txn, ListingTitle: listing.Title})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prices := make([]decimal.Decimal, len(created))
	for i, txn := range created {
		prices[i] = txn.TotalAmount
	}
	totals := domain.SumCheckout(prices, s.policy.PlatformFee)

	s.logger.Info("checkout completed",
		zap.Int("items", len(created)),
		zap.String("payment_method", string(method)),
		zap.String("total", totals.Total.StringFixed(2)))
	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:        events.EventCheckoutCompleted,
		AggregateID: created[0].ID,
		ActorID:     renterRef,
		Payload: events.CheckoutCompletedPayload{
			RenterID:      renterRef,
			ContactName:   strings.TrimSpace(input.Contact.Name),
			PaymentMethod: method,
			Items:         items,
			Total:         totals.Total,
		},
	})

	return &CheckoutResult{Transactions: created, Totals: totals, PaymentMethod: method}, nil
}

func validateCart(input CheckoutInput) error {
	if len(input.Items) == 0 {
		return apperrors.NewInvalidOperation("cart is empty", nil)
	}
	if !input.PaymentMethod.Valid() {
		return apperrors.NewInvalidOperation("unsupported payment method", map[string]any{"payment_method": string(input.PaymentMethod)})
	}
	seen := make(map[string]struct{}, len(input.Items))
	for _, item := range input.Items {
		if _, dup := seen[item.ListingID]; dup {
			return apperrors.NewInvalidOperation("listing appears more than once in the cart", map[string]any{"listing_id": item.ListingID})
		}
		seen[item.ListingID] = struct{}{}
		if !item.Price.IsPositive() {
			return apperrors.NewInvalidOperation("item price must be greater than zero", map[string]any{"listing_id": item.ListingID})
		}
	}
	return nil
}

// Approve accepts a pending request. Owner only.
func (s *TransactionService) Approve(ctx context.Context, actorID, transactionID string, response *string) (*domain.Transaction, error) {
	return s.transition(ctx, actorID, transactionID, domain.OperationApprove, auth.ActionApproveTransaction, response)
}

// Reject declines a pending request. Owner only.
func (s *TransactionService) Reject(ctx context.Context, actorID, transactionID string, response *string) (*domain.Transaction, error) {
	return s.transition(ctx, actorID, transactionID, domain.OperationReject, auth.ActionRejectTransaction, response)
}

// Complete closes an approved rental. Owner only.
func (s *TransactionService) Complete(ctx context.Context, actorID, transactionID string) (*domain.Transaction, error) {
	return s.transition(ctx, actorID, transactionID, domain.OperationComplete, auth.ActionCompleteTransaction, nil)
}

// Cancel withdraws a pending or approved rental. Either party may cancel.
func (s *TransactionService) Cancel(ctx context.Context, actorID, transactionID string) (*domain.Transaction, error) {
	return s.transition(ctx, actorID, transactionID, domain.OperationCancel, auth.ActionCancelTransaction, nil)
}

func (s *TransactionService) transition(ctx context.Context, actorID, transactionID string, op domain.TransactionOperation, action auth.Action, note *string) (*domain.Transaction, error) {
	updated, oldStatus, err := s.applyTransition(ctx, actorID, transactionID, op, action, note)
	if err != nil {
		outcome := "error"
		if domainErr := apperrors.ToDomainError(err); domainErr != nil {
			outcome = domainErr.Code
		}
		s.metrics.RecordTransition(string(op), outcome)
		return nil, err
	}
	s.metrics.RecordTransition(string(op), "ok")

	s.logger.Info("transaction transitioned",
		zap.String("transaction_id", updated.ID),
		zap.String("operation", string(op)),
		zap.String("from", string(oldStatus)),
		zap.String("to", string(updated.Status)))

	title := ""
	if listing, err := s.store.Listings().GetByID(ctx, updated.RentalID); err == nil {
		title = listing.Title
	}
	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:        events.EventTransactionTransition,
		AggregateID: updated.ID,
		ActorID:     stringPtr(actorID),
		Payload: events.TransactionTransitionPayload{
			Operation:    op,
			OldStatus:    oldStatus,
			Transaction:  *updated,
			ListingTitle: title,
		},
	})
	return updated, nil
}

func (s *TransactionService) applyTransition(ctx context.Context, actorID, transactionID string, op domain.TransactionOperation, action auth.Action, note *string) (*domain.Transaction, domain.TransactionStatus, error) {
	if _, err := loadActor(ctx, s.store.Users(), s.gate, actorID, action); err != nil {
		return nil, "", err
	}

	txn, err := s.store.Transactions().GetByID(ctx, transactionID)
	if err != nil {
		return nil, "", notFoundAs(err, "transaction", map[string]any{"transaction_id": transactionID})
	}

	rule, ok := domain.TransitionFor(op)
	if !ok {
		return nil, "", apperrors.NewInvalidOperation("unknown operation", map[string]any{"operation": string(op)})
	}
	if rule.OwnerOnly && !txn.IsOwner(actorID) {
		return nil, "", apperrors.NewUnauthorized(fmt.Sprintf("only the owner can %s this transaction", op))
	}
	if !rule.OwnerOnly && !txn.IsParty(actorID) {
		return nil, "", apperrors.NewUnauthorized(fmt.Sprintf("only a party to the rental can %s this transaction", op))
	}

	if _, ok := domain.NextStatus(txn.Status, op); !ok {
		return nil, "", invalidTransition(op, txn)
	}

	var response *string
	if rule.RecordsNote {
		response = trimmedOrNil(note)
	}

	var updated *domain.Transaction
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		updated, err = tx.Transactions().ChangeStatus(ctx, repository.StatusChange{
			ID:            txn.ID,
			From:          rule.From,
			To:            rule.To,
			OwnerResponse: response,
			At:            s.now(),
		})
		if errors.Is(err, repository.ErrStaleStatus) {
			// Another request moved the row between our read and this write.
			current, getErr := tx.Transactions().GetByID(ctx, txn.ID)
			if getErr != nil {
				return invalidTransition(op, txn)
			}
			return invalidTransition(op, current)
		}
		if err != nil {
			return err
		}

		old := txn.Status
		if err := tx.History().Create(ctx, &domain.TransactionHistory{
			TransactionID: updated.ID,
			ActorID:       stringPtr(actorID),
			Operation:     op,
			OldStatus:     &old,
			NewStatus:     updated.Status,
			Note:          response,
			CreatedAt:     updated.UpdatedAt,
		}); err != nil {
			return err
		}

		if op == domain.OperationReject || op == domain.OperationCancel {
			return s.releaseListing(ctx, tx, updated)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return updated, txn.Status, nil
}

func (s *TransactionService) releaseListing(ctx context.Context, tx repository.Store, txn *domain.Transaction) error {
	if s.policy.ListingRelease != domain.ListingRelease {
		return nil
	}
	open, err := tx.Transactions().CountOpenByRental(ctx, txn.RentalID, txn.ID)
	if err != nil {
		return err
	}
	if open > 0 {
		return nil
	}
	released, err := tx.Listings().Release(ctx, txn.RentalID)
	if err != nil {
		return err
	}
	if released {
		s.logger.Debug("listing released", zap.String("rental_id", txn.RentalID), zap.String("transaction_id", txn.ID))
	}
	return nil
}

// GetTransaction returns a transaction visible to one of its parties.
func (s *TransactionService) GetTransaction(ctx context.Context, actorID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.store.Transactions().GetByID(ctx, transactionID)
	if err != nil {
		return nil, notFoundAs(err, "transaction", map[string]any{"transaction_id": transactionID})
	}
	if !txn.IsParty(actorID) {
		return nil, apperrors.NewUnauthorized("you are not a party to this transaction")
	}
	return txn, nil
}

// History returns the audit trail of a transaction visible to one of its parties.
func (s *TransactionService) History(ctx context.Context, actorID, transactionID string) ([]domain.TransactionHistory, error) {
	if _, err := s.GetTransaction(ctx, actorID, transactionID); err != nil {
		return nil, err
	}
	return s.store.History().ListByTransaction(ctx, transactionID)
}

// ListTransactions returns transactions where the actor is owner, renter or either.
func (s *TransactionService) ListTransactions(ctx context.Context, actorID string, query TransactionQuery) ([]domain.Transaction, error) {
	filter := repository.TransactionFilter{
		Statuses: query.Statuses,
		Limit:    query.Limit,
		Offset:   query.Offset,
	}
	switch strings.ToLower(query.Role) {
	case "owner":
		filter.OwnerID = &actorID
	case "renter":
		filter.RenterID = &actorID
	case "", "any":
		filter.PartyID = &actorID
	default:
		return nil, apperrors.NewValidationError("role must be owner, renter or any", map[string]any{"role": query.Role})
	}
	for _, status := range query.Statuses {
		if !status.Valid() {
			return nil, apperrors.NewValidationError("unknown transaction status", map[string]any{"status": string(status)})
		}
	}
	return s.store.Transactions().List(ctx, filter)
}

// GetEarnings sums the owner's completed and outstanding income at read time.
func (s *TransactionService) GetEarnings(ctx context.Context, userID string) (domain.Earnings, error) {
	return s.store.Transactions().EarningsByOwner(ctx, userID)
}

func reserveListing(ctx context.Context, tx repository.Store, listingID string) error {
	reserved, err := tx.Listings().Reserve(ctx, listingID)
	if err != nil {
		return err
	}
	if !reserved {
		return apperrors.NewInvalidOperation("listing not available", map[string]any{"listing_id": listingID})
	}
	return nil
}

func recordCreated(ctx context.Context, tx repository.Store, txn *domain.Transaction, actorID string) error {
	var actor *string
	if actorID != "" {
		actor = stringPtr(actorID)
	}
	return tx.History().Create(ctx, &domain.TransactionHistory{
		TransactionID: txn.ID,
		ActorID:       actor,
		Operation:     domain.OperationCreate,
		NewStatus:     txn.Status,
		Note:          txn.RenterMessage,
		CreatedAt:     txn.CreatedAt,
	})
}

func invalidTransition(op domain.TransactionOperation, txn *domain.Transaction) error {
	return apperrors.NewInvalidState(
		fmt.Sprintf("cannot %s a %s transaction", op, txn.Status),
		map[string]any{"transaction_id": txn.ID, "status": string(txn.Status), "operation": string(op)},
	)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
