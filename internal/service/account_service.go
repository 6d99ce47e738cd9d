package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/events"
	"github.com/hulame/rental-service/internal/repository"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// AccountService manages profiles, verification and account status.
type AccountService struct {
	store      repository.Store
	gate       *auth.StatusGate
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        Clock
}

// AccountDependencies bundles collaborators for the account service.
type AccountDependencies struct {
	Store      repository.Store
	Gate       *auth.StatusGate
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Clock      Clock
}

// ProfileUpdate carries optional profile fields; nil leaves a field unchanged.
type ProfileUpdate struct {
	Name          *string
	ContactNumber *string
	Bio           *string
}

// UserQuery filters the admin user list. Status uses the public vocabulary.
type UserQuery struct {
	Search string
	Status string
	Limit  int
	Offset int
}

// NewAccountService constructs the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		store:      deps.Store,
		gate:       deps.Gate,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        deps.Clock.orDefault(),
	}
}

// GetProfile returns the account of userID.
func (s *AccountService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user", map[string]any{"user_id": userID})
	}
	return user, nil
}

// UpdateProfile edits the caller's own profile.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*domain.User, error) {
	user, err := loadActor(ctx, s.store.Users(), s.gate, userID, auth.ActionUpdateProfile)
	if err != nil {
		return nil, err
	}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		user.Name = name
	}
	if update.ContactNumber != nil {
		user.ContactNumber = trimmedOrNil(update.ContactNumber)
	}
	if update.Bio != nil {
		user.Bio = trimmedOrNil(update.Bio)
	}
	if err := s.store.Users().UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, s.staleAccount(ctx, userID, auth.ActionUpdateProfile)
		}
		return nil, err
	}
	return user, nil
}

// staleAccount explains a write that lost to a concurrent status change:
// the gate decision is taken again on the current status.
func (s *AccountService) staleAccount(ctx context.Context, userID string, action auth.Action) error {
	if _, err := loadActor(ctx, s.store.Users(), s.gate, userID, action); err != nil {
		return err
	}
	return apperrors.NewInvalidState("account status changed, please retry", nil)
}

// SubmitVerification stores a document reference and moves the account to pending review.
func (s *AccountService) SubmitVerification(ctx context.Context, userID, documentRef string) (*domain.User, error) {
	user, err := loadActor(ctx, s.store.Users(), s.gate, userID, auth.ActionSubmitVerification)
	if err != nil {
		return nil, err
	}
	documentRef = strings.TrimSpace(documentRef)
	if documentRef == "" {
		return nil, apperrors.NewValidationError("verification document is required", nil)
	}
	if !user.Status.CanSubmitVerification() {
		return nil, apperrors.NewInvalidState("verification cannot be submitted in the current account status",
			map[string]any{"user_status": string(domain.ToPublicStatus(user.Status))})
	}

	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		if err := tx.Users().SetStatus(ctx, user.ID, domain.VerificationPending, domain.VerificationUnverified, domain.VerificationDenied); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return apperrors.NewInvalidState("verification cannot be submitted in the current account status", nil)
			}
			return err
		}
		user.Status = domain.VerificationPending
		user.VerificationDocument = &documentRef
		return tx.Users().SetVerificationDocument(ctx, user.ID, documentRef)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("verification submitted", zap.String("user_id", user.ID))
	return user, nil
}

// ListUsers returns accounts for the admin console.
func (s *AccountService) ListUsers(ctx context.Context, query UserQuery) ([]domain.User, error) {
	filter := repository.UserFilter{Limit: query.Limit, Offset: query.Offset}
	if search := strings.TrimSpace(query.Search); search != "" {
		filter.SearchTerm = &search
	}
	if query.Status != "" {
		status, err := domain.FromPublicStatus(query.Status)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": query.Status})
		}
		filter.Status = &status
	}
	return s.store.Users().List(ctx, filter)
}

// SetAccountStatus lets an admin move any other account to a public status.
func (s *AccountService) SetAccountStatus(ctx context.Context, adminID, userID, publicStatus string) (*domain.User, error) {
	status, err := domain.FromPublicStatus(publicStatus)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"status": publicStatus})
	}
	if adminID == userID {
		return nil, apperrors.NewInvalidOperation("admins cannot change their own account status", nil)
	}
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user", map[string]any{"user_id": userID})
	}
	old := user.Status
	if err := s.store.Users().SetStatus(ctx, user.ID, status); err != nil {
		return nil, notFoundAs(err, "user", map[string]any{"user_id": userID})
	}
	user.Status = status

	s.logger.Info("account status changed",
		zap.String("admin_id", adminID),
		zap.String("user_id", user.ID),
		zap.String("from", string(old)),
		zap.String("to", string(status)))
	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:        events.EventAccountStatusChanged,
		AggregateID: user.ID,
		ActorID:     stringPtr(adminID),
		Payload:     events.AccountStatusChangedPayload{UserID: user.ID, OldStatus: old, NewStatus: status},
	})
	return user, nil
}

// ApproveVerification accepts a pending verification request.
func (s *AccountService) ApproveVerification(ctx context.Context, adminID, userID string) (*domain.User, error) {
	return s.reviewVerification(ctx, adminID, userID, true)
}

// DenyVerification rejects a pending verification request.
func (s *AccountService) DenyVerification(ctx context.Context, adminID, userID string) (*domain.User, error) {
	return s.reviewVerification(ctx, adminID, userID, false)
}

func (s *AccountService) reviewVerification(ctx context.Context, adminID, userID string, approve bool) (*domain.User, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundAs(err, "user", map[string]any{"user_id": userID})
	}
	target := domain.VerificationDenied
	if approve {
		target = domain.VerificationApproved
	}
	if err := s.store.Users().SetStatus(ctx, user.ID, target, domain.VerificationPending); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.NewInvalidState("verification is not pending review",
				map[string]any{"user_status": string(domain.ToPublicStatus(user.Status))})
		}
		return nil, err
	}
	user.Status = target

	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:        events.EventVerificationReviewed,
		AggregateID: user.ID,
		ActorID:     stringPtr(adminID),
		Payload:     events.VerificationReviewedPayload{UserID: user.ID, Approved: approve},
	})
	return user, nil
}
