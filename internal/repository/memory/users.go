package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/repository"
)

type userRepository struct {
	s *Store
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	defer r.s.lock()()
	for _, existing := range r.s.data().users {
		if strings.EqualFold(existing.Email, user.Email) {
			return repository.ErrDuplicate
		}
	}
	if user.ID == "" {
		user.ID = newID()
	}
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.data().users[user.ID] = *user
	return nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	defer r.s.lock()()
	stored, ok := r.s.data().users[user.ID]
	if !ok || stored.Status != user.Status {
		return repository.ErrStaleStatus
	}
	stored.Name = user.Name
	stored.ContactNumber = user.ContactNumber
	stored.Bio = user.Bio
	stored.UpdatedAt = r.s.now()
	r.s.data().users[user.ID] = stored
	user.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *userRepository) SetVerificationDocument(ctx context.Context, id, documentRef string) error {
	defer r.s.lock()()
	stored, ok := r.s.data().users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.VerificationDocument = &documentRef
	stored.UpdatedAt = r.s.now()
	r.s.data().users[id] = stored
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	defer r.s.lock()()
	user, ok := r.s.data().users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	defer r.s.lock()()
	for _, user := range r.s.data().users {
		if strings.EqualFold(user.Email, email) {
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepository) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	defer r.s.lock()()
	var result []domain.User
	for _, user := range r.s.data().users {
		if filter.Status != nil && user.Status != *filter.Status {
			continue
		}
		if filter.SearchTerm != nil && !containsFold(user.Name, *filter.SearchTerm) && !containsFold(user.Email, *filter.SearchTerm) {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return page(result, filter.Limit, filter.Offset), nil
}

func (r *userRepository) SetStatus(ctx context.Context, id string, status domain.VerificationStatus, from ...domain.VerificationStatus) error {
	defer r.s.lock()()
	user, ok := r.s.data().users[id]
	if !ok {
		if len(from) > 0 {
			return repository.ErrStaleStatus
		}
		return pgx.ErrNoRows
	}
	if len(from) > 0 && !contains(from, user.Status) {
		return repository.ErrStaleStatus
	}
	user.Status = status
	user.UpdatedAt = r.s.now()
	r.s.data().users[id] = user
	return nil
}
