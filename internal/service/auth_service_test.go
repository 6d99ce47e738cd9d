package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/config"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/repository"
	"github.com/hulame/rental-service/internal/repository/memory"
	"github.com/hulame/rental-service/internal/service"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

func newAuthService() (*service.AuthService, *memory.Store, *auth.TokenManager) {
	store := newMemoryStore()
	tokens := auth.NewTokenManager("test-secret", 15)
	svc := service.NewAuthService(config.AuthConfig{BcryptCost: 4}, service.AuthDependencies{
		UserRepo: store.Users(),
		Tokens:   tokens,
		Gate:     auth.NewStatusGate(""),
	})
	return svc, store, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, tokens := newAuthService()

	registered, err := svc.Register(ctx, " Rae Renter ", "Rae@Example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, "Rae Renter", registered.User.Name)
	assert.Equal(t, "rae@example.com", registered.User.Email)
	assert.Equal(t, domain.VerificationUnverified, registered.User.Status)
	assert.Equal(t, domain.RoleUser, registered.User.Role)

	claims, err := tokens.ParseToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	loggedIn, err := svc.Login(ctx, "rae@example.com", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, "rae@example.com", "wrong-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	_, err = svc.Login(ctx, "nobody@example.com", "secret-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService()

	_, err := svc.Register(ctx, "First", "dup@example.com", "secret-pass")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Second", "DUP@example.com", "secret-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestLogin_AccountStatus(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newAuthService()

	result, err := svc.Register(ctx, "Sam", "sam@example.com", "secret-pass")
	require.NoError(t, err)

	require.NoError(t, store.Users().SetStatus(ctx, result.User.ID, domain.VerificationSuspended))
	_, err = svc.Login(ctx, "sam@example.com", "secret-pass")
	require.NoError(t, err, "suspended accounts may still sign in")

	require.NoError(t, store.Users().SetStatus(ctx, result.User.ID, domain.VerificationInactive))
	_, err = svc.Login(ctx, "sam@example.com", "secret-pass")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newAuthService()

	require.NoError(t, svc.EnsureAdmin(ctx, "Admin", "", ""))
	users, err := store.Users().List(ctx, repository.UserFilter{})
	require.NoError(t, err)
	assert.Empty(t, users)

	require.NoError(t, svc.EnsureAdmin(ctx, "Admin", "Admin@Example.com", "admin-pass"))
	require.NoError(t, svc.EnsureAdmin(ctx, "Admin", "admin@example.com", "other-pass"))

	admin, err := store.Users().GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
	assert.Equal(t, domain.VerificationApproved, admin.Status)

	_, err = svc.Login(ctx, "admin@example.com", "admin-pass")
	assert.NoError(t, err)
}
