package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/jackc/pgx/v5"

	"github.com/hulame/rental-service/internal/domain"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
}

// UserID returns the caller id or "" for guests.
func (p *Principal) UserID() string {
	if p == nil || p.User == nil {
		return ""
	}
	return p.User.ID
}

// UserLoader fetches accounts by id.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  UserLoader
	gate   *StatusGate
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users UserLoader, gate *StatusGate) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, gate: gate}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	if principal == nil {
		return apperrors.NewUnauthenticated("missing authorization header")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional loads a principal when a token is present and lets guests through.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	if principal != nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		// Browsers cannot set headers on websocket upgrades.
		if token := c.Query("token"); token != "" && websocket.IsWebSocketUpgrade(c) {
			authHeader = "Bearer " + token
		} else {
			return nil, nil
		}
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, apperrors.NewUnauthenticated("invalid token")
	}

	user, err := m.users.GetByID(c.UserContext(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthenticated("user not found")
		}
		return nil, apperrors.MapError(err)
	}
	// Deactivated accounts lose their session on every request.
	if user.Status == domain.VerificationInactive {
		return nil, m.gate.Check(user.Status, ActionSignIn).Err()
	}
	return &Principal{User: user}, nil
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
