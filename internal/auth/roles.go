package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// RequireAdmin ensures the caller holds the admin role.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.User == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !principal.User.IsAdmin() {
			return apperrors.NewUnauthorized("admin role required")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal was loaded.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if principal, ok := PrincipalFromContext(c); !ok || principal.User == nil {
			return apperrors.NewUnauthenticated("authentication required")
		}
		return c.Next()
	}
}
