package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hulame/rental-service/internal/auth"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// bindJSON parses the body into dst and runs struct validation on it.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]any, len(verrs))
			for _, fe := range verrs {
				fields[fieldName(fe)] = fe.Tag()
			}
			return apperrors.NewValidationError("request validation failed", map[string]any{"fields": fields})
		}
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return nil
}

// fieldName turns "CheckoutRequest.Items[0].ListingID" into "items[0].listingid".
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		ns = ns[idx+1:]
	}
	return strings.ToLower(ns)
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthenticated("authentication required")
	}
	return principal, nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return v
}

// pagination maps page/page_size query params to limit and offset.
func pagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	size := parseInt(c.Query("page_size"), 20)
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}

func splitCSV(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
