package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hulame/rental-service/internal/api/dto"
	"github.com/hulame/rental-service/internal/service"
)

// UsersHandler serves the signed-in user's own account.
type UsersHandler struct {
	accounts     *service.AccountService
	transactions *service.TransactionService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accounts *service.AccountService, transactions *service.TransactionService) *UsersHandler {
	return &UsersHandler{accounts: accounts, transactions: transactions}
}

// Me GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.accounts.GetProfile(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, true)})
}

// Earnings GET /users/me/earnings.
func (h *UsersHandler) Earnings(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	earnings, err := h.transactions.GetEarnings(c.UserContext(), principal.UserID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEarningsResponse(earnings)})
}

// UpdateProfile PUT /users/me/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.UpdateProfile(c.UserContext(), principal.UserID(), service.ProfileUpdate{
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Bio:           req.Bio,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, true)})
}

// SubmitVerification POST /users/me/verification.
func (h *UsersHandler) SubmitVerification(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SubmitVerificationRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.SubmitVerification(c.UserContext(), principal.UserID(), req.DocumentRef)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, true)})
}
