package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hulame/rental-service/internal/api/dto"
	"github.com/hulame/rental-service/internal/service"
)

// AdminHandler exposes account administration.
type AdminHandler struct {
	accounts *service.AccountService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(accounts *service.AccountService) *AdminHandler {
	return &AdminHandler{accounts: accounts}
}

// ListUsers GET /admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	users, err := h.accounts.ListUsers(c.UserContext(), service.UserQuery{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i], true))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetStatus PUT /admin/users/:id/status.
func (h *AdminHandler) SetStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SetAccountStatusRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	user, err := h.accounts.SetAccountStatus(c.UserContext(), principal.UserID(), c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, true)})
}

// ApproveVerification POST /admin/verification/:id/approve.
func (h *AdminHandler) ApproveVerification(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.accounts.ApproveVerification(c.UserContext(), principal.UserID(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, true)})
}

// DenyVerification POST /admin/verification/:id/deny.
func (h *AdminHandler) DenyVerification(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.accounts.DenyVerification(c.UserContext(), principal.UserID(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserResponse(user, true)})
}
