package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/hulame/rental-service/internal/api/dto"
	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/service"
	apperrors "github.com/hulame/rental-service/pkg/util/errorutil"
)

// TransactionsHandler exposes the rental transaction lifecycle.
type TransactionsHandler struct {
	service *service.TransactionService
}

// NewTransactionsHandler constructs handler.
func NewTransactionsHandler(transactionService *service.TransactionService) *TransactionsHandler {
	return &TransactionsHandler{service: transactionService}
}

// CreateRentalRequest POST /rental-requests.
func (h *TransactionsHandler) CreateRentalRequest(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.RentalRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	start, err := time.Parse(time.DateOnly, req.StartDate)
	if err != nil {
		return apperrors.NewValidationError("invalid start_date", nil)
	}
	end, err := time.Parse(time.DateOnly, req.EndDate)
	if err != nil {
		return apperrors.NewValidationError("invalid end_date", nil)
	}
	txn, err := h.service.CreateDirectRequest(c.UserContext(), service.DirectRequestInput{
		RentalID:  req.RentalID,
		RenterID:  principal.UserID(),
		StartDate: start,
		EndDate:   end,
		Message:   req.Message,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}

// Checkout POST /checkout. Guests may check out without a token.
func (h *TransactionsHandler) Checkout(c *fiber.Ctx) error {
	var req dto.CheckoutRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	input := service.CheckoutInput{
		Items: make([]service.CheckoutItemInput, 0, len(req.Items)),
		Contact: service.CheckoutContact{
			Name:          req.Name,
			Email:         req.Email,
			ContactNumber: req.ContactNumber,
		},
		RentDuration:  req.RentDuration,
		Message:       req.Message,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, service.CheckoutItemInput{ListingID: item.ListingID, Price: item.Price})
	}
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		renterID := principal.UserID()
		input.RenterID = &renterID
	}

	result, err := h.service.Checkout(c.UserContext(), input)
	if err != nil {
		return err
	}
	items := make([]dto.TransactionResponse, 0, len(result.Transactions))
	for i := range result.Transactions {
		items = append(items, dto.NewTransactionResponse(&result.Transactions[i]))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.CheckoutResponse{
		Transactions:  items,
		Subtotal:      result.Totals.Subtotal.StringFixed(2),
		PlatformFee:   result.Totals.PlatformFee.StringFixed(2),
		Total:         result.Totals.Total.StringFixed(2),
		PaymentMethod: string(result.PaymentMethod),
		ItemCount:     len(items),
	}})
}

// ListTransactions GET /transactions?role=owner|renter&status=pending,approved.
func (h *TransactionsHandler) ListTransactions(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	limit, offset := pagination(c)
	query := service.TransactionQuery{
		Role:   c.Query("role"),
		Limit:  limit,
		Offset: offset,
	}
	for _, status := range splitCSV(c.Query("status")) {
		query.Statuses = append(query.Statuses, domain.TransactionStatus(status))
	}
	txns, err := h.service.ListTransactions(c.UserContext(), principal.UserID(), query)
	if err != nil {
		return err
	}
	items := make([]dto.TransactionResponse, 0, len(txns))
	for i := range txns {
		items = append(items, dto.NewTransactionResponse(&txns[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTransaction GET /transactions/:id.
func (h *TransactionsHandler) GetTransaction(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	txn, err := h.service.GetTransaction(c.UserContext(), principal.UserID(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}

// History GET /transactions/:id/history.
func (h *TransactionsHandler) History(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	entries, err := h.service.History(c.UserContext(), principal.UserID(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.HistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewHistoryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Approve POST /transactions/:id/approve.
func (h *TransactionsHandler) Approve(c *fiber.Ctx) error {
	return h.respond(c, func(actorID, id string, note *string) (*domain.Transaction, error) {
		return h.service.Approve(c.UserContext(), actorID, id, note)
	})
}

// Reject POST /transactions/:id/reject.
func (h *TransactionsHandler) Reject(c *fiber.Ctx) error {
	return h.respond(c, func(actorID, id string, note *string) (*domain.Transaction, error) {
		return h.service.Reject(c.UserContext(), actorID, id, note)
	})
}

// Complete POST /transactions/:id/complete.
func (h *TransactionsHandler) Complete(c *fiber.Ctx) error {
	return h.respond(c, func(actorID, id string, _ *string) (*domain.Transaction, error) {
		return h.service.Complete(c.UserContext(), actorID, id)
	})
}

// Cancel POST /transactions/:id/cancel.
func (h *TransactionsHandler) Cancel(c *fiber.Ctx) error {
	return h.respond(c, func(actorID, id string, _ *string) (*domain.Transaction, error) {
		return h.service.Cancel(c.UserContext(), actorID, id)
	})
}

func (h *TransactionsHandler) respond(c *fiber.Ctx, apply func(actorID, id string, note *string) (*domain.Transaction, error)) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.TransitionRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &req); err != nil {
			return err
		}
	}
	txn, err := apply(principal.UserID(), c.Params("id"), req.Response)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTransactionResponse(txn)})
}
