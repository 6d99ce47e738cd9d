package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hulame/rental-service/internal/api/dto"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/service"
)

// ListingsHandler serves the listing catalogue.
type ListingsHandler struct {
	service *service.ListingService
}

// NewListingsHandler constructs handler.
func NewListingsHandler(listingService *service.ListingService) *ListingsHandler {
	return &ListingsHandler{service: listingService}
}

// ListListings GET /listings.
func (h *ListingsHandler) ListListings(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	listings, err := h.service.ListListings(c.UserContext(), service.ListingQuery{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		OwnerID: c.Query("owner_id"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return err
	}
	items := make([]dto.ListingResponse, 0, len(listings))
	for i := range listings {
		items = append(items, dto.NewListingResponse(&listings[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetListing GET /listings/:id.
func (h *ListingsHandler) GetListing(c *fiber.Ctx) error {
	listing, err := h.service.GetListing(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// CreateListing POST /listings.
func (h *ListingsHandler) CreateListing(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateListingRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	listing, err := h.service.CreateListing(c.UserContext(), principal.UserID(), service.ListingInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}

// UpdateListing PUT /listings/:id.
func (h *ListingsHandler) UpdateListing(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateListingRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	update := service.ListingUpdate{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Location:    req.Location,
	}
	if req.Status != nil {
		status := domain.ListingStatus(*req.Status)
		update.Status = &status
	}
	listing, err := h.service.UpdateListing(c.UserContext(), principal.UserID(), c.Params("id"), update)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(listing)})
}
