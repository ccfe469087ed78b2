package handlers

import (
	"strconv"

	"github.com/bazarly/backend/internal/dto"
	"github.com/bazarly/backend/internal/middleware"
	"github.com/bazarly/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ListingHandler struct {
	listingService *services.ListingService
}

func NewListingHandler(listingService *services.ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body")
	}

	listing, err := h.listingService.Create(userID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

func (h *ListingHandler) GetByID(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	listing, err := h.listingService.GetByID(id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

func (h *ListingHandler) List(c *fiber.Ctx) error {
	filters := dto.ListingFilters{
		Keyword:  c.Query("q"),
		Category: c.Query("category"),
		Location: c.Query("location"),
	}

	if raw := c.Query("min_price"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return respond(c, fiber.StatusBadRequest, "Invalid min_price format")
		}
		filters.MinPrice = &p
	}
	if raw := c.Query("max_price"); raw != "" {
		p, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return respond(c, fiber.StatusBadRequest, "Invalid max_price format")
		}
		filters.MaxPrice = &p
	}

	listings, err := h.listingService.List(&filters)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listings)
}

func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	var req dto.UpdateListingRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body")
	}

	listing, err := h.listingService.Update(id, userID, &req)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(listing)
}

func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	if err := h.listingService.Delete(id, userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Listing deleted successfully"})
}
