package handlers

import (
	"github.com/bazarly/backend/internal/dto"
	"github.com/bazarly/backend/internal/middleware"
	"github.com/bazarly/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type MediaHandler struct {
	mediaService *services.MediaService
}

func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// Upload ingests a multipart batch under the "files" field. Files failing
// type validation are skipped and reported; when every file is rejected the
// response is 415.
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	form, err := c.MultipartForm()
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid multipart form")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return respond(c, fiber.StatusBadRequest, "No file part in the request")
	}

	result, err := h.mediaService.Append(listingID, userID, files)
	if err != nil {
		return fail(c, err)
	}
	if len(result.Uploaded) == 0 {
		return c.Status(fiber.StatusUnsupportedMediaType).JSON(result)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (h *MediaHandler) Reorder(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid listing ID")
	}

	var req dto.ReorderMediaRequest
	if err := c.BodyParser(&req); err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.MediaIDs == nil {
		return respond(c, fiber.StatusBadRequest, "Missing required field: media_ids")
	}

	media, err := h.mediaService.Reorder(listingID, userID, req.MediaIDs)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"media": media})
}

func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return respond(c, fiber.StatusUnauthorized, "Unauthorized")
	}

	mediaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid media ID")
	}

	if err := h.mediaService.Remove(mediaID, userID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Media deleted successfully"})
}

func (h *MediaHandler) List(c *fiber.Ctx) error {
	media, err := h.mediaService.ListAll()
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(media)
}

func (h *MediaHandler) GetByID(c *fiber.Ctx) error {
	mediaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return respond(c, fiber.StatusBadRequest, "Invalid media ID")
	}

	media, err := h.mediaService.GetByID(mediaID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(media)
}
