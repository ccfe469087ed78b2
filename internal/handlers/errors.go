package handlers

import (
	"errors"

	"github.com/bazarly/backend/internal/dto"
	"github.com/bazarly/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// fail maps service errors to HTTP statuses. Unrecognized errors become a
// generic 500 so internals are not leaked.
func fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return respond(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return respond(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return respond(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
		return respond(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		return respond(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		return respond(c, fiber.StatusNotFound, err.Error())
	default:
		return respond(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func respond(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}
