package handlers

import (
	"errors"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/dto"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/services"
	"github.com/ahmetcoskunkizilkaya/listkeeper/internal/store"
	"github.com/gofiber/fiber/v2"
)

func errorJSON(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

func badRequest(c *fiber.Ctx, message string) error {
	return errorJSON(c, fiber.StatusBadRequest, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrListNotFound),
		errors.Is(err, services.ErrItemNotFound),
		errors.Is(err, services.ErrUserNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists),
		errors.Is(err, services.ErrAlreadyRemoved):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrOwnerNotFound):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, services.ErrMissingCredentials),
		errors.Is(err, services.ErrNameRequired):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// respondError maps service and store errors to a status code. Server errors
// are logged and their details hidden from the client.
func respondError(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
			"error", err.Error(),
		)
		return errorJSON(c, status, "Internal server error")
	}
	return errorJSON(c, status, err.Error())
}
