package handlers

import (
	"errors"
	"log/slog"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/apperr"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// respondError maps a service error to an HTTP response. The error
// code travels in the body so clients can branch without parsing
// message text; insufficient_funds keeps its own code so the UI can
// show the balance shortfall.
func respondError(c *fiber.Ctx, err error) error {
	var e *apperr.Error
	if errors.As(err, &e) {
		status := fiber.StatusInternalServerError
		switch e.Kind {
		case apperr.KindValidation, apperr.KindInsufficientFunds:
			status = fiber.StatusBadRequest
		case apperr.KindAuthorization:
			status = fiber.StatusForbidden
		case apperr.KindNotFound:
			status = fiber.StatusNotFound
		case apperr.KindConflict:
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(dto.ErrorResponse{
			Error:   true,
			Code:    string(e.Kind),
			Message: e.Message,
		})
	}

	slog.Error("unhandled service error", "method", c.Method(), "path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Internal server error",
	})
}

func respondUnauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Code: "authorization", Message: "Unauthorized",
	})
}

func respondBadBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Code: "validation", Message: "Invalid request body",
	})
}
