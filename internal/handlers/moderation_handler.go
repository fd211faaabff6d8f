package handlers

import (
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/auth"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ModerationHandler struct {
	moderation *services.ModerationService
}

func NewModerationHandler(moderation *services.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// Queue handles GET /moderation/items?status=pending.
func (h *ModerationHandler) Queue(c *fiber.Ctx) error {
	actorID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	status := models.ModerationStatus(c.Query("status"))
	items, err := h.moderation.Queue(actorID, status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	return h.transition(c, h.moderation.Approve)
}

func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	return h.transition(c, h.moderation.Reject)
}

func (h *ModerationHandler) Delete(c *fiber.Ctx) error {
	actorID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation", Message: "Invalid item ID",
		})
	}

	if err := h.moderation.Delete(actorID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ModerationHandler) transition(c *fiber.Ctx, op func(actorID, itemID uuid.UUID) (*models.Item, error)) error {
	actorID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation", Message: "Invalid item ID",
		})
	}

	item, err := op(actorID, itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}
