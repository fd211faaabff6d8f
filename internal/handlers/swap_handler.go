package handlers

import (
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/auth"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SwapHandler struct {
	escrow *services.EscrowService
}

func NewSwapHandler(escrow *services.EscrowService) *SwapHandler {
	return &SwapHandler{escrow: escrow}
}

// Create handles POST /swaps. The presence of offered_item_id selects
// trade mode; absence selects points redemption.
func (h *SwapHandler) Create(c *fiber.Ctx) error {
	requesterID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	var req dto.CreateSwapRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}
	if req.ItemID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation", Message: "item_id is required",
		})
	}

	swap, err := h.escrow.Request(requesterID, req.ItemID, req.OfferedItemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(swap)
}

// ListMine returns swaps the caller initiated.
func (h *SwapHandler) ListMine(c *fiber.Ctx) error {
	requesterID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	swaps, err := h.escrow.ListMine(requesterID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(swaps)
}

// ListIncoming returns swaps requested against the caller's items.
func (h *SwapHandler) ListIncoming(c *fiber.Ctx) error {
	ownerID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	swaps, err := h.escrow.ListIncoming(ownerID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(swaps)
}

func (h *SwapHandler) Approve(c *fiber.Ctx) error {
	return h.resolve(c, h.escrow.Approve)
}

func (h *SwapHandler) Disapprove(c *fiber.Ctx) error {
	return h.resolve(c, h.escrow.Disapprove)
}

func (h *SwapHandler) resolve(c *fiber.Ctx, op func(ownerID, swapID uuid.UUID) (*models.Swap, error)) error {
	ownerID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	swapID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation", Message: "Invalid swap ID",
		})
	}

	swap, err := op(ownerID, swapID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(swap)
}
