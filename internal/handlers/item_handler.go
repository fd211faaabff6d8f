package handlers

import (
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/auth"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ItemHandler struct {
	catalog *services.CatalogService
}

func NewItemHandler(catalog *services.CatalogService) *ItemHandler {
	return &ItemHandler{catalog: catalog}
}

// List handles GET /items. Anonymous viewers get the public catalog;
// authenticated viewers also see their own listings.
func (h *ItemHandler) List(c *fiber.Ctx) error {
	viewerID, _ := auth.GetUserID(c) // uuid.Nil when anonymous

	filter := services.ListFilter{
		Mine:     c.QueryBool("mine"),
		Featured: c.QueryBool("featured"),
	}

	items, err := h.catalog.List(viewerID, auth.IsStaff(c), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) Featured(c *fiber.Ctx) error {
	items, err := h.catalog.Featured()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) Get(c *fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation", Message: "Invalid item ID",
		})
	}

	viewerID, _ := auth.GetUserID(c)
	item, err := h.catalog.Get(viewerID, auth.IsStaff(c), itemID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) Create(c *fiber.Ctx) error {
	uploaderID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	item, err := h.catalog.Create(uploaderID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *ItemHandler) Update(c *fiber.Ctx) error {
	editorID, err := auth.GetUserID(c)
	if err != nil {
		return respondUnauthorized(c)
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Code: "validation", Message: "Invalid item ID",
		})
	}

	var req dto.UpdateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadBody(c)
	}

	item, err := h.catalog.Update(editorID, itemID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) Delete(c *fiber.Ctx) error {
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

	if err := h.catalog.Delete(actorID, itemID); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
