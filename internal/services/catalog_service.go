package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/apperr"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/dto"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const featuredLimit = 10

// ListFilter narrows a catalog listing.
type ListFilter struct {
	Mine     bool
	Featured bool
}

// CatalogService owns item records. Availability is mutated only
// through the escrow and moderation services; the catalog exposes the
// user-facing CRUD surface and visibility rules.
type CatalogService struct {
	db     *gorm.DB
	filter *ContentFilter
}

func NewCatalogService(db *gorm.DB, filter *ContentFilter) *CatalogService {
	return &CatalogService{db: db, filter: filter}
}

// List returns items the viewer may see: approved and available to
// everyone, plus the viewer's own items in any state. Staff see
// everything. viewerID uuid.Nil means an anonymous viewer.
func (s *CatalogService) List(viewerID uuid.UUID, staff bool, filter ListFilter) ([]models.Item, error) {
	query := s.db.Order("created_at DESC")

	switch {
	case filter.Mine:
		if viewerID == uuid.Nil {
			return nil, apperr.Authorization("sign in to list your items")
		}
		query = query.Where("uploader_id = ?", viewerID)
	case staff:
		// no visibility restriction
	case viewerID != uuid.Nil:
		query = query.Where(
			"(available = ? AND moderation_status = ?) OR uploader_id = ?",
			true, models.ModerationApproved, viewerID)
	default:
		query = query.Where("available = ? AND moderation_status = ?",
			true, models.ModerationApproved)
	}

	if filter.Featured {
		query = query.Where("featured = ?", true).Limit(featuredLimit)
	}

	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

// Featured returns up to ten approved, available, featured items.
func (s *CatalogService) Featured() ([]models.Item, error) {
	var items []models.Item
	err := s.db.Where("featured = ? AND available = ? AND moderation_status = ?",
		true, true, models.ModerationApproved).
		Order("created_at DESC").
		Limit(featuredLimit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list featured items: %w", err)
	}
	return items, nil
}

// Get applies the same visibility rules as List.
func (s *CatalogService) Get(viewerID uuid.UUID, staff bool, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := s.db.First(&item, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item")
		}
		return nil, fmt.Errorf("failed to load item: %w", err)
	}

	visible := staff ||
		item.UploaderID == viewerID ||
		(item.Available && item.ModerationStatus == models.ModerationApproved)
	if !visible {
		return nil, apperr.NotFound("item")
	}
	return &item, nil
}

// Create lists a new item. Moderation status is forced to pending and
// the item starts available.
func (s *CatalogService) Create(uploaderID uuid.UUID, req *dto.CreateItemRequest) (*models.Item, error) {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)

	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if description == "" {
		return nil, apperr.Validation("description is required")
	}
	if req.PointValue != nil && *req.PointValue < 0 {
		return nil, apperr.Validation("point value cannot be negative")
	}
	if err := s.screen(title + " " + description); err != nil {
		return nil, err
	}

	item := models.Item{
		UploaderID:       uploaderID,
		Title:            title,
		Description:      description,
		ImageURL:         req.ImageURL,
		PointValue:       req.PointValue,
		Available:        true,
		ModerationStatus: models.ModerationPending,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}
	return &item, nil
}

// Update edits an item. Only the uploader may edit, and the uploader
// itself is immutable. Edits to the listing text or image send the
// item back to the moderation queue; availability and point-value
// changes alone do not. Restoring availability is refused while a
// pending swap holds the item, since the hold is what keeps the item
// promised to at most one acquirer.
func (s *CatalogService) Update(editorID, itemID uuid.UUID, req *dto.UpdateItemRequest) (*models.Item, error) {
	var item models.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("item")
			}
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item.UploaderID != editorID {
			return apperr.Authorization("only the uploader can edit this item")
		}

		contentChanged := false
		if req.Title != nil {
			title := strings.TrimSpace(*req.Title)
			if title == "" {
				return apperr.Validation("title is required")
			}
			if title != item.Title {
				item.Title = title
				contentChanged = true
			}
		}
		if req.Description != nil {
			description := strings.TrimSpace(*req.Description)
			if description == "" {
				return apperr.Validation("description is required")
			}
			if description != item.Description {
				item.Description = description
				contentChanged = true
			}
		}
		if req.ImageURL != nil && *req.ImageURL != item.ImageURL {
			item.ImageURL = *req.ImageURL
			contentChanged = true
		}
		if req.PointValue != nil {
			if *req.PointValue < 0 {
				return apperr.Validation("point value cannot be negative")
			}
			item.PointValue = req.PointValue
		}
		if req.Available != nil {
			if *req.Available && !item.Available {
				// Take the row lock before counting so a concurrent
				// request serializes against this restore.
				if err := tx.Model(&models.Item{}).
					Where("id = ?", itemID).
					Update("updated_at", time.Now()).Error; err != nil {
					return fmt.Errorf("failed to lock item: %w", err)
				}
				var pending int64
				if err := tx.Model(&models.Swap{}).
					Where("(item_id = ? OR offered_item_id = ?) AND status = ?",
						itemID, itemID, models.SwapPending).
					Count(&pending).Error; err != nil {
					return fmt.Errorf("failed to check pending swaps: %w", err)
				}
				if pending > 0 {
					return apperr.Conflict("item is held by a pending swap")
				}
			}
			item.Available = *req.Available
		}

		if contentChanged {
			if err := s.screen(item.Title + " " + item.Description); err != nil {
				return err
			}
			item.ModerationStatus = models.ModerationPending
		}

		if err := tx.Save(&item).Error; err != nil {
			return fmt.Errorf("failed to update item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes the actor's own item. Refused while any pending swap
// references it as target or offer; those must be resolved first.
func (s *CatalogService) Delete(actorID, itemID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("item")
			}
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item.UploaderID != actorID {
			return apperr.Authorization("only the uploader can delete this item")
		}

		var count int64
		if err := tx.Model(&models.Swap{}).
			Where("(item_id = ? OR offered_item_id = ?) AND status = ?",
				itemID, itemID, models.SwapPending).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check pending swaps: %w", err)
		}
		if count > 0 {
			return apperr.Conflict("item has pending swap requests")
		}

		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
}

func (s *CatalogService) screen(text string) error {
	ok, reason := s.filter.Check(text)
	if !ok {
		return apperr.Validation("%s", s.filter.RejectionMessage(reason))
	}
	return nil
}
