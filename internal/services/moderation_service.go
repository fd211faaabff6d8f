package services

import (
	"errors"
	"fmt"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/apperr"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModerationService governs which items are visible to non-owners.
// Every listing enters the queue as pending; staff approve or reject
// it. Both outcomes are terminal for the current listing text. An edit
// to the text puts the item back in the queue.
type ModerationService struct {
	db     *gorm.DB
	escrow *EscrowService
}

func NewModerationService(db *gorm.DB, escrow *EscrowService) *ModerationService {
	return &ModerationService{db: db, escrow: escrow}
}

// Queue lists items for review, optionally filtered by status.
func (s *ModerationService) Queue(actorID uuid.UUID, status models.ModerationStatus) ([]models.Item, error) {
	if err := s.requireStaff(s.db, actorID); err != nil {
		return nil, err
	}
	query := s.db.Preload("Uploader").Order("created_at DESC")
	if status != "" {
		query = query.Where("moderation_status = ?", status)
	}
	var items []models.Item
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list moderation queue: %w", err)
	}
	return items, nil
}

// Approve makes a pending item visible to non-owners. A no-op when the
// item is already approved; a Conflict from rejected.
func (s *ModerationService) Approve(actorID, itemID uuid.UUID) (*models.Item, error) {
	return s.transition(actorID, itemID, models.ModerationApproved)
}

// Reject hides a pending item. Pending swaps referencing it (possible
// when an edit sent an already-traded-for listing back to the queue)
// are cascade-rejected and their holds released.
func (s *ModerationService) Reject(actorID, itemID uuid.UUID) (*models.Item, error) {
	return s.transition(actorID, itemID, models.ModerationRejected)
}

func (s *ModerationService) transition(actorID, itemID uuid.UUID, target models.ModerationStatus) (*models.Item, error) {
	var item models.Item
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireStaff(tx, actorID); err != nil {
			return err
		}
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("item")
			}
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item.ModerationStatus == target {
			return nil // idempotent
		}
		if item.ModerationStatus != models.ModerationPending {
			return apperr.Conflict("item is already %s", item.ModerationStatus)
		}

		if target == models.ModerationRejected {
			if err := s.escrow.CascadeReject(tx, itemID); err != nil {
				return err
			}
		}

		if err := tx.Model(&item).Update("moderation_status", target).Error; err != nil {
			return fmt.Errorf("failed to update moderation status: %w", err)
		}
		item.ModerationStatus = target
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Delete removes an item regardless of ownership. Pending swaps
// referencing it are cascade-rejected first so no hold is orphaned.
func (s *ModerationService) Delete(actorID, itemID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.requireStaff(tx, actorID); err != nil {
			return err
		}
		var item models.Item
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("item")
			}
			return fmt.Errorf("failed to load item: %w", err)
		}

		if err := s.escrow.CascadeReject(tx, itemID); err != nil {
			return err
		}

		if err := tx.Delete(&item).Error; err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return nil
	})
}

func (s *ModerationService) requireStaff(tx *gorm.DB, actorID uuid.UUID) error {
	var actor models.User
	if err := tx.First(&actor, "id = ?", actorID).Error; err != nil {
		return apperr.Authorization("unknown principal")
	}
	if !actor.IsStaff {
		return apperr.Authorization("staff access required")
	}
	return nil
}
