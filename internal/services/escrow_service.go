package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/apperr"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// EscrowService coordinates swap requests across the catalog and the
// ledger. Every operation runs in a single database transaction, and
// every hold (points or offered-item availability) is taken or resolved
// by a guarded conditional update, so two concurrent requests racing
// for the same resource serialize at the row and the loser surfaces a
// Conflict instead of double-allocating.
type EscrowService struct {
	db          *gorm.DB
	ledger      *LedgerService
	tradeReward int
	lockTimeout time.Duration
}

func NewEscrowService(db *gorm.DB, ledger *LedgerService, tradeReward int, lockTimeout time.Duration) *EscrowService {
	return &EscrowService{db: db, ledger: ledger, tradeReward: tradeReward, lockTimeout: lockTimeout}
}

// transact runs fn in a transaction with a bounded row-lock wait, so a
// blocked lock surfaces as a retryable Conflict instead of hanging the
// request. The swap id makes the retry safe.
func (s *EscrowService) transact(fn func(tx *gorm.DB) error) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if s.lockTimeout > 0 && tx.Dialector.Name() == "postgres" {
			stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", s.lockTimeout.Milliseconds())
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to set lock timeout: %w", err)
			}
		}
		return fn(tx)
	})
	if isLockTimeout(err) {
		return apperr.Wrap(apperr.KindConflict, err, "timed out waiting for a contended row, retry the request")
	}
	return err
}

// isLockTimeout matches Postgres lock_not_available (55P03).
func isLockTimeout(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03"
}

// Request opens a swap in pending state. offeredItemID nil means a
// points redemption; present means a trade offer. Holds are taken at
// request time: points are debited immediately, an offered item is
// flagged unavailable. A failure anywhere rolls the whole thing back.
func (s *EscrowService) Request(requesterID, itemID uuid.UUID, offeredItemID *uuid.UUID) (*models.Swap, error) {
	var swapID uuid.UUID
	err := s.transact(func(tx *gorm.DB) error {
		var item models.Item
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("item")
			}
			return fmt.Errorf("failed to load item: %w", err)
		}
		if item.UploaderID == requesterID {
			return apperr.Conflict("you cannot request your own item")
		}

		kind := models.SwapKindPoints
		if offeredItemID != nil {
			kind = models.SwapKindTrade
			if *offeredItemID == itemID {
				return apperr.Validation("you cannot offer the item you are requesting")
			}
			var offered models.Item
			if err := tx.First(&offered, "id = ?", *offeredItemID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.NotFound("offered item")
				}
				return fmt.Errorf("failed to load offered item: %w", err)
			}
			if offered.UploaderID != requesterID {
				return apperr.Validation("offered item does not belong to you")
			}
		} else if item.PointValue == nil {
			return apperr.Validation("this item cannot be redeemed with points, it is swap-only")
		}

		// Touch the rows in ascending id order so two concurrent
		// trades targeting each other's items cannot deadlock.
		for _, id := range lockOrder(itemID, offeredItemID) {
			if id == itemID {
				if err := lockTarget(tx, itemID); err != nil {
					return err
				}
			} else if err := holdOffered(tx, id); err != nil {
				return err
			}
		}

		// Uniqueness: one pending swap per (requester, item),
		// checked while holding the target row.
		var count int64
		if err := tx.Model(&models.Swap{}).
			Where("requester_id = ? AND item_id = ? AND status = ?",
				requesterID, itemID, models.SwapPending).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check pending swaps: %w", err)
		}
		if count > 0 {
			return apperr.Conflict("you already have a pending request for this item")
		}

		swap := models.Swap{
			ID:            uuid.New(),
			RequesterID:   requesterID,
			ItemID:        itemID,
			OfferedItemID: offeredItemID,
			Kind:          kind,
			Status:        models.SwapPending,
		}

		if kind == models.SwapKindPoints {
			if err := s.ledger.Reserve(tx, requesterID, swap.ID, *item.PointValue); err != nil {
				return err
			}
		}

		if err := tx.Create(&swap).Error; err != nil {
			return fmt.Errorf("failed to create swap: %w", err)
		}
		swapID = swap.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(swapID)
}

// Approve resolves a pending swap in the requester's favor. The target
// item is retired, a points hold is committed (trade offers were
// already retired at request time), and the uploader is rewarded.
func (s *EscrowService) Approve(ownerID, swapID uuid.UUID) (*models.Swap, error) {
	err := s.transact(func(tx *gorm.DB) error {
		swap, err := s.loadForResolve(tx, ownerID, swapID)
		if err != nil {
			return err
		}

		now := time.Now()
		res := tx.Model(&models.Swap{}).
			Where("id = ? AND status = ?", swapID, models.SwapPending).
			Updates(map[string]interface{}{"status": models.SwapApproved, "resolved_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to approve swap: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("swap is no longer pending")
		}

		// The target must still be acquirable; if a competing swap
		// for the same item won first, this is where the race loses.
		res = tx.Model(&models.Item{}).
			Where("id = ? AND available = ?", swap.ItemID, true).
			Update("available", false)
		if res.Error != nil {
			return fmt.Errorf("failed to retire item: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("item is no longer available")
		}

		switch swap.Kind {
		case models.SwapKindPoints:
			var hold models.PointHold
			if err := tx.Where("swap_id = ?", swapID).First(&hold).Error; err != nil {
				return fmt.Errorf("missing point hold for swap %s: %w", swapID, err)
			}
			if err := s.ledger.Commit(tx, swap.RequesterID, swapID); err != nil {
				return err
			}
			// Zero-value listings move for free; nothing to pay out.
			if hold.Amount == 0 {
				return nil
			}
			return s.ledger.Credit(tx, swap.Item.UploaderID, hold.Amount, ReasonRedeemPayout, &swap.ID)
		case models.SwapKindTrade:
			// The offered item stays retired with its original
			// uploader; physical hand-off happens outside the ledger.
			if s.tradeReward == 0 {
				return nil
			}
			return s.ledger.Credit(tx, swap.Item.UploaderID, s.tradeReward, ReasonTradeReward, &swap.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(swapID)
}

// Disapprove resolves a pending swap against the requester, releasing
// whatever was held at request time.
func (s *EscrowService) Disapprove(ownerID, swapID uuid.UUID) (*models.Swap, error) {
	err := s.transact(func(tx *gorm.DB) error {
		swap, err := s.loadForResolve(tx, ownerID, swapID)
		if err != nil {
			return err
		}
		return s.rejectPending(tx, swap, uuid.Nil)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(swapID)
}

// CascadeReject rejects every pending swap referencing itemID as
// target or offer, releasing the associated holds. Used by the
// moderation gate before rejecting or deleting an item; the item
// itself is never re-marked available since it is on its way out.
func (s *EscrowService) CascadeReject(tx *gorm.DB, itemID uuid.UUID) error {
	var swaps []models.Swap
	if err := tx.Where("(item_id = ? OR offered_item_id = ?) AND status = ?",
		itemID, itemID, models.SwapPending).Find(&swaps).Error; err != nil {
		return fmt.Errorf("failed to list pending swaps: %w", err)
	}
	for i := range swaps {
		if err := s.rejectPending(tx, &swaps[i], itemID); err != nil {
			return err
		}
	}
	return nil
}

// rejectPending flips a swap to rejected and releases its hold.
// doomedItem, when non-nil, is an item about to be removed whose
// availability must not be restored.
func (s *EscrowService) rejectPending(tx *gorm.DB, swap *models.Swap, doomedItem uuid.UUID) error {
	now := time.Now()
	res := tx.Model(&models.Swap{}).
		Where("id = ? AND status = ?", swap.ID, models.SwapPending).
		Updates(map[string]interface{}{"status": models.SwapRejected, "resolved_at": now})
	if res.Error != nil {
		return fmt.Errorf("failed to reject swap: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("swap is no longer pending")
	}

	switch swap.Kind {
	case models.SwapKindPoints:
		return s.ledger.Release(tx, swap.RequesterID, swap.ID)
	case models.SwapKindTrade:
		if swap.OfferedItemID == nil || *swap.OfferedItemID == doomedItem {
			return nil
		}
		if err := tx.Model(&models.Item{}).
			Where("id = ?", *swap.OfferedItemID).
			Update("available", true).Error; err != nil {
			return fmt.Errorf("failed to restore offered item: %w", err)
		}
	}
	return nil
}

func (s *EscrowService) loadForResolve(tx *gorm.DB, ownerID, swapID uuid.UUID) (*models.Swap, error) {
	var swap models.Swap
	if err := tx.Preload("Item").First(&swap, "id = ?", swapID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("swap")
		}
		return nil, fmt.Errorf("failed to load swap: %w", err)
	}
	if swap.Item.UploaderID != ownerID {
		return nil, apperr.Authorization("only the item owner can resolve this swap")
	}
	if swap.Status != models.SwapPending {
		return nil, apperr.Conflict("swap is already %s", swap.Status)
	}
	return &swap, nil
}

func (s *EscrowService) Get(swapID uuid.UUID) (*models.Swap, error) {
	var swap models.Swap
	err := s.db.Preload("Item").Preload("OfferedItem").First(&swap, "id = ?", swapID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("swap")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load swap: %w", err)
	}
	return &swap, nil
}

// ListMine returns swaps initiated by the user, newest first.
func (s *EscrowService) ListMine(requesterID uuid.UUID) ([]models.Swap, error) {
	var swaps []models.Swap
	err := s.db.Preload("Item").Preload("OfferedItem").
		Where("requester_id = ?", requesterID).
		Order("created_at DESC").
		Find(&swaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list swaps: %w", err)
	}
	return swaps, nil
}

// ListIncoming returns swaps requested against the user's own items.
func (s *EscrowService) ListIncoming(ownerID uuid.UUID) ([]models.Swap, error) {
	var swaps []models.Swap
	err := s.db.Preload("Item").Preload("OfferedItem").
		Joins("JOIN items ON items.id = swaps.item_id").
		Where("items.uploader_id = ?", ownerID).
		Order("swaps.created_at DESC").
		Find(&swaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming swaps: %w", err)
	}
	return swaps, nil
}

// lockTarget takes the target item's row lock while verifying it is
// still acquirable. The touch write is what serializes competing
// requests for the same item.
func lockTarget(tx *gorm.DB, itemID uuid.UUID) error {
	res := tx.Model(&models.Item{}).
		Where("id = ? AND available = ? AND moderation_status = ?",
			itemID, true, models.ModerationApproved).
		Update("updated_at", time.Now())
	if res.Error != nil {
		return fmt.Errorf("failed to lock item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("item is not available")
	}
	return nil
}

// holdOffered retires the offered item for the lifetime of the swap.
func holdOffered(tx *gorm.DB, itemID uuid.UUID) error {
	res := tx.Model(&models.Item{}).
		Where("id = ? AND available = ?", itemID, true).
		Update("available", false)
	if res.Error != nil {
		return fmt.Errorf("failed to hold offered item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("offered item is not available")
	}
	return nil
}

func lockOrder(itemID uuid.UUID, offeredItemID *uuid.UUID) []uuid.UUID {
	if offeredItemID == nil {
		return []uuid.UUID{itemID}
	}
	if itemID.String() < offeredItemID.String() {
		return []uuid.UUID{itemID, *offeredItemID}
	}
	return []uuid.UUID{*offeredItemID, itemID}
}
