package services

import (
	"errors"
	"fmt"

	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/apperr"
	"github.com/KatariyaVyomesh/Rewear-Sustainable-Fashion-Exchange/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit reasons recorded on point entries.
const (
	ReasonSignupBonus  = "signup_bonus"
	ReasonSwapHold     = "swap_hold"
	ReasonHoldRelease  = "hold_release"
	ReasonRedeemPayout = "redeem_payout"
	ReasonTradeReward  = "trade_reward"
)

// LedgerService owns point balances. Every mutation is a guarded
// single-statement update plus an audit entry, and reservation
// operations are idempotent per swap: replaying a reserve, commit or
// release for an already-resolved hold is a no-op.
//
// The mutating methods take the caller's transaction handle so the
// escrow can resolve a swap and its point hold atomically.
type LedgerService struct {
	db *gorm.DB
}

func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

func (s *LedgerService) Balance(userID uuid.UUID) (int, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperr.NotFound("user")
		}
		return 0, fmt.Errorf("failed to load user: %w", err)
	}
	return user.Points, nil
}

func (s *LedgerService) History(userID uuid.UUID) ([]models.PointEntry, error) {
	var entries []models.PointEntry
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load point entries: %w", err)
	}
	return entries, nil
}

// Reserve atomically checks balance >= amount, decrements, and records
// a hold for swapID. The decrement is immediate but reversible until
// Commit finalizes it.
func (s *LedgerService) Reserve(tx *gorm.DB, userID, swapID uuid.UUID, amount int) error {
	if amount < 0 {
		return apperr.Validation("reservation amount cannot be negative")
	}

	var existing models.PointHold
	err := tx.Where("swap_id = ?", swapID).First(&existing).Error
	if err == nil {
		return nil // replayed reserve for an existing hold
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check hold: %w", err)
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND points >= ?", userID, amount).
		UpdateColumn("points", gorm.Expr("points - ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve points: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return apperr.NotFound("user")
		}
		return apperr.InsufficientFunds(amount, user.Points)
	}

	hold := models.PointHold{
		UserID: userID,
		SwapID: swapID,
		Amount: amount,
		Status: models.HoldHeld,
	}
	if err := tx.Create(&hold).Error; err != nil {
		return fmt.Errorf("failed to create hold: %w", err)
	}

	return s.appendEntry(tx, userID, -amount, ReasonSwapHold, &swapID)
}

// Release reverses a prior reservation, crediting the amount back.
// No-op when the hold is already committed or released, or absent.
func (s *LedgerService) Release(tx *gorm.DB, userID, swapID uuid.UUID) error {
	var hold models.PointHold
	err := tx.Where("swap_id = ?", swapID).First(&hold).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load hold: %w", err)
	}

	res := tx.Model(&models.PointHold{}).
		Where("id = ? AND status = ?", hold.ID, models.HoldHeld).
		Update("status", models.HoldReleased)
	if res.Error != nil {
		return fmt.Errorf("failed to release hold: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil // already resolved
	}

	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", hold.Amount)).Error; err != nil {
		return fmt.Errorf("failed to refund points: %w", err)
	}

	return s.appendEntry(tx, userID, hold.Amount, ReasonHoldRelease, &swapID)
}

// Commit finalizes a hold. The decrement already happened at Reserve;
// this only pins the terminal state so the hold can no longer be
// released. No-op on replay.
func (s *LedgerService) Commit(tx *gorm.DB, userID, swapID uuid.UUID) error {
	res := tx.Model(&models.PointHold{}).
		Where("swap_id = ? AND user_id = ? AND status = ?", swapID, userID, models.HoldHeld).
		Update("status", models.HoldCommitted)
	if res.Error != nil {
		return fmt.Errorf("failed to commit hold: %w", res.Error)
	}
	return nil
}

// Credit adds points unconditionally, with an audit entry.
func (s *LedgerService) Credit(tx *gorm.DB, userID uuid.UUID, amount int, reason string, swapID *uuid.UUID) error {
	if amount <= 0 {
		return apperr.Validation("credit amount must be positive")
	}
	if err := tx.Model(&models.User{}).
		Where("id = ?", userID).
		UpdateColumn("points", gorm.Expr("points + ?", amount)).Error; err != nil {
		return fmt.Errorf("failed to credit points: %w", err)
	}
	return s.appendEntry(tx, userID, amount, reason, swapID)
}

func (s *LedgerService) appendEntry(tx *gorm.DB, userID uuid.UUID, delta int, reason string, swapID *uuid.UUID) error {
	var user models.User
	if err := tx.First(&user, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("failed to load balance for audit entry: %w", err)
	}
	entry := models.PointEntry{
		UserID:       userID,
		Delta:        delta,
		BalanceAfter: user.Points,
		Reason:       reason,
		SwapID:       swapID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create point entry: %w", err)
	}
	return nil
}
