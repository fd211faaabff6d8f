package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HoldStatus string

const (
	HoldHeld      HoldStatus = "held"
	HoldCommitted HoldStatus = "committed"
	HoldReleased  HoldStatus = "released"
)

// PointHold records a reservation of points against a swap. The unique
// index on SwapID is what makes reserve/commit/release replays no-ops.
type PointHold struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SwapID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"swap_id"`
	Amount    int        `gorm:"not null" json:"amount"`
	Status    HoldStatus `gorm:"size:20;not null;default:'held'" json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (h *PointHold) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// PointEntry is the append-only audit trail: one row per balance
// mutation, with the balance observed after the change.
type PointEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Delta        int        `gorm:"not null" json:"delta"`
	BalanceAfter int        `gorm:"not null" json:"balance_after"`
	Reason       string     `gorm:"size:50;not null" json:"reason"`
	SwapID       *uuid.UUID `gorm:"type:uuid;index" json:"swap_id"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (e *PointEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
