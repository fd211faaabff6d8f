package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SwapKind string

const (
	SwapKindPoints SwapKind = "points"
	SwapKindTrade  SwapKind = "trade"
)

type SwapStatus string

const (
	SwapPending  SwapStatus = "pending"
	SwapApproved SwapStatus = "approved"
	SwapRejected SwapStatus = "rejected"
	// SwapCompleted is declared for wire compatibility with older
	// clients; nothing transitions into it.
	SwapCompleted SwapStatus = "completed"
)

// Terminal reports whether s permits no further transitions.
func (s SwapStatus) Terminal() bool { return s != SwapPending }

// Swap is a request to acquire Item, either by spending points
// (Kind == points) or by offering OfferedItem in exchange
// (Kind == trade). At most one pending swap may exist per
// (requester, item) pair.
type Swap struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester     User       `gorm:"foreignKey:RequesterID" json:"-"`
	ItemID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"item_id"`
	Item          Item       `gorm:"foreignKey:ItemID" json:"item"`
	OfferedItemID *uuid.UUID `gorm:"type:uuid;index" json:"offered_item_id"`
	OfferedItem   *Item      `gorm:"foreignKey:OfferedItemID" json:"offered_item,omitempty"`
	Kind          SwapKind   `gorm:"size:20;not null" json:"kind"`
	Status        SwapStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s *Swap) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
