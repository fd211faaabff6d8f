package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Item is a listed garment. PointValue nil means the item can only be
// acquired by trading, never by spending points.
type Item struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UploaderID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"uploader_id"`
	Uploader         User             `gorm:"foreignKey:UploaderID" json:"-"`
	Title            string           `gorm:"size:200;not null" json:"title"`
	Description      string           `gorm:"type:text;not null" json:"description"`
	ImageURL         string           `gorm:"type:text" json:"image_url"`
	PointValue       *int             `json:"point_value"`
	Featured         bool             `gorm:"not null;default:false" json:"featured"`
	Available        bool             `gorm:"not null;default:true;index" json:"available"`
	ModerationStatus ModerationStatus `gorm:"size:20;not null;default:'pending';index" json:"moderation_status"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	// Soft delete keeps resolved swaps pointing at a real row.
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
