package assistant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RawDump is free text captured outside onboarding, waiting for the next briefing.
type RawDump struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      int64     `gorm:"column:user_id;not null;index:idx_raw_dump_user_processed,priority:1" json:"user_id"`
	Content     string    `gorm:"column:content;type:text;not null" json:"content"`
	IsProcessed bool      `gorm:"column:is_processed;not null;default:false;index:idx_raw_dump_user_processed,priority:2" json:"is_processed"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (RawDump) TableName() string { return "raw_dump" }

func (d *RawDump) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
