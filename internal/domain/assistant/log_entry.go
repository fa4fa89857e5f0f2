package assistant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const LogEntryTypeIdeas = "IDEAS"

// LogEntry is an append-only categorised record; the vault view reads the IDEAS category.
type LogEntry struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    int64          `gorm:"column:user_id;not null;index" json:"user_id"`
	EntryType string         `gorm:"column:entry_type;not null;index" json:"entry_type"`
	Content   string         `gorm:"column:content;type:text;not null" json:"content"`
	Metadata  datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (LogEntry) TableName() string { return "log_entry" }

func (l *LogEntry) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if len(l.Metadata) == 0 {
		l.Metadata = datatypes.JSON([]byte("{}"))
	}
	return nil
}
