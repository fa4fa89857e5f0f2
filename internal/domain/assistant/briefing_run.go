package assistant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	BriefingStatusSent          = "sent"
	BriefingStatusUndeliverable = "undeliverable"
	BriefingStatusMalformed     = "malformed"
	BriefingStatusFailed        = "failed"
	// BriefingStatusSilent is a valid response with an empty briefing text.
	BriefingStatusSilent = "silent"
)

// BriefingRun records what one pulse produced for one user.
type BriefingRun struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         int64          `gorm:"column:user_id;not null;index" json:"user_id"`
	Manual         bool           `gorm:"column:manual;not null;default:false" json:"manual"`
	Status         string         `gorm:"column:status;not null;index" json:"status"`
	NewTasks       int            `gorm:"column:new_tasks;not null;default:0" json:"new_tasks"`
	CompletedTasks int            `gorm:"column:completed_tasks;not null;default:0" json:"completed_tasks"`
	RawOutput      datatypes.JSON `gorm:"column:raw_output" json:"raw_output,omitempty"`
	Error          string         `gorm:"column:error;type:text;not null;default:''" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (BriefingRun) TableName() string { return "briefing_run" }

func (r *BriefingRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if len(r.RawOutput) == 0 {
		r.RawOutput = datatypes.JSON([]byte("{}"))
	}
	return nil
}
