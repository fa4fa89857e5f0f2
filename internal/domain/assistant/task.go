package assistant

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PriorityUrgent    = "urgent"
	PriorityImportant = "important"
	PriorityChore     = "chore"
)

const (
	TaskStatusTodo      = "todo"
	TaskStatusDone      = "done"
	TaskStatusCancelled = "cancelled"
)

const TaskSourceBriefing = "briefing"

type Task struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Title    string    `gorm:"column:title;type:text;not null" json:"title"`
	Priority string    `gorm:"column:priority;not null;default:'chore';index" json:"priority"`
	Status   string    `gorm:"column:status;not null;default:'todo';index" json:"status"`
	Source   string    `gorm:"column:source;not null;default:''" json:"source,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Task) TableName() string { return "task" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	t.Priority = NormalizePriority(t.Priority)
	return nil
}

// NormalizePriority maps free-form model output onto the three priorities; anything
// unrecognised becomes a chore.
func NormalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PriorityUrgent:
		return PriorityUrgent
	case PriorityImportant:
		return PriorityImportant
	default:
		return PriorityChore
	}
}
