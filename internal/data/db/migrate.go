package db

import (
	"fmt"

	types "github.com/yungbote/sprint-backend/internal/domain"
	"gorm.io/gorm"
)

// Service is the store handle shared by the HTTP surface and the pulse engine.
type Service interface {
	DB() *gorm.DB
	AutoMigrateAll() error
}

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Configuration (onboarding state lives here)
		// =========================
		&types.UserConfig{},

		// =========================
		// Working set
		// =========================
		&types.Task{},
		&types.Person{},
		&types.RawDump{},
		&types.LogEntry{},

		// =========================
		// Pulse audit
		// =========================
		&types.BriefingRun{},
	)
}

func EnsurePostgresIndexes(db *gorm.DB) error {
	// Open-task lookups run on every pulse and every dashboard view.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_task_user_open
		ON task (user_id, created_at)
		WHERE status NOT IN ('done', 'cancelled');
	`).Error; err != nil {
		return fmt.Errorf("create idx_task_user_open: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_raw_dump_user_pending
		ON raw_dump (user_id, created_at)
		WHERE is_processed = false;
	`).Error; err != nil {
		return fmt.Errorf("create idx_raw_dump_user_pending: %w", err)
	}
	return nil
}
