package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sprint-backend/internal/data/db"
	repos "github.com/yungbote/sprint-backend/internal/data/repos"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
)

// OpenDB connects to the configured store. Migration is left to the caller.
func OpenDB(log *logger.Logger, driver string) (*gorm.DB, error) {
	switch driver {
	case "", "postgres":
		pg, err := db.NewPostgresService(log)
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		return pg.DB(), nil
	case "sqlite":
		lite, err := db.NewSQLiteService(log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		return lite.DB(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}
}

// Migrate creates tables, plus partial indexes on postgres.
func Migrate(theDB *gorm.DB, driver string) error {
	if err := db.AutoMigrateAll(theDB); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if driver == "" || driver == "postgres" {
		if err := db.EnsurePostgresIndexes(theDB); err != nil {
			return fmt.Errorf("postgres indexes: %w", err)
		}
	}
	return nil
}

func wireRepos(theDB *gorm.DB, log *logger.Logger) repos.Set {
	log.Info("Wiring repos...")
	return repos.NewSet(theDB, log)
}
