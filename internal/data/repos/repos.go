package repos

import (
	"github.com/yungbote/sprint-backend/internal/data/repos/assistant"
	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type UserConfigRepo = assistant.UserConfigRepo
type TaskRepo = assistant.TaskRepo
type PersonRepo = assistant.PersonRepo
type RawDumpRepo = assistant.RawDumpRepo
type LogEntryRepo = assistant.LogEntryRepo
type BriefingRunRepo = assistant.BriefingRunRepo

func NewUserConfigRepo(db *gorm.DB, baseLog *logger.Logger) UserConfigRepo {
	return assistant.NewUserConfigRepo(db, baseLog)
}
func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return assistant.NewTaskRepo(db, baseLog)
}
func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return assistant.NewPersonRepo(db, baseLog)
}
func NewRawDumpRepo(db *gorm.DB, baseLog *logger.Logger) RawDumpRepo {
	return assistant.NewRawDumpRepo(db, baseLog)
}
func NewLogEntryRepo(db *gorm.DB, baseLog *logger.Logger) LogEntryRepo {
	return assistant.NewLogEntryRepo(db, baseLog)
}
func NewBriefingRunRepo(db *gorm.DB, baseLog *logger.Logger) BriefingRunRepo {
	return assistant.NewBriefingRunRepo(db, baseLog)
}

// Set bundles every repo so services can take one argument.
type Set struct {
	Config      UserConfigRepo
	Tasks       TaskRepo
	People      PersonRepo
	RawDumps    RawDumpRepo
	Logs        LogEntryRepo
	BriefingRun BriefingRunRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Config:      NewUserConfigRepo(db, baseLog),
		Tasks:       NewTaskRepo(db, baseLog),
		People:      NewPersonRepo(db, baseLog),
		RawDumps:    NewRawDumpRepo(db, baseLog),
		Logs:        NewLogEntryRepo(db, baseLog),
		BriefingRun: NewBriefingRunRepo(db, baseLog),
	}
}
