package domain

import "github.com/yungbote/sprint-backend/internal/domain/assistant"

type UserConfig = assistant.UserConfig
type Task = assistant.Task
type Person = assistant.Person
type RawDump = assistant.RawDump
type LogEntry = assistant.LogEntry
type BriefingRun = assistant.BriefingRun
