package app

import (
	"strings"
	"time"

	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/pulse"
	"github.com/yungbote/sprint-backend/internal/utils"
)

type Config struct {
	ServiceName string
	Port        string

	// DBDriver is "postgres" or "sqlite".
	DBDriver string
	// LLMProvider is "gemini" or "openai".
	LLMProvider string

	AdminChatID           int64
	PulseSecret           string
	TelegramWebhookSecret string

	BatchSize        int
	BatchPause       time.Duration
	WeekendReduced   bool
	TaskDedupeWindow time.Duration
	TrialLength      time.Duration
	TemporalWorker   bool
	TemporalSchedule bool
	MigrateOnStart   bool
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		ServiceName: utils.GetEnv("SERVICE_NAME", "sprint", log),
		Port:        utils.GetEnv("PORT", "8080", log),

		DBDriver:    strings.ToLower(strings.TrimSpace(utils.GetEnv("DB_DRIVER", "postgres", log))),
		LLMProvider: strings.ToLower(strings.TrimSpace(utils.GetEnv("LLM_PROVIDER", "gemini", log))),

		AdminChatID:           utils.GetEnvAsInt64("ADMIN_CHAT_ID", 0, log),
		PulseSecret:           utils.GetEnv("PULSE_SECRET", "", log),
		TelegramWebhookSecret: utils.GetEnv("TELEGRAM_WEBHOOK_SECRET", "", log),

		BatchSize:        utils.GetEnvAsInt("PULSE_BATCH_SIZE", pulse.DefaultBatchSize, log),
		BatchPause:       utils.GetEnvAsDuration("PULSE_BATCH_PAUSE", pulse.DefaultBatchPause, log),
		WeekendReduced:   utils.GetEnvAsBool("PULSE_WEEKEND_REDUCED", false, log),
		TaskDedupeWindow: utils.GetEnvAsDuration("TASK_DEDUPE_WINDOW", 0, log),
		TrialLength:      utils.GetEnvAsDuration("TRIAL_LENGTH", 14*24*time.Hour, log),
		TemporalWorker:   utils.GetEnvAsBool("TEMPORAL_WORKER_ENABLED", true, log),
		TemporalSchedule: utils.GetEnvAsBool("TEMPORAL_PULSE_SCHEDULE_ENABLED", true, log),
		MigrateOnStart:   utils.GetEnvAsBool("DB_MIGRATE_ON_START", true, log),
	}
}
