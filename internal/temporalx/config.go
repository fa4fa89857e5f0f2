package temporalx

import (
	"strings"
	"time"

	"github.com/yungbote/sprint-backend/internal/pkg/logger"
	"github.com/yungbote/sprint-backend/internal/utils"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string

	ClientCertPath string
	ClientKeyPath  string
	ClientCAPath   string

	AutoRegisterNamespace bool
	RetentionDays         int

	DialTimeout time.Duration
	DialMaxWait time.Duration
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// ScheduleID names the hourly pulse schedule. Empty disables it.
	ScheduleID    string
	PulseInterval time.Duration
}

// Enabled reports whether a Temporal frontend is configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Address) != "" }

func (c Config) TLSEnabled() bool {
	return c.ClientCertPath != "" || c.ClientKeyPath != "" || c.ClientCAPath != ""
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		Address:   utils.GetEnv("TEMPORAL_ADDRESS", "", log),
		Namespace: utils.GetEnv("TEMPORAL_NAMESPACE", "sprint", log),
		TaskQueue: utils.GetEnv("TEMPORAL_TASK_QUEUE", "sprint-pulse", log),

		ClientCertPath: utils.GetEnv("TEMPORAL_CLIENT_CERT_PATH", "", log),
		ClientKeyPath:  utils.GetEnv("TEMPORAL_CLIENT_KEY_PATH", "", log),
		ClientCAPath:   utils.GetEnv("TEMPORAL_CLIENT_CA_PATH", "", log),

		AutoRegisterNamespace: utils.GetEnvAsBool("TEMPORAL_AUTO_REGISTER_NAMESPACE", false, log),
		RetentionDays:         clampInt(utils.GetEnvAsInt("TEMPORAL_NAMESPACE_RETENTION_DAYS", 7, log), 1, 365),

		DialTimeout: utils.GetEnvAsDuration("TEMPORAL_DIAL_TIMEOUT", 5*time.Second, log),
		DialMaxWait: utils.GetEnvAsDuration("TEMPORAL_DIAL_MAX_WAIT", time.Minute, log),
		BackoffBase: utils.GetEnvAsDuration("TEMPORAL_DIAL_BACKOFF", 250*time.Millisecond, log),
		BackoffMax:  utils.GetEnvAsDuration("TEMPORAL_DIAL_BACKOFF_MAX", 5*time.Second, log),

		ScheduleID:    utils.GetEnv("TEMPORAL_PULSE_SCHEDULE_ID", "sprint-hourly-pulse", log),
		PulseInterval: utils.GetEnvAsDuration("TEMPORAL_PULSE_INTERVAL", time.Hour, log),
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Backoff doubles base per attempt, capped at max.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	sleep := base
	for i := 1; i < attempt; i++ {
		sleep *= 2
		if max > 0 && sleep >= max {
			return max
		}
	}
	if max > 0 && sleep > max {
		return max
	}
	return sleep
}
