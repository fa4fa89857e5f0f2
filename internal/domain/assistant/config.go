package assistant

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Configuration keys. The order of the setup keys is the onboarding order.
const (
	KeyUserName           = "user_name"
	KeyIdentity           = "identity"
	KeyPulseSchedule      = "pulse_schedule"
	KeyTimezoneOffset     = "timezone_offset"
	KeyCurrentSeason      = "current_season"
	KeyInitialPeopleSetup = "initial_people_setup"
)

// SetupKeys lists the onboarding keys in the order they are collected.
var SetupKeys = []string{
	KeyIdentity,
	KeyPulseSchedule,
	KeyTimezoneOffset,
	KeyCurrentSeason,
	KeyInitialPeopleSetup,
}

// UserConfig is one key/value row of a user's configuration.
type UserConfig struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID int64     `gorm:"column:user_id;not null;index;uniqueIndex:idx_user_config_user_key,priority:1" json:"user_id"`
	Key    string    `gorm:"column:config_key;not null;index;uniqueIndex:idx_user_config_user_key,priority:2" json:"key"`
	Value  string    `gorm:"column:config_value;type:text;not null;default:''" json:"value"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (UserConfig) TableName() string { return "user_config" }

func (c *UserConfig) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// ConfigMap indexes rows by key. Later rows win and blank values are treated as unset.
func ConfigMap(rows []*UserConfig) map[string]string {
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		if r == nil || strings.TrimSpace(r.Value) == "" {
			continue
		}
		out[r.Key] = r.Value
	}
	return out
}
