package assistant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPersonRole      = "Sprint Contact"
	DefaultStrategicWeight = 5
	MaxStrategicWeight     = 10
)

// Person is a stakeholder in the user's influence map.
type Person struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          int64     `gorm:"column:user_id;not null;index" json:"user_id"`
	Name            string    `gorm:"column:name;not null" json:"name"`
	Role            string    `gorm:"column:role;not null;default:''" json:"role"`
	StrategicWeight int       `gorm:"column:strategic_weight;not null" json:"strategic_weight"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (Person) TableName() string { return "person" }

func (p *Person) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.StrategicWeight = ClampWeight(p.StrategicWeight)
	return nil
}

func ClampWeight(w int) int {
	if w < 0 {
		return 0
	}
	if w > MaxStrategicWeight {
		return MaxStrategicWeight
	}
	return w
}
