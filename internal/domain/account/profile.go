package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Profile holds a user's plan tier and optional per-user limit overrides.
type Profile struct {
	UserID    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"user_id"`
	Plan      string         `gorm:"column:plan;type:text;not null;default:'free'" json:"plan"`
	Limits    datatypes.JSON `gorm:"column:limits;type:jsonb" json:"limits,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
}

func (Profile) TableName() string { return "profiles" }
