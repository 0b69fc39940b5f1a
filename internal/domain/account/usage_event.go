package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UsageKind string

const (
	UsageGeneratePost       UsageKind = "generate_post"
	UsageBlogToSNS          UsageKind = "blog_to_sns"
	UsageVariation          UsageKind = "variation"
	UsageBrandVoiceAnalysis UsageKind = "brand_voice_analysis"
)

// UsageEvent is one billable action. The daily counter is derived from these rows.
type UsageEvent struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_usage_events_user_created,priority:1" json:"user_id"`
	Kind         string     `gorm:"column:kind;type:text;not null" json:"kind"`
	GenerationID *uuid.UUID `gorm:"type:uuid;column:generation_id" json:"generation_id,omitempty"`
	CreatedAt    time.Time  `gorm:"not null;index:idx_usage_events_user_created,priority:2" json:"created_at"`
}

func (UsageEvent) TableName() string { return "usage_events" }

func (e *UsageEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return nil
}
