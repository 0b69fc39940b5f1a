package account

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BrandVoice is a user-owned style profile extracted from writing samples.
type BrandVoice struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Label          *string        `gorm:"column:label;type:text" json:"label,omitempty"`
	Samples        datatypes.JSON `gorm:"column:samples;type:jsonb" json:"samples,omitempty"`
	ExtractedStyle datatypes.JSON `gorm:"column:extracted_style;type:jsonb" json:"extracted_style"`
	CreatedAt      time.Time      `gorm:"not null" json:"created_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (BrandVoice) TableName() string { return "brand_voices" }

func (b *BrandVoice) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	return nil
}

// Style decodes extracted_style; nil when empty or JSON null.
func (b *BrandVoice) Style() map[string]any {
	if b == nil || len(b.ExtractedStyle) == 0 {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(b.ExtractedStyle, &out); err != nil {
		return nil
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
