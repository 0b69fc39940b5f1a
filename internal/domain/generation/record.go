package generation

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/platforms"
)

const (
	SourceIdea = "idea"
	SourceBlog = "blog"

	VariantOriginal  = "original"
	VariantVariation = "variation"
)

// Output is one platform's result: content on success, error otherwise.
type Output struct {
	Content  string `json:"content,omitempty"`
	Provider string `json:"provider,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (o Output) OK() bool { return o.Error == "" && o.Content != "" }

type Outputs map[platforms.Platform]Output

// Record is the append-only audit row of one generation transaction.
type Record struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_generations_user_created,priority:1" json:"user_id"`

	Source  string  `gorm:"column:source;type:text;not null" json:"source"`
	Topic   *string `gorm:"column:topic;type:text" json:"topic,omitempty"`
	Content *string `gorm:"column:content;type:text" json:"content,omitempty"`
	Tone    *string `gorm:"column:tone;type:text" json:"tone,omitempty"`

	Platforms datatypes.JSON `gorm:"column:platforms;type:jsonb;not null" json:"platforms"`
	Outputs   datatypes.JSON `gorm:"column:outputs;type:jsonb;not null" json:"outputs"`

	VariantType        string     `gorm:"column:variant_type;type:text;not null;default:'original'" json:"variant_type"`
	VariationStyle     *string    `gorm:"column:variation_style;type:text" json:"variation_style,omitempty"`
	ParentGenerationID *uuid.UUID `gorm:"type:uuid;column:parent_generation_id;index" json:"parent_generation_id"`

	CreatedAt time.Time      `gorm:"not null;index:idx_generations_user_created,priority:2" json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Record) TableName() string { return "generations" }

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	if r.VariantType == "" {
		r.VariantType = VariantOriginal
	}
	return nil
}

func (r *Record) SetPlatforms(ps []platforms.Platform) error {
	if ps == nil {
		ps = []platforms.Platform{}
	}
	b, err := json.Marshal(ps)
	if err != nil {
		return err
	}
	r.Platforms = datatypes.JSON(b)
	return nil
}

func (r *Record) PlatformList() ([]platforms.Platform, error) {
	var out []platforms.Platform
	if len(r.Platforms) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.Platforms, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Record) SetOutputs(o Outputs) error {
	if o == nil {
		o = Outputs{}
	}
	b, err := json.Marshal(o)
	if err != nil {
		return err
	}
	r.Outputs = datatypes.JSON(b)
	return nil
}

func (r *Record) OutputMap() (Outputs, error) {
	out := Outputs{}
	if len(r.Outputs) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.Outputs, &out); err != nil {
		return nil, err
	}
	return out, nil
}
