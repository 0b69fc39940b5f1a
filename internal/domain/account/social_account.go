package account

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SocialAccount stores publishing credentials. Tokens are ciphertext at rest.
type SocialAccount struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Platform       string    `gorm:"column:platform;type:text;not null" json:"platform"`
	AccountName    *string   `gorm:"column:account_name;type:text" json:"account_name,omitempty"`
	AccessToken    string    `gorm:"column:access_token;type:text;not null" json:"-"`
	RefreshToken   *string   `gorm:"column:refresh_token;type:text" json:"-"`
	TokenExpiresAt time.Time `gorm:"column:token_expires_at;not null" json:"token_expires_at"`
	CreatedAt      time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null" json:"updated_at"`
}

func (SocialAccount) TableName() string { return "social_accounts" }

func (s *SocialAccount) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}
	return nil
}
