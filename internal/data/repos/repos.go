package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/data/repos/account"
	"github.com/yungbote/idea2sns-backend/internal/data/repos/generation"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type GenerationRepo = generation.GenerationRepo
type GenerationListFilter = generation.ListFilter

type ProfileRepo = account.ProfileRepo
type UsageEventRepo = account.UsageEventRepo
type BrandVoiceRepo = account.BrandVoiceRepo
type SocialAccountRepo = account.SocialAccountRepo

func NewGenerationRepo(db *gorm.DB, baseLog *logger.Logger) GenerationRepo {
	return generation.NewGenerationRepo(db, baseLog)
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return account.NewProfileRepo(db, baseLog)
}

func NewUsageEventRepo(db *gorm.DB, baseLog *logger.Logger) UsageEventRepo {
	return account.NewUsageEventRepo(db, baseLog)
}

func NewBrandVoiceRepo(db *gorm.DB, baseLog *logger.Logger) BrandVoiceRepo {
	return account.NewBrandVoiceRepo(db, baseLog)
}

func NewSocialAccountRepo(db *gorm.DB, baseLog *logger.Logger) SocialAccountRepo {
	return account.NewSocialAccountRepo(db, baseLog)
}
