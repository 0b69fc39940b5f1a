package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type Repos struct {
	Generation    repos.GenerationRepo
	Profile       repos.ProfileRepo
	UsageEvent    repos.UsageEventRepo
	BrandVoice    repos.BrandVoiceRepo
	SocialAccount repos.SocialAccountRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Generation:    repos.NewGenerationRepo(db, log),
		Profile:       repos.NewProfileRepo(db, log),
		UsageEvent:    repos.NewUsageEventRepo(db, log),
		BrandVoice:    repos.NewBrandVoiceRepo(db, log),
		SocialAccount: repos.NewSocialAccountRepo(db, log),
	}
}
