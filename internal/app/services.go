package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

type Services struct {
	Auth          services.AuthService
	Limits        services.LimitsService
	Guard         services.UsageGuard
	Generation    services.GenerationService
	Variation     services.VariationService
	BrandVoice    services.BrandVoiceService
	History       services.HistoryService
	Usage         services.UsageService
	SocialAccount services.SocialAccountService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	if cfg.Auth.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; every authenticated request will be rejected")
	}
	cipherKey := cfg.Auth.TokenEncryptionKey
	if cipherKey == "" {
		cipherKey = "idea2sns-development-token-key"
		log.Warn("TOKEN_ENCRYPTION_KEY is empty; using the development key")
	}
	cipher, err := services.NewTokenCipher(cipherKey)
	if err != nil {
		return Services{}, fmt.Errorf("init token cipher: %w", err)
	}

	var cache services.EntitlementsCache
	if clients.LimitsCache != nil {
		cache = clients.LimitsCache
	}
	limits := services.NewLimitsService(db, log, repos.Profile, cache)
	guard := services.NewUsageGuard(db, log, limits, repos.UsageEvent)
	timeout := cfg.Generation.RequestTimeout.Duration

	return Services{
		Auth:          services.NewAuthService(log, cfg.Auth.JWTSecret, cfg.Auth.JWTAudience),
		Limits:        limits,
		Guard:         guard,
		Generation:    services.NewGenerationService(db, log, guard, clients.LLM, repos.Generation, repos.UsageEvent, repos.BrandVoice, timeout),
		Variation:     services.NewVariationService(db, log, guard, clients.LLM, repos.Generation, repos.UsageEvent, repos.BrandVoice, timeout),
		BrandVoice:    services.NewBrandVoiceService(db, log, guard, clients.LLM, repos.BrandVoice, repos.UsageEvent),
		History:       services.NewHistoryService(log, repos.Generation),
		Usage:         services.NewUsageService(log, limits, repos.UsageEvent),
		SocialAccount: services.NewSocialAccountService(log, repos.SocialAccount, cipher),
	}, nil
}
