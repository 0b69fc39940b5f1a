package app

import (
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/clients/redis"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/services"
)

// NewPlanAdmin builds the limits service for the plan commands. When redis is
// configured, plan changes also evict the cached entitlements.
func NewPlanAdmin(cfg Config, log *logger.Logger, theDB *gorm.DB) (services.LimitsService, func()) {
	var cache services.EntitlementsCache
	closeFn := func() {}
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		c, err := redis.NewLimitsCache(log, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.LimitsCacheTTL.Duration)
		if err != nil {
			log.Warn("redis unavailable; cached limits expire on their own", "error", err)
		} else {
			cache = c
			closeFn = func() { _ = c.Close() }
		}
	}
	return services.NewLimitsService(theDB, log, repos.NewProfileRepo(theDB, log), cache), closeFn
}
