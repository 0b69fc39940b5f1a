package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/yungbote/idea2sns-backend/internal/http"
	httpH "github.com/yungbote/idea2sns-backend/internal/http/handlers"
	httpMW "github.com/yungbote/idea2sns-backend/internal/http/middleware"
	"github.com/yungbote/idea2sns-backend/internal/observability"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health        *httpH.HealthHandler
	Generation    *httpH.GenerationHandler
	BrandVoice    *httpH.BrandVoiceHandler
	History       *httpH.HistoryHandler
	Usage         *httpH.UsageHandler
	SocialAccount *httpH.SocialAccountHandler
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(),
		Generation:    httpH.NewGenerationHandler(log, services.Generation, services.Variation),
		BrandVoice:    httpH.NewBrandVoiceHandler(log, services.BrandVoice),
		History:       httpH.NewHistoryHandler(log, services.History),
		Usage:         httpH.NewUsageHandler(log, services.Usage),
		SocialAccount: httpH.NewSocialAccountHandler(log, services.SocialAccount),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:                  log,
		Metrics:              metrics,
		AllowedOrigins:       cfg.HTTP.AllowedOrigins,
		MaxBodyBytes:         cfg.HTTP.MaxRequestBytes,
		AuthMiddleware:       middleware.Auth,
		GenerationHandler:    handlers.Generation,
		BrandVoiceHandler:    handlers.BrandVoice,
		HistoryHandler:       handlers.History,
		UsageHandler:         handlers.Usage,
		SocialAccountHandler: handlers.SocialAccount,
		HealthHandler:        handlers.Health,
	})
}
