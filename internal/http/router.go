package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/idea2sns-backend/internal/http/handlers"
	httpMW "github.com/yungbote/idea2sns-backend/internal/http/middleware"
	"github.com/yungbote/idea2sns-backend/internal/http/response"
	"github.com/yungbote/idea2sns-backend/internal/observability"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	AllowedOrigins []string
	MaxBodyBytes   int64
	ServiceName    string

	AuthMiddleware *httpMW.AuthMiddleware

	GenerationHandler    *httpH.GenerationHandler
	BrandVoiceHandler    *httpH.BrandVoiceHandler
	HistoryHandler       *httpH.HistoryHandler
	UsageHandler         *httpH.UsageHandler
	SocialAccountHandler *httpH.SocialAccountHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "path", c.FullPath(), "panic", recovered)
		response.RespondError(c, nil, apierr.Internal("", nil))
	}))
	if observability.OTelEnabled() {
		serviceName := cfg.ServiceName
		if serviceName == "" {
			serviceName = "idea2sns"
		}
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.BodyLimit(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			api.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Generation
		if cfg.GenerationHandler != nil {
			api.POST("/generate-post", cfg.GenerationHandler.GeneratePost)
			api.POST("/blog-to-sns", cfg.GenerationHandler.BlogToSNS)
			api.POST("/generate-variations", cfg.GenerationHandler.GenerateVariations)
		}

		// Brand voice
		if cfg.BrandVoiceHandler != nil {
			api.POST("/brand-voices/analyze", cfg.BrandVoiceHandler.Analyze)
			api.GET("/brand-voices", cfg.BrandVoiceHandler.List)
			api.DELETE("/brand-voices/:id", cfg.BrandVoiceHandler.Delete)
		}

		// History
		if cfg.HistoryHandler != nil {
			api.GET("/generations", cfg.HistoryHandler.List)
			api.GET("/generations/:id", cfg.HistoryHandler.Get)
			api.DELETE("/generations/:id", cfg.HistoryHandler.Delete)
		}

		// Usage (Me)
		if cfg.UsageHandler != nil {
			api.GET("/me/usage", cfg.UsageHandler.GetUsage)
		}

		// Social accounts
		if cfg.SocialAccountHandler != nil {
			api.GET("/social-accounts", cfg.SocialAccountHandler.List)
			api.POST("/social-accounts", cfg.SocialAccountHandler.Create)
			api.PUT("/social-accounts/:id", cfg.SocialAccountHandler.Update)
			api.DELETE("/social-accounts/:id", cfg.SocialAccountHandler.Delete)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.RespondError(c, nil, apierr.NotFound("Route not found"))
	})

	return r
}
