package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/observability"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

const (
	ReasonDailyLimit         = "daily_limit"
	ReasonPlatformLimit      = "platform_limit"
	ReasonFeatureUnavailable = "feature_unavailable"
	ReasonLengthLimit        = "length_limit"
	ReasonVariationLimit     = "variation_limit"
)

// UsageContext describes the work a request is about to do.
type UsageContext struct {
	PlatformCount       int
	ContentLength       int
	BrandVoiceRequested bool
	VariationCount      int
}

type UsageGuard interface {
	// Check enforces the caller's plan before any paid work starts. It never records usage.
	Check(ctx context.Context, userID uuid.UUID, kind types.UsageKind, uc UsageContext) (*types.Entitlements, error)
}

type usageGuard struct {
	db        *gorm.DB
	log       *logger.Logger
	limits    LimitsService
	usageRepo repos.UsageEventRepo
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewUsageGuard(db *gorm.DB, log *logger.Logger, limits LimitsService, usageRepo repos.UsageEventRepo) UsageGuard {
	return &usageGuard{
		db:        db,
		log:       log.With("service", "UsageGuard"),
		limits:    limits,
		usageRepo: usageRepo,
		metrics:   observability.Current(),
		now:       time.Now,
	}
}

// DayBounds is the UTC calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func (g *usageGuard) Check(ctx context.Context, userID uuid.UUID, kind types.UsageKind, uc UsageContext) (*types.Entitlements, error) {
	ent, err := g.limits.Resolve(ctx, userID)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	limits := ent.Limits

	if limits.DailyGenerations != nil {
		from, to := DayBounds(g.now())
		used, err := g.usageRepo.CountBetween(dbctx.Context{Ctx: ctx}, userID, from, to)
		if err != nil {
			return nil, apierr.Internal("", fmt.Errorf("count usage: %w", err))
		}
		if used >= int64(*limits.DailyGenerations) {
			return nil, g.reject(userID, ReasonDailyLimit, "Daily generation limit reached", map[string]any{
				"limit": *limits.DailyGenerations,
				"used":  used,
			})
		}
	}

	if limits.MaxPlatformsPerRequest != nil && uc.PlatformCount > *limits.MaxPlatformsPerRequest {
		return nil, g.reject(userID, ReasonPlatformLimit, "Too many platforms for your plan", map[string]any{
			"limit": *limits.MaxPlatformsPerRequest,
			"used":  uc.PlatformCount,
		})
	}

	if kind == types.UsageBlogToSNS {
		if !limits.BlogToSNS {
			return nil, g.reject(userID, ReasonFeatureUnavailable, "Blog to SNS is not available on your plan", map[string]any{
				"feature": "blog_to_sns",
			})
		}
		if limits.MaxBlogLength != nil && uc.ContentLength > *limits.MaxBlogLength {
			return nil, g.reject(userID, ReasonLengthLimit, "Blog content exceeds your plan's length limit", map[string]any{
				"limit": *limits.MaxBlogLength,
				"used":  uc.ContentLength,
			})
		}
	}

	if uc.BrandVoiceRequested && !limits.BrandVoice {
		return nil, g.reject(userID, ReasonFeatureUnavailable, "Brand voice is not available on your plan", map[string]any{
			"feature": "brand_voice",
		})
	}

	if kind == types.UsageVariation && limits.VariationsPerRequest != nil && uc.VariationCount > *limits.VariationsPerRequest {
		return nil, g.reject(userID, ReasonVariationLimit, "Too many variations for your plan", map[string]any{
			"limit": *limits.VariationsPerRequest,
			"used":  uc.VariationCount,
		})
	}

	return ent, nil
}

func (g *usageGuard) reject(userID uuid.UUID, reason, message string, details map[string]any) error {
	g.metrics.IncQuotaRejection(reason)
	g.log.Info("quota check rejected request", "user_id", userID.String(), "reason", reason)
	details["reason"] = reason
	return apierr.QuotaExceeded(message, details)
}
