package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type UsageSummary struct {
	Plan      types.Plan       `json:"plan"`
	Limits    types.PlanLimits `json:"limits"`
	DailyUsed int64            `json:"daily_used"`
	DayStart  time.Time        `json:"day_start"`
}

type UsageService interface {
	Summary(ctx context.Context, userID uuid.UUID) (*UsageSummary, error)
}

type usageService struct {
	log       *logger.Logger
	limits    LimitsService
	usageRepo repos.UsageEventRepo
	now       func() time.Time
}

func NewUsageService(log *logger.Logger, limits LimitsService, usageRepo repos.UsageEventRepo) UsageService {
	return &usageService{
		log:       log.With("service", "UsageService"),
		limits:    limits,
		usageRepo: usageRepo,
		now:       time.Now,
	}
}

func (s *usageService) Summary(ctx context.Context, userID uuid.UUID) (*UsageSummary, error) {
	ent, err := s.limits.Resolve(ctx, userID)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	from, to := DayBounds(s.now())
	used, err := s.usageRepo.CountBetween(dbctx.Context{Ctx: ctx}, userID, from, to)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	return &UsageSummary{
		Plan:      ent.Plan,
		Limits:    ent.Limits,
		DailyUsed: used,
		DayStart:  from,
	}, nil
}
