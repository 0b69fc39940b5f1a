package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/domain/account"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

// EntitlementsCache is the optional read-through cache in front of profile lookups.
type EntitlementsCache interface {
	Get(ctx context.Context, userID string) (types.Entitlements, bool, error)
	Set(ctx context.Context, userID string, ent types.Entitlements) error
	Invalidate(ctx context.Context, userID string) error
}

type LimitsService interface {
	// Resolve returns the caller's plan and effective limits. A user without a profile is on free.
	Resolve(ctx context.Context, userID uuid.UUID) (*types.Entitlements, error)
	SetPlan(ctx context.Context, userID uuid.UUID, plan types.Plan) (*types.Entitlements, error)
}

type limitsService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
	cache       EntitlementsCache
}

// NewLimitsService builds the plan resolver. cache may be nil.
func NewLimitsService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo, cache EntitlementsCache) LimitsService {
	return &limitsService{
		db:          db,
		log:         log.With("service", "LimitsService"),
		profileRepo: profileRepo,
		cache:       cache,
	}
}

func (s *limitsService) Resolve(ctx context.Context, userID uuid.UUID) (*types.Entitlements, error) {
	key := userID.String()
	if s.cache != nil {
		ent, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("limits cache read failed", "user_id", key, "error", err)
		} else if ok {
			return &ent, nil
		}
	}

	profile, err := s.profileRepo.GetByUserID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	ent, err := entitlementsFor(profile)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, *ent); err != nil {
			s.log.Warn("limits cache write failed", "user_id", key, "error", err)
		}
	}
	return ent, nil
}

func (s *limitsService) SetPlan(ctx context.Context, userID uuid.UUID, plan types.Plan) (*types.Entitlements, error) {
	profile, err := s.profileRepo.SetPlan(dbctx.Context{Ctx: ctx}, userID, plan)
	if err != nil {
		return nil, fmt.Errorf("set plan: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID.String()); err != nil {
			s.log.Warn("limits cache invalidate failed", "user_id", userID.String(), "error", err)
		}
	}
	s.log.Info("plan updated", "user_id", userID.String(), "plan", string(plan))
	return entitlementsFor(profile)
}

func entitlementsFor(profile *types.Profile) (*types.Entitlements, error) {
	plan := types.PlanFree
	var overrides []byte
	if profile != nil {
		if p, err := account.ParsePlan(profile.Plan); err == nil {
			plan = p
		}
		overrides = profile.Limits
	}
	limits, err := account.ResolveLimits(plan, overrides)
	if err != nil {
		return nil, fmt.Errorf("resolve limits: %w", err)
	}
	return &types.Entitlements{Plan: plan, Limits: limits}, nil
}
