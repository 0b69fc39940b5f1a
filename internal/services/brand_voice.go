package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
	"github.com/yungbote/idea2sns-backend/internal/inference/extract"
	"github.com/yungbote/idea2sns-backend/internal/inference/router"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/prompts"
)

type BrandVoiceInput struct {
	Label   *string  `json:"label" validate:"omitempty,max=100"`
	Samples []string `json:"samples" validate:"required,min=1,max=5,dive,notblank,max=5000"`
}

type BrandVoiceService interface {
	Analyze(ctx context.Context, userID uuid.UUID, in BrandVoiceInput) (*types.BrandVoice, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.BrandVoice, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

type brandVoiceService struct {
	db             *gorm.DB
	log            *logger.Logger
	guard          UsageGuard
	gen            TextGenerator
	brandVoiceRepo repos.BrandVoiceRepo
	usageRepo      repos.UsageEventRepo
}

func NewBrandVoiceService(
	db *gorm.DB,
	log *logger.Logger,
	guard UsageGuard,
	gen TextGenerator,
	brandVoiceRepo repos.BrandVoiceRepo,
	usageRepo repos.UsageEventRepo,
) BrandVoiceService {
	return &brandVoiceService{
		db:             db,
		log:            log.With("service", "BrandVoiceService"),
		guard:          guard,
		gen:            gen,
		brandVoiceRepo: brandVoiceRepo,
		usageRepo:      usageRepo,
	}
}

func (s *brandVoiceService) Analyze(ctx context.Context, userID uuid.UUID, in BrandVoiceInput) (*types.BrandVoice, error) {
	if _, err := s.guard.Check(ctx, userID, types.UsageBrandVoiceAnalysis, UsageContext{BrandVoiceRequested: true}); err != nil {
		return nil, err
	}

	samples := make([]string, 0, len(in.Samples))
	for _, sm := range in.Samples {
		samples = append(samples, strings.TrimSpace(sm))
	}
	res, err := s.gen.Generate(ctx, prompts.BrandVoiceAnalysis(samples), router.Options{
		Mode:   engine.ModeAnalysis,
		System: prompts.SystemPrompt,
		JSON:   true,
	})
	if err != nil {
		var agg *router.AggregatedError
		if errors.As(err, &agg) {
			return nil, apierr.Provider("Brand voice analysis failed", map[string]any{"providers": agg.Failures}, err)
		}
		return nil, apierr.Provider("Brand voice analysis failed", nil, err)
	}
	style, err := extract.Object(res.Content)
	if err != nil {
		s.log.Warn("unusable brand voice output", "provider", res.Provider, "error", err)
		return nil, apierr.Provider("Brand voice analysis returned an unusable answer", nil, err)
	}

	styleJSON, err := json.Marshal(style)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	samplesJSON, err := json.Marshal(samples)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	bv := &types.BrandVoice{
		UserID:         userID,
		Label:          blankToNil(in.Label),
		Samples:        datatypes.JSON(samplesJSON),
		ExtractedStyle: datatypes.JSON(styleJSON),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.brandVoiceRepo.Create(dbc, bv); err != nil {
			return fmt.Errorf("create brand voice: %w", err)
		}
		return s.usageRepo.Create(dbc, &types.UsageEvent{UserID: userID, Kind: string(types.UsageBrandVoiceAnalysis)})
	})
	if err != nil {
		s.log.Error("failed to persist brand voice", "user_id", userID.String(), "error", err)
		return nil, apierr.Internal("Failed to save brand voice", err)
	}
	return bv, nil
}

func (s *brandVoiceService) List(ctx context.Context, userID uuid.UUID) ([]*types.BrandVoice, error) {
	out, err := s.brandVoiceRepo.ListForUser(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return nil, apierr.Internal("", err)
	}
	return out, nil
}

func (s *brandVoiceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ok, err := s.brandVoiceRepo.SoftDeleteForUser(dbctx.Context{Ctx: ctx}, id, userID)
	if err != nil {
		return apierr.Internal("", err)
	}
	if !ok {
		return apierr.NotFound("Brand voice not found")
	}
	return nil
}
