package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
	"github.com/yungbote/idea2sns-backend/internal/inference/extract"
	"github.com/yungbote/idea2sns-backend/internal/inference/router"
	"github.com/yungbote/idea2sns-backend/internal/observability"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
	"github.com/yungbote/idea2sns-backend/internal/platforms"
	"github.com/yungbote/idea2sns-backend/internal/prompts"
)

type VariationInput struct {
	GenerationID string                   `json:"generation_id" validate:"required,uuid"`
	Platform     platforms.Platform       `json:"platform" validate:"required,oneof=twitter linkedin threads reddit"`
	Styles       []prompts.VariationStyle `json:"styles" validate:"required,min=1,max=6,unique,dive,oneof=short long casual formal hook-first emotional"`
	BrandVoiceID *string                  `json:"brandVoiceId" validate:"omitempty,uuid"`
}

type Variation struct {
	Style        prompts.VariationStyle `json:"style"`
	GenerationID *uuid.UUID             `json:"generation_id,omitempty"`
	Content      string                 `json:"content,omitempty"`
	Provider     string                 `json:"provider,omitempty"`
	Error        string                 `json:"error,omitempty"`
}

type VariationResult struct {
	Variations []Variation `json:"variations"`
}

type VariationService interface {
	Generate(ctx context.Context, userID uuid.UUID, in VariationInput) (*VariationResult, error)
}

type variationService struct {
	db             *gorm.DB
	log            *logger.Logger
	guard          UsageGuard
	gen            TextGenerator
	generationRepo repos.GenerationRepo
	usageRepo      repos.UsageEventRepo
	brandVoiceRepo repos.BrandVoiceRepo
	metrics        *observability.Metrics
	timeout        time.Duration
}

func NewVariationService(
	db *gorm.DB,
	log *logger.Logger,
	guard UsageGuard,
	gen TextGenerator,
	generationRepo repos.GenerationRepo,
	usageRepo repos.UsageEventRepo,
	brandVoiceRepo repos.BrandVoiceRepo,
	timeout time.Duration,
) VariationService {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &variationService{
		db:             db,
		log:            log.With("service", "VariationService"),
		guard:          guard,
		gen:            gen,
		generationRepo: generationRepo,
		usageRepo:      usageRepo,
		brandVoiceRepo: brandVoiceRepo,
		metrics:        observability.Current(),
		timeout:        timeout,
	}
}

func (s *variationService) Generate(ctx context.Context, userID uuid.UUID, in VariationInput) (*VariationResult, error) {
	parentID, err := uuid.Parse(in.GenerationID)
	if err != nil {
		return nil, invalidFields(map[string]string{"generation_id": "must be a UUID"})
	}
	bvID := optionalUUID(in.BrandVoiceID)

	ent, err := s.guard.Check(ctx, userID, types.UsageVariation, UsageContext{
		PlatformCount:       1,
		BrandVoiceRequested: bvID != nil,
		VariationCount:      len(in.Styles),
	})
	if err != nil {
		return nil, err
	}

	parent, err := s.generationRepo.GetByIDForUser(dbctx.Context{Ctx: ctx}, parentID, userID)
	if err != nil {
		return nil, apierr.Internal("", fmt.Errorf("load parent generation: %w", err))
	}
	if parent == nil {
		return nil, apierr.NotFound("Generation not found")
	}
	outputs, err := parent.OutputMap()
	if err != nil {
		return nil, apierr.Internal("", fmt.Errorf("decode parent outputs: %w", err))
	}
	base, ok := outputs[in.Platform]
	if !ok || !base.OK() {
		return nil, invalidFields(map[string]string{"platform": "generation has no content for this platform"})
	}
	bv, err := loadBrandVoice(ctx, s.brandVoiceRepo, userID, bvID)
	if err != nil {
		return nil, err
	}

	opts := router.Options{Mode: engine.ModeAnalysis, System: prompts.SystemPrompt}
	if ent.Limits.PriorityRouting {
		opts.Mode = engine.ModePrimary
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	variations := make([]Variation, len(in.Styles))
	var g errgroup.Group
	g.SetLimit(len(in.Styles))
	for i, style := range in.Styles {
		g.Go(func() error {
			variations[i] = s.generateStyle(genCtx, base.Content, style, bv, opts)
			return nil
		})
	}
	_ = g.Wait()

	var records []*types.GenerationRecord
	for i := range variations {
		v := &variations[i]
		if v.Error != "" {
			continue
		}
		style := string(v.Style)
		rec := &types.GenerationRecord{
			UserID:             userID,
			Source:             parent.Source,
			Topic:              parent.Topic,
			Content:            parent.Content,
			Tone:               parent.Tone,
			VariantType:        types.VariantVariation,
			VariationStyle:     &style,
			ParentGenerationID: &parent.ID,
		}
		if err := rec.SetPlatforms([]platforms.Platform{in.Platform}); err != nil {
			return nil, apierr.Internal("", err)
		}
		if err := rec.SetOutputs(types.Outputs{in.Platform: {Content: v.Content, Provider: v.Provider}}); err != nil {
			return nil, apierr.Internal("", err)
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		s.metrics.ObserveGeneration("variation", "provider_error")
		return nil, apierr.Provider("Variation generation failed for every style", map[string]any{"variations": variations}, nil)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		for _, rec := range records {
			if err := s.generationRepo.Create(dbc, rec); err != nil {
				return fmt.Errorf("create variation: %w", err)
			}
		}
		return s.usageRepo.Create(dbc, &types.UsageEvent{
			UserID:       userID,
			Kind:         string(types.UsageVariation),
			GenerationID: &parent.ID,
		})
	})
	if err != nil {
		s.metrics.ObserveGeneration("variation", "persist_error")
		s.log.Error("failed to persist variations", "user_id", userID.String(), "error", err)
		return nil, apierr.Internal("Failed to save variations", err)
	}

	next := 0
	for i := range variations {
		if variations[i].Error == "" {
			id := records[next].ID
			variations[i].GenerationID = &id
			next++
		}
	}
	outcome := "ok"
	if len(records) < len(variations) {
		outcome = "partial"
	}
	s.metrics.ObserveGeneration("variation", outcome)
	return &VariationResult{Variations: variations}, nil
}

func (s *variationService) generateStyle(ctx context.Context, baseText string, style prompts.VariationStyle, bv *types.BrandVoice, opts router.Options) Variation {
	out := Variation{Style: style}
	prompt, err := prompts.Variation(baseText, style, bv)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	res, err := s.gen.Generate(ctx, prompt, opts)
	if err != nil {
		s.log.Warn("variation generation failed", "style", string(style), "error", err)
		out.Error = failureDetail(err)["error"].(string)
		return out
	}
	text, err := extract.PlainText(res.Content)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Content = text
	out.Provider = res.Provider
	return out
}
