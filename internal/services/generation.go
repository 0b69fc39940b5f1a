package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/domain/generation"
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

// TextGenerator is the provider fallback chain as seen by the services.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts router.Options) (router.Result, error)
}

type GenerationResult struct {
	GenerationID uuid.UUID     `json:"generation_id"`
	Outputs      types.Outputs `json:"outputs"`
}

type GenerationService interface {
	Generate(ctx context.Context, userID uuid.UUID, req types.GenerationRequest) (*GenerationResult, error)
}

type generationService struct {
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

// NewGenerationService wires the generation pipeline. timeout bounds the provider fan-out of
// one request; zero means 90s.
func NewGenerationService(
	db *gorm.DB,
	log *logger.Logger,
	guard UsageGuard,
	gen TextGenerator,
	generationRepo repos.GenerationRepo,
	usageRepo repos.UsageEventRepo,
	brandVoiceRepo repos.BrandVoiceRepo,
	timeout time.Duration,
) GenerationService {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &generationService{
		db:             db,
		log:            log.With("service", "GenerationService"),
		guard:          guard,
		gen:            gen,
		generationRepo: generationRepo,
		usageRepo:      usageRepo,
		brandVoiceRepo: brandVoiceRepo,
		metrics:        observability.Current(),
		timeout:        timeout,
	}
}

// platformOutcome is one platform's slot in the fan-out.
type platformOutcome struct {
	output types.Output
	detail map[string]any
}

func (s *generationService) Generate(ctx context.Context, userID uuid.UUID, req types.GenerationRequest) (*GenerationResult, error) {
	kind, source, uc := usageFor(req)
	ent, err := s.guard.Check(ctx, userID, kind, uc)
	if err != nil {
		return nil, err
	}
	bv, err := loadBrandVoice(ctx, s.brandVoiceRepo, userID, req.BrandVoice())
	if err != nil {
		return nil, err
	}

	ps := req.TargetPlatforms()
	results := make([]platformOutcome, len(ps))

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(len(ps))
	for i, p := range ps {
		g.Go(func() error {
			results[i] = s.generatePlatform(genCtx, req, p, bv, ent.Limits.PriorityRouting)
			return nil
		})
	}
	_ = g.Wait()

	outputs := make(types.Outputs, len(ps))
	failed := map[string]any{}
	okCount := 0
	for i, p := range ps {
		outputs[p] = results[i].output
		if results[i].output.OK() {
			okCount++
		} else {
			failed[string(p)] = results[i].detail
		}
	}

	if okCount == 0 {
		s.metrics.ObserveGeneration(source, "provider_error")
		s.log.Warn("generation failed for every platform", "user_id", userID.String(), "platforms", len(ps))
		return nil, apierr.Provider("Generation failed for every platform", map[string]any{"platforms": failed}, nil)
	}

	rec := &types.GenerationRecord{UserID: userID, Source: source, VariantType: types.VariantOriginal}
	switch r := req.(type) {
	case *generation.SimpleRequest:
		rec.Topic = optionalText(r.Topic)
		rec.Content = optionalText(r.Content)
		rec.Tone = optionalText(r.Tone)
	case *generation.BlogRequest:
		rec.Content = optionalText(r.BlogContent)
	}
	if err := rec.SetPlatforms(ps); err != nil {
		return nil, apierr.Internal("", err)
	}
	if err := rec.SetOutputs(outputs); err != nil {
		return nil, apierr.Internal("", err)
	}

	if err := s.persist(ctx, kind, rec); err != nil {
		s.metrics.ObserveGeneration(source, "persist_error")
		s.log.Error("failed to persist generation", "user_id", userID.String(), "error", err)
		return nil, apierr.Internal("Failed to save generation", err)
	}

	outcome := "ok"
	if okCount < len(ps) {
		outcome = "partial"
	}
	s.metrics.ObserveGeneration(source, outcome)
	s.log.Info("generation stored",
		"user_id", userID.String(),
		"generation_id", rec.ID.String(),
		"source", source,
		"platforms", len(ps),
		"failed", len(ps)-okCount,
	)
	return &GenerationResult{GenerationID: rec.ID, Outputs: outputs}, nil
}

func (s *generationService) generatePlatform(ctx context.Context, req types.GenerationRequest, p platforms.Platform, bv *types.BrandVoice, priority bool) platformOutcome {
	narrowed := req.ForPlatform(p)
	rules, err := platforms.RulesFor([]platforms.Platform{p})
	if err != nil {
		return failedOutcome(err)
	}
	prompt, err := prompts.Build(narrowed, rules, bv)
	if err != nil {
		return failedOutcome(err)
	}

	opts := router.Options{Mode: engine.ModeAnalysis, System: prompts.SystemPrompt, JSON: true}
	if priority {
		opts.Mode = engine.ModePrimary
		if hint, ok := platforms.ModelHint(p); ok {
			opts.PreferProvider = hint.Provider
			opts.PreferModel = hint.Model
		}
	}

	res, err := s.gen.Generate(ctx, prompt, opts)
	if err != nil {
		s.log.Warn("platform generation failed", "platform", string(p), "error", err)
		return failedOutcome(err)
	}
	text, err := extract.PlatformText(res.Content, string(p))
	if err != nil {
		s.log.Warn("unusable model output", "platform", string(p), "provider", res.Provider, "error", err)
		return failedOutcome(err)
	}
	return platformOutcome{output: types.Output{Content: text, Provider: res.Provider}}
}

func (s *generationService) persist(ctx context.Context, kind types.UsageKind, rec *types.GenerationRecord) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.generationRepo.Create(dbc, rec); err != nil {
			return fmt.Errorf("create generation: %w", err)
		}
		ev := &types.UsageEvent{UserID: rec.UserID, Kind: string(kind), GenerationID: &rec.ID}
		if err := s.usageRepo.Create(dbc, ev); err != nil {
			return fmt.Errorf("record usage: %w", err)
		}
		return nil
	})
}

func usageFor(req types.GenerationRequest) (types.UsageKind, string, UsageContext) {
	uc := UsageContext{
		PlatformCount:       len(req.TargetPlatforms()),
		BrandVoiceRequested: req.BrandVoice() != nil,
	}
	switch r := req.(type) {
	case *generation.BlogRequest:
		uc.ContentLength = utf8.RuneCountInString(r.BlogContent)
		return types.UsageBlogToSNS, types.SourceBlog, uc
	default:
		return types.UsageGeneratePost, types.SourceIdea, uc
	}
}

// loadBrandVoice resolves an optional brand voice id. Ids that are missing or owned by
// another user are rejected rather than ignored.
func loadBrandVoice(ctx context.Context, repo repos.BrandVoiceRepo, userID uuid.UUID, id *uuid.UUID) (*types.BrandVoice, error) {
	if id == nil {
		return nil, nil
	}
	bv, err := repo.GetByIDForUser(dbctx.Context{Ctx: ctx}, *id, userID)
	if err != nil {
		return nil, apierr.Internal("", fmt.Errorf("load brand voice: %w", err))
	}
	if bv == nil {
		return nil, invalidFields(map[string]string{"brandVoiceId": "brand voice not found"})
	}
	return bv, nil
}

// failureDetail is the per-platform error payload shown to callers.
func failureDetail(err error) map[string]any {
	var agg *router.AggregatedError
	if errors.As(err, &agg) {
		return map[string]any{"error": agg.Error(), "providers": agg.Failures}
	}
	var xe *extract.Error
	if errors.As(err, &xe) {
		return map[string]any{"error": xe.Error()}
	}
	return map[string]any{"error": "generation failed"}
}

func failedOutcome(err error) platformOutcome {
	d := failureDetail(err)
	msg, _ := d["error"].(string)
	return platformOutcome{output: types.Output{Error: msg}, detail: d}
}

func optionalText(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
