package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/idea2sns-backend/internal/data/repos"
	"github.com/yungbote/idea2sns-backend/internal/data/repos/testutil"
	types "github.com/yungbote/idea2sns-backend/internal/domain"
	"github.com/yungbote/idea2sns-backend/internal/inference/router"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
	"github.com/yungbote/idea2sns-backend/internal/platform/dbctx"
	"github.com/yungbote/idea2sns-backend/internal/platforms"
	"github.com/yungbote/idea2sns-backend/internal/prompts"
)

type fakeGenerator struct {
	mu    sync.Mutex
	calls []router.Options
	fn    func(prompt string, opts router.Options) (router.Result, error)
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, opts router.Options) (router.Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, opts)
	f.mu.Unlock()
	return f.fn(prompt, opts)
}

func (f *fakeGenerator) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// promptPlatform finds the single platform a per-platform prompt was built for.
func promptPlatform(prompt string) platforms.Platform {
	for _, p := range platforms.All() {
		if strings.Contains(prompt, `"`+string(p)+`":`) {
			return p
		}
	}
	return ""
}

func okReply(prompt string, _ router.Options) (router.Result, error) {
	p := promptPlatform(prompt)
	return router.Result{
		Content:  fmt.Sprintf("```json\n{\"%s\": \"post for %s\"}\n```", p, p),
		Provider: "openai",
		Model:    "gpt-4o-mini",
	}, nil
}

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type harness struct {
	db          *gorm.DB
	gen         *fakeGenerator
	limits      LimitsService
	guard       *usageGuard
	generation  GenerationService
	variation   VariationService
	brandVoice  BrandVoiceService
	usage       UsageService
	history     HistoryService
	profileRepo repos.ProfileRepo
	usageRepo   repos.UsageEventRepo
	genRepo     repos.GenerationRepo
	bvRepo      repos.BrandVoiceRepo
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{
		db:          db,
		gen:         &fakeGenerator{fn: okReply},
		profileRepo: repos.NewProfileRepo(db, log),
		usageRepo:   repos.NewUsageEventRepo(db, log),
		genRepo:     repos.NewGenerationRepo(db, log),
		bvRepo:      repos.NewBrandVoiceRepo(db, log),
	}
	h.limits = NewLimitsService(db, log, h.profileRepo, nil)
	h.guard = NewUsageGuard(db, log, h.limits, h.usageRepo).(*usageGuard)
	h.guard.now = func() time.Time { return fixedNow }
	h.generation = NewGenerationService(db, log, h.guard, h.gen, h.genRepo, h.usageRepo, h.bvRepo, time.Minute)
	h.variation = NewVariationService(db, log, h.guard, h.gen, h.genRepo, h.usageRepo, h.bvRepo, time.Minute)
	h.brandVoice = NewBrandVoiceService(db, log, h.guard, h.gen, h.bvRepo, h.usageRepo)
	us := NewUsageService(log, h.limits, h.usageRepo).(*usageService)
	us.now = func() time.Time { return fixedNow }
	h.usage = us
	h.history = NewHistoryService(log, h.genRepo)
	return h
}

func (h *harness) setPlan(t *testing.T, userID uuid.UUID, plan types.Plan, overrides string) {
	t.Helper()
	dbc := dbctx.Context{Ctx: context.Background()}
	if _, err := h.profileRepo.SetPlan(dbc, userID, plan); err != nil {
		t.Fatalf("SetPlan: %v", err)
	}
	if overrides != "" {
		if err := h.profileRepo.SetLimits(dbc, userID, datatypes.JSON(overrides)); err != nil {
			t.Fatalf("SetLimits: %v", err)
		}
	}
}

func (h *harness) seedUsage(t *testing.T, userID uuid.UUID, n int, at time.Time) {
	t.Helper()
	for i := 0; i < n; i++ {
		ev := &types.UsageEvent{UserID: userID, Kind: string(types.UsageGeneratePost), CreatedAt: at}
		if err := h.usageRepo.Create(dbctx.Context{Ctx: context.Background()}, ev); err != nil {
			t.Fatalf("seed usage: %v", err)
		}
	}
}

func (h *harness) records(t *testing.T, userID uuid.UUID) []*types.GenerationRecord {
	t.Helper()
	rows, _, err := h.genRepo.ListForUser(dbctx.Context{Ctx: context.Background()}, userID, repos.GenerationListFilter{Limit: 100})
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	return rows
}

func codeOf(err error) string {
	var ae *apierr.Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func reasonOf(err error) string {
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		return ""
	}
	d, _ := ae.Details.(map[string]any)
	r, _ := d["reason"].(string)
	return r
}

func simple(topic string, ps ...platforms.Platform) *types.SimpleRequest {
	return &types.SimpleRequest{Type: types.KindSimple, Topic: topic, Tone: "friendly", Platforms: ps}
}

func TestGenerateFreePlanSingleTwitter(t *testing.T) {
	h := newHarness(t)
	user := uuid.New()

	res, err := h.generation.Generate(context.Background(), user, simple("Product launch", platforms.Twitter))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Outputs) != 1 || res.Outputs[platforms.Twitter].Content != "post for twitter" {
		t.Fatalf("outputs=%+v", res.Outputs)
	}

	rows := h.records(t, user)
	if len(rows) != 1 || rows[0].ID != res.GenerationID || rows[0].Source != types.SourceIdea {
		t.Fatalf("records=%+v", rows)
	}
	stored, err := rows[0].OutputMap()
	if err != nil {
		t.Fatalf("OutputMap: %v", err)
	}
	if stored[platforms.Twitter] != res.Outputs[platforms.Twitter] {
		t.Fatalf("stored outputs differ: %+v vs %+v", stored, res.Outputs)
	}
	ps, _ := rows[0].PlatformList()
	if len(ps) != 1 || ps[0] != platforms.Twitter {
		t.Fatalf("stored platforms=%v", ps)
	}
	if rows[0].Topic == nil || *rows[0].Topic != "Product launch" {
		t.Fatalf("topic not stored: %v", rows[0].Topic)
	}

	from, to := DayBounds(time.Now())
	n, err := h.usageRepo.CountBetween(dbctx.Context{Ctx: context.Background()}, user, from, to)
	if err != nil || n != 1 {
		t.Fatalf("usage events=%d err=%v", n, err)
	}
	if h.gen.calls[0].PreferProvider != "" {
		t.Fatalf("free plan must not use priority routing: %+v", h.gen.calls[0])
	}
}

func TestGeneratePlatformLimitRejectsBeforeProviders(t *testing.T) {
	h := newHarness(t)
	user := uuid.New()
	h.setPlan(t, user, types.PlanFree, `{"max_platforms_per_request":1}`)

	_, err := h.generation.Generate(context.Background(), user,
		simple("Product launch", platforms.Twitter, platforms.LinkedIn, platforms.Threads))
	if codeOf(err) != apierr.CodeQuotaExceeded || reasonOf(err) != ReasonPlatformLimit {
		t.Fatalf("expected platform quota error, got %v", err)
	}
	if h.gen.Calls() != 0 {
		t.Fatalf("provider called %d times", h.gen.Calls())
	}
	if rows := h.records(t, user); len(rows) != 0 {
		t.Fatalf("records written: %d", len(rows))
	}
}

func TestGenerateDailyLimit(t *testing.T) {
	h := newHarness(t)

	full := uuid.New()
	h.seedUsage(t, full, 5, fixedNow.Add(-time.Hour))
	_, err := h.generation.Generate(context.Background(), full, simple("x", platforms.Twitter))
	if codeOf(err) != apierr.CodeQuotaExceeded || reasonOf(err) != ReasonDailyLimit {
		t.Fatalf("expected daily limit, got %v", err)
	}

	almost := uuid.New()
	h.seedUsage(t, almost, 4, fixedNow.Add(-time.Hour))
	// Yesterday's events do not count.
	h.seedUsage(t, almost, 3, fixedNow.Add(-24*time.Hour))
	if _, err := h.generation.Generate(context.Background(), almost, simple("x", platforms.Twitter)); err != nil {
		t.Fatalf("4 prior events should pass: %v", err)
	}

	pro := uuid.New()
	h.setPlan(t, pro, types.PlanPro, "")
	h.seedUsage(t, pro, 12, fixedNow.Add(-time.Hour))
	if _, err := h.generation.Generate(context.Background(), pro, simple("x", platforms.Twitter)); err != nil {
		t.Fatalf("pro has no daily ceiling: %v", err)
	}
}

func TestGeneratePartialFailureKeepsEveryPlatform(t *testing.T) {
	h := newHarness(t)
	h.gen.fn = func(prompt string, opts router.Options) (router.Result, error) {
		if promptPlatform(prompt) == platforms.LinkedIn {
			return router.Result{}, &router.AggregatedError{Failures: []router.ProviderFailure{{Provider: "openai", Status: 503, Message: "overloaded", Attempts: 2}}}
		}
		if promptPlatform(prompt) == platforms.Threads {
			return router.Result{Content: "Sure! here you go", Provider: "openai"}, nil
		}
		return okReply(prompt, opts)
	}
	user := uuid.New()

	res, err := h.generation.Generate(context.Background(), user,
		simple("launch", platforms.Twitter, platforms.LinkedIn, platforms.Threads))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Outputs) != 3 {
		t.Fatalf("every platform needs an entry: %+v", res.Outputs)
	}
	if !res.Outputs[platforms.Twitter].OK() {
		t.Fatalf("twitter should succeed: %+v", res.Outputs[platforms.Twitter])
	}
	if li := res.Outputs[platforms.LinkedIn]; li.OK() || !strings.Contains(li.Error, "overloaded") {
		t.Fatalf("linkedin should carry provider error: %+v", li)
	}
	if th := res.Outputs[platforms.Threads]; th.OK() || th.Error == "" {
		t.Fatalf("threads should carry parse error: %+v", th)
	}
	if rows := h.records(t, user); len(rows) != 1 {
		t.Fatalf("partial result should be stored once, got %d", len(rows))
	}
}

func TestGenerateAllPlatformsFail(t *testing.T) {
	h := newHarness(t)
	h.gen.fn = func(prompt string, opts router.Options) (router.Result, error) {
		return router.Result{}, &router.AggregatedError{Failures: []router.ProviderFailure{
			{Provider: "openai", Status: 503, Message: "down", Attempts: 2},
			{Provider: "anthropic", Status: 0, Message: "timeout", Attempts: 2},
		}}
	}
	user := uuid.New()

	_, err := h.generation.Generate(context.Background(), user, simple("x", platforms.Twitter, platforms.Reddit))
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodeProvider || ae.Status != 502 {
		t.Fatalf("expected PROVIDER_ERROR, got %v", err)
	}
	details := ae.Details.(map[string]any)["platforms"].(map[string]any)
	if len(details) != 2 {
		t.Fatalf("details should list both platforms: %+v", details)
	}
	if rows := h.records(t, user); len(rows) != 0 {
		t.Fatalf("no record expected, got %d", len(rows))
	}
	from, to := DayBounds(time.Now())
	if n, _ := h.usageRepo.CountBetween(dbctx.Context{Ctx: context.Background()}, user, from, to); n != 0 {
		t.Fatalf("no usage event expected, got %d", n)
	}
}

func TestGenerateBlogLengthBoundary(t *testing.T) {
	h := newHarness(t)
	user := uuid.New()
	h.setPlan(t, user, types.PlanFree, `{"max_blog_length":50000,"daily_generations":null}`)

	blog := func(n int) *types.BlogRequest {
		return &types.BlogRequest{Type: types.KindBlog, BlogContent: strings.Repeat("a", n), Platforms: []platforms.Platform{platforms.LinkedIn}}
	}
	for _, n := range []int{49999, 50000} {
		if _, err := h.generation.Generate(context.Background(), user, blog(n)); err != nil {
			t.Fatalf("length %d should pass: %v", n, err)
		}
	}
	_, err := h.generation.Generate(context.Background(), user, blog(50001))
	if codeOf(err) != apierr.CodeQuotaExceeded || reasonOf(err) != ReasonLengthLimit {
		t.Fatalf("expected length limit, got %v", err)
	}
	rows := h.records(t, user)
	if len(rows) != 2 || rows[0].Source != types.SourceBlog {
		t.Fatalf("records=%d", len(rows))
	}
}

func TestGenerateBrandVoiceRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	free := uuid.New()
	id := uuid.NewString()
	req := simple("x", platforms.Twitter)
	req.BrandVoiceID = &id
	_, err := h.generation.Generate(ctx, free, req)
	if codeOf(err) != apierr.CodeQuotaExceeded || reasonOf(err) != ReasonFeatureUnavailable {
		t.Fatalf("free plan brand voice: %v", err)
	}

	pro := uuid.New()
	h.setPlan(t, pro, types.PlanPro, "")
	_, err = h.generation.Generate(ctx, pro, req)
	if codeOf(err) != apierr.CodeValidation {
		t.Fatalf("unknown brand voice should be a validation error: %v", err)
	}

	bv := &types.BrandVoice{UserID: pro, ExtractedStyle: datatypes.JSON(`{"tone":"witty"}`)}
	if err := h.bvRepo.Create(dbctx.Context{Ctx: ctx}, bv); err != nil {
		t.Fatalf("create brand voice: %v", err)
	}
	own := bv.ID.String()
	req.BrandVoiceID = &own
	var seen string
	h.gen.fn = func(prompt string, opts router.Options) (router.Result, error) {
		seen = prompt
		return okReply(prompt, opts)
	}
	if _, err := h.generation.Generate(ctx, pro, req); err != nil {
		t.Fatalf("Generate with brand voice: %v", err)
	}
	if !strings.Contains(seen, `"tone":"witty"`) {
		t.Fatalf("brand voice cue missing from prompt: %s", seen)
	}
	opts := h.gen.calls[len(h.gen.calls)-1]
	if opts.Mode != "primary" || opts.PreferProvider != "anthropic" {
		t.Fatalf("pro plan should use priority routing for twitter: %+v", opts)
	}
}

func TestVariations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	h.setPlan(t, user, types.PlanPro, "")

	parent, err := h.generation.Generate(ctx, user, simple("launch", platforms.Twitter))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	h.gen.fn = func(prompt string, opts router.Options) (router.Result, error) {
		if strings.Contains(prompt, "warmer") {
			return router.Result{}, &router.AggregatedError{Failures: []router.ProviderFailure{{Provider: "openai", Status: 500, Message: "boom"}}}
		}
		return router.Result{Content: "  shorter post  ", Provider: "gemini"}, nil
	}

	res, err := h.variation.Generate(ctx, user, VariationInput{
		GenerationID: parent.GenerationID.String(),
		Platform:     platforms.Twitter,
		Styles:       []prompts.VariationStyle{"short", "casual"},
	})
	if err != nil {
		t.Fatalf("variations: %v", err)
	}
	if len(res.Variations) != 2 {
		t.Fatalf("variations=%+v", res.Variations)
	}
	short, casual := res.Variations[0], res.Variations[1]
	if short.Content != "shorter post" || short.GenerationID == nil || short.Provider != "gemini" {
		t.Fatalf("short=%+v", short)
	}
	if casual.Error == "" || casual.GenerationID != nil {
		t.Fatalf("casual should fail: %+v", casual)
	}

	child, err := h.history.Get(ctx, user, *short.GenerationID)
	if err != nil {
		t.Fatalf("Get child: %v", err)
	}
	if child.VariantType != types.VariantVariation || child.ParentGenerationID == nil || *child.ParentGenerationID != parent.GenerationID {
		t.Fatalf("child lineage wrong: %+v", child)
	}

	_, err = h.variation.Generate(ctx, uuid.New(), VariationInput{
		GenerationID: parent.GenerationID.String(),
		Platform:     platforms.Twitter,
		Styles:       []prompts.VariationStyle{"short"},
	})
	if codeOf(err) != apierr.CodeNotFound {
		t.Fatalf("foreign parent should be not found: %v", err)
	}

	free := uuid.New()
	_, err = h.variation.Generate(ctx, free, VariationInput{
		GenerationID: parent.GenerationID.String(),
		Platform:     platforms.Twitter,
		Styles:       []prompts.VariationStyle{"short", "long"},
	})
	if reasonOf(err) != ReasonVariationLimit {
		t.Fatalf("free plan allows one variation: %v", err)
	}
}

func TestBrandVoiceAnalyze(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	free := uuid.New()
	if _, err := h.brandVoice.Analyze(ctx, free, BrandVoiceInput{Samples: []string{"hello"}}); reasonOf(err) != ReasonFeatureUnavailable {
		t.Fatalf("free plan brand voice: %v", err)
	}

	pro := uuid.New()
	h.setPlan(t, pro, types.PlanPro, "")
	h.gen.fn = func(prompt string, opts router.Options) (router.Result, error) {
		return router.Result{Content: "Here it is:\n{\"tone\":\"calm\",\"strictness\":3}", Provider: "openai"}, nil
	}
	label := "  Company  "
	bv, err := h.brandVoice.Analyze(ctx, pro, BrandVoiceInput{Label: &label, Samples: []string{" one ", "two"}})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if bv.Style()["tone"] != "calm" || bv.Label == nil || *bv.Label != "Company" {
		t.Fatalf("brand voice=%+v style=%v", bv, bv.Style())
	}
	list, err := h.brandVoice.List(ctx, pro)
	if err != nil || len(list) != 1 {
		t.Fatalf("List: %v %v", list, err)
	}
	if err := h.brandVoice.Delete(ctx, pro, bv.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := h.brandVoice.Delete(ctx, pro, bv.ID); codeOf(err) != apierr.CodeNotFound {
		t.Fatalf("second delete: %v", err)
	}
}

func TestUsageSummaryAndHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	user := uuid.New()
	h.seedUsage(t, user, 2, fixedNow.Add(-2*time.Hour))

	sum, err := h.usage.Summary(ctx, user)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Plan != types.PlanFree || sum.DailyUsed != 2 || !sum.DayStart.Equal(time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("summary=%+v", sum)
	}

	res, err := h.generation.Generate(ctx, user, simple("x", platforms.Twitter))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	page, err := h.history.List(ctx, user, HistoryQuery{Limit: 500})
	if err != nil || page.Total != 1 || page.Limit != 100 || len(page.Items) != 1 {
		t.Fatalf("List: %+v %v", page, err)
	}
	if err := h.history.Delete(ctx, user, res.GenerationID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := h.history.Get(ctx, user, res.GenerationID); codeOf(err) != apierr.CodeNotFound {
		t.Fatalf("deleted record still visible: %v", err)
	}
}

func TestGeneratePersistFailureReturnsInternal(t *testing.T) {
	if os.Getenv("TEST_POSTGRES_DSN") != "" {
		t.Skip("drops a table on the shared database")
	}
	h := newHarness(t)
	user := uuid.New()
	if err := h.db.Migrator().DropTable(&types.GenerationRecord{}); err != nil {
		t.Fatalf("DropTable: %v", err)
	}

	res, err := h.generation.Generate(context.Background(), user, simple("Product launch", platforms.Twitter))
	if codeOf(err) != apierr.CodeInternal {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
	if res != nil {
		t.Fatalf("content returned after a failed save: %+v", res)
	}
	if h.gen.Calls() != 1 {
		t.Fatalf("provider calls=%d", h.gen.Calls())
	}
	var ae *apierr.Error
	if errors.As(err, &ae) && strings.Contains(ae.PublicMessage(), "post for twitter") {
		t.Fatalf("generated text leaked into the error: %q", ae.PublicMessage())
	}

	from, to := DayBounds(time.Now())
	n, err := h.usageRepo.CountBetween(dbctx.Context{Ctx: context.Background()}, user, from, to)
	if err != nil || n != 0 {
		t.Fatalf("usage events=%d err=%v", n, err)
	}
}
