package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
	"github.com/yungbote/idea2sns-backend/internal/observability"
	"github.com/yungbote/idea2sns-backend/internal/platform/httpx"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type Config struct {
	// MaxAttempts is the number of tries per provider, counting the first.
	MaxAttempts int
	Backoff     time.Duration
	MaxBackoff  time.Duration
	CallTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 2
	}
	if c.Backoff <= 0 {
		c.Backoff = 500 * time.Millisecond
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 5 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 20 * time.Second
	}
	return c
}

type Options struct {
	Mode           engine.Mode
	PreferProvider string
	PreferModel    string
	System         string
	Temperature    float64
	MaxTokens      int
	JSON           bool
}

type Result struct {
	Content  string
	Provider string
	Model    string
	Attempts int
	// Fallback is true when the first provider in the order did not serve the result.
	Fallback bool
}

type Router struct {
	engines []engine.Engine
	cfg     Config
	log     *logger.Logger
	metrics *observability.Metrics
	sleep   func(ctx context.Context, d time.Duration) error
}

// New builds a router over engines in fallback order. m may be nil, in which case
// the process-wide registry is used.
func New(engines []engine.Engine, cfg Config, log *logger.Logger, m *observability.Metrics) (*Router, error) {
	if log == nil {
		log = logger.Nop()
	}
	seen := map[string]bool{}
	for _, e := range engines {
		if e == nil {
			return nil, errors.New("router: nil engine")
		}
		if seen[e.Name()] {
			return nil, fmt.Errorf("router: duplicate engine %q", e.Name())
		}
		seen[e.Name()] = true
	}
	if m == nil {
		m = observability.Current()
	}
	return &Router{
		engines: engines,
		cfg:     cfg.withDefaults(),
		log:     log.With("component", "GenerationRouter"),
		metrics: m,
		sleep:   httpx.Sleep,
	}, nil
}

// Providers lists engine names in fallback order.
func (r *Router) Providers() []string {
	out := make([]string, 0, len(r.engines))
	for _, e := range r.engines {
		out = append(out, e.Name())
	}
	return out
}

// Generate tries each provider in order until one returns text.
func (r *Router) Generate(ctx context.Context, prompt string, opts Options) (Result, error) {
	if opts.Mode == "" {
		opts.Mode = engine.ModeAnalysis
	}
	order := r.order(opts.PreferProvider)
	agg := &AggregatedError{}
	if len(order) == 0 {
		return Result{}, agg
	}

	attempts := 0
	for i, eng := range order {
		model := eng.Model(opts.Mode)
		if opts.PreferModel != "" && strings.EqualFold(eng.Name(), opts.PreferProvider) {
			model = opts.PreferModel
		}
		req := engine.Request{
			System:      opts.System,
			Prompt:      prompt,
			Model:       model,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
			JSON:        opts.JSON,
		}

		text, tries, perr := r.tryEngine(ctx, eng, req)
		attempts += tries
		if perr == nil {
			res := Result{Content: text, Provider: eng.Name(), Model: model, Attempts: attempts, Fallback: i > 0}
			if res.Fallback {
				r.metrics.IncLLMFallback(eng.Name())
				r.log.Info("generation served by fallback provider",
					"provider", eng.Name(),
					"model", model,
					"attempts", attempts,
					"failed", agg.Providers(),
				)
			}
			return res, nil
		}
		agg.Failures = append(agg.Failures, ProviderFailure{
			Provider: eng.Name(),
			Status:   perr.Status,
			Message:  perr.Message,
			Attempts: tries,
		})
		if ctx.Err() != nil {
			agg.Err = ctx.Err()
			return Result{}, agg
		}
	}
	return Result{}, agg
}

// tryEngine runs up to MaxAttempts calls against one engine.
func (r *Router) tryEngine(ctx context.Context, eng engine.Engine, req engine.Request) (string, int, *engine.Error) {
	var last *engine.Error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			wait := httpx.JitterSleep(httpx.Backoff(r.cfg.Backoff, attempt-1))
			if last != nil && last.RetryAfter > 0 {
				wait = last.RetryAfter
			}
			if wait > r.cfg.MaxBackoff {
				wait = r.cfg.MaxBackoff
			}
			r.log.Warn("retrying provider", "provider", eng.Name(), "attempt", attempt+1, "status", last.Status, "sleep", wait)
			if err := r.sleep(ctx, wait); err != nil {
				return "", attempt, last
			}
		}

		text, err := r.call(ctx, eng, req, attempt+1)
		if err == nil {
			return text, attempt + 1, nil
		}
		last = err
		if ctx.Err() != nil {
			last = engine.NewError(eng.Name(), 0, "request deadline exceeded", ctx.Err())
			return "", attempt + 1, last
		}
		if !err.Transient() {
			return "", attempt + 1, last
		}
	}
	return "", r.cfg.MaxAttempts, last
}

func (r *Router) call(ctx context.Context, eng engine.Engine, req engine.Request, attempt int) (string, *engine.Error) {
	callCtx, cancel := context.WithTimeout(ctx, r.cfg.CallTimeout)
	defer cancel()
	callCtx, span := observability.Tracer().Start(callCtx, "llm.complete")
	span.SetAttributes(
		attribute.String("llm.provider", eng.Name()),
		attribute.String("llm.model", req.Model),
		attribute.Int("llm.attempt", attempt),
	)
	defer span.End()

	start := time.Now()
	text, err := eng.Complete(callCtx, req)
	if err == nil && strings.TrimSpace(text) == "" {
		err = engine.EmptyCompletion(eng.Name())
	}
	dur := time.Since(start)
	if err != nil {
		pe := engine.FromError(eng.Name(), err)
		r.metrics.ObserveLLMAttempt(eng.Name(), req.Model, pe.Status, false, dur)
		span.RecordError(pe)
		span.SetStatus(codes.Error, pe.Message)
		span.SetAttributes(attribute.String("llm.status", strconv.Itoa(pe.Status)))
		r.log.Warn("provider call failed",
			"provider", eng.Name(),
			"model", req.Model,
			"attempt", attempt,
			"status", pe.Status,
			"error", pe.Message,
			"duration_ms", dur.Milliseconds(),
		)
		return "", pe
	}
	r.metrics.ObserveLLMAttempt(eng.Name(), req.Model, 200, true, dur)
	return text, nil
}

// order returns engines with prefer moved to the front.
func (r *Router) order(prefer string) []engine.Engine {
	prefer = strings.ToLower(strings.TrimSpace(prefer))
	if prefer == "" {
		return r.engines
	}
	out := make([]engine.Engine, 0, len(r.engines))
	for _, e := range r.engines {
		if strings.EqualFold(e.Name(), prefer) {
			out = append(out, e)
		}
	}
	for _, e := range r.engines {
		if !strings.EqualFold(e.Name(), prefer) {
			out = append(out, e)
		}
	}
	return out
}
