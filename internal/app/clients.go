package app

import (
	"fmt"
	"strings"

	"github.com/yungbote/idea2sns-backend/internal/clients/redis"
	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
	"github.com/yungbote/idea2sns-backend/internal/inference/engine/anthropic"
	"github.com/yungbote/idea2sns-backend/internal/inference/engine/gemini"
	"github.com/yungbote/idea2sns-backend/internal/inference/engine/mock"
	"github.com/yungbote/idea2sns-backend/internal/inference/engine/openai"
	"github.com/yungbote/idea2sns-backend/internal/inference/router"
	"github.com/yungbote/idea2sns-backend/internal/observability"
	"github.com/yungbote/idea2sns-backend/internal/platform/logger"
)

type Clients struct {
	LimitsCache redis.LimitsCache
	LLM         *router.Router
}

func wireClients(log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	// Redis
	var cache redis.LimitsCache
	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		c, err := redis.NewLimitsCache(log, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.LimitsCacheTTL.Duration)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis limits cache: %w", err)
		}
		cache = c
	}

	// LLM providers
	engines, err := buildEngines(cfg.LLM)
	if err != nil {
		return Clients{}, err
	}
	llm, err := router.New(engines, router.Config{
		MaxAttempts: cfg.LLM.MaxAttempts,
		Backoff:     cfg.LLM.RetryBackoff.Duration,
		CallTimeout: cfg.LLM.CallTimeout.Duration,
	}, log, metrics)
	if err != nil {
		return Clients{}, fmt.Errorf("init generation router: %w", err)
	}
	log.Info("generation providers", "order", strings.Join(llm.Providers(), ","))

	return Clients{LimitsCache: cache, LLM: llm}, nil
}

// buildEngines returns the credentialed providers in the configured order. LLM_MOCK
// replaces them all with the offline engine.
func buildEngines(cfg LLMConfig) ([]engine.Engine, error) {
	if cfg.Mock {
		return []engine.Engine{mock.New()}, nil
	}
	var out []engine.Engine
	seen := map[string]bool{}
	for _, name := range cfg.ProviderOrder {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		var (
			eng engine.Engine
			err error
		)
		switch name {
		case openai.Name:
			if cfg.OpenAI.APIKey == "" {
				continue
			}
			eng, err = openai.New(openai.Config{
				APIKey:        cfg.OpenAI.APIKey,
				BaseURL:       cfg.OpenAI.BaseURL,
				PrimaryModel:  cfg.OpenAI.PrimaryModel,
				AnalysisModel: cfg.OpenAI.AnalysisModel,
			})
		case anthropic.Name:
			if cfg.Anthropic.APIKey == "" {
				continue
			}
			eng, err = anthropic.New(anthropic.Config{
				APIKey:        cfg.Anthropic.APIKey,
				BaseURL:       cfg.Anthropic.BaseURL,
				PrimaryModel:  cfg.Anthropic.PrimaryModel,
				AnalysisModel: cfg.Anthropic.AnalysisModel,
			})
		case gemini.Name:
			if cfg.Gemini.APIKey == "" {
				continue
			}
			eng, err = gemini.New(gemini.Config{
				APIKey:        cfg.Gemini.APIKey,
				BaseURL:       cfg.Gemini.BaseURL,
				PrimaryModel:  cfg.Gemini.PrimaryModel,
				AnalysisModel: cfg.Gemini.AnalysisModel,
			})
		case mock.Name:
			eng = mock.New()
		default:
			return nil, fmt.Errorf("unknown LLM provider %q in LLM_PROVIDER_ORDER", name)
		}
		if err != nil {
			return nil, fmt.Errorf("init %s engine: %w", name, err)
		}
		out = append(out, eng)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no LLM provider has credentials for order %v", cfg.ProviderOrder)
	}
	return out, nil
}
