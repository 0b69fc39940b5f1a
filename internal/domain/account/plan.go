package account

import (
	"encoding/json"
	"fmt"
)

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case PlanFree, PlanPro:
		return Plan(s), nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// PlanLimits are the effective limits of one user. A nil numeric limit means unlimited.
type PlanLimits struct {
	DailyGenerations       *int `json:"daily_generations"`
	MaxPlatformsPerRequest *int `json:"max_platforms_per_request"`
	BlogToSNS              bool `json:"blog_to_sns"`
	MaxBlogLength          *int `json:"max_blog_length"`
	VariationsPerRequest   *int `json:"variations_per_request"`
	PriorityRouting        bool `json:"priority_routing"`
	BrandVoice             bool `json:"brand_voice"`
}

func FreeLimits() PlanLimits {
	return PlanLimits{
		DailyGenerations:       intPtr(5),
		MaxPlatformsPerRequest: intPtr(3),
		BlogToSNS:              true,
		MaxBlogLength:          intPtr(2000),
		VariationsPerRequest:   intPtr(1),
		PriorityRouting:        false,
		BrandVoice:             false,
	}
}

func ProLimits() PlanLimits {
	return PlanLimits{
		DailyGenerations:       nil,
		MaxPlatformsPerRequest: intPtr(3),
		BlogToSNS:              true,
		MaxBlogLength:          nil,
		VariationsPerRequest:   intPtr(5),
		PriorityRouting:        true,
		BrandVoice:             true,
	}
}

func PresetFor(p Plan) PlanLimits {
	if p == PlanPro {
		return ProLimits()
	}
	return FreeLimits()
}

// ResolveLimits merges the plan preset with a per-user override object. Keys present in the
// overrides win; an explicit JSON null on a numeric key means unlimited.
func ResolveLimits(p Plan, overrides []byte) (PlanLimits, error) {
	out := PresetFor(p)
	if len(overrides) == 0 {
		return out, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(overrides, &raw); err != nil {
		return out, fmt.Errorf("decode limit overrides: %w", err)
	}
	if raw == nil {
		return out, nil
	}
	ints := map[string]**int{
		"daily_generations":         &out.DailyGenerations,
		"max_platforms_per_request": &out.MaxPlatformsPerRequest,
		"max_blog_length":           &out.MaxBlogLength,
		"variations_per_request":    &out.VariationsPerRequest,
	}
	for key, dst := range ints {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var n *int
		if err := json.Unmarshal(v, &n); err != nil {
			return out, fmt.Errorf("limit %s: %w", key, err)
		}
		*dst = n
	}
	bools := map[string]*bool{
		"blog_to_sns":      &out.BlogToSNS,
		"priority_routing": &out.PriorityRouting,
		"brand_voice":      &out.BrandVoice,
	}
	for key, dst := range bools {
		v, ok := raw[key]
		if !ok {
			continue
		}
		var b *bool
		if err := json.Unmarshal(v, &b); err != nil {
			return out, fmt.Errorf("limit %s: %w", key, err)
		}
		if b != nil {
			*dst = *b
		}
	}
	return out, nil
}

func intPtr(v int) *int { return &v }

// Entitlements is a user's plan tier together with the limits resolved for it.
type Entitlements struct {
	Plan   Plan       `json:"plan"`
	Limits PlanLimits `json:"limits"`
}
