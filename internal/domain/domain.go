package domain

import (
	"github.com/yungbote/idea2sns-backend/internal/domain/account"
	"github.com/yungbote/idea2sns-backend/internal/domain/generation"
)

type (
	GenerationRecord  = generation.Record
	GenerationRequest = generation.Request
	SimpleRequest     = generation.SimpleRequest
	BlogRequest       = generation.BlogRequest
	RequestKind       = generation.RequestKind
	Output            = generation.Output
	Outputs           = generation.Outputs

	Profile       = account.Profile
	Plan          = account.Plan
	PlanLimits    = account.PlanLimits
	Entitlements  = account.Entitlements
	UsageEvent    = account.UsageEvent
	UsageKind     = account.UsageKind
	BrandVoice    = account.BrandVoice
	SocialAccount = account.SocialAccount
)

const (
	KindSimple = generation.KindSimple
	KindBlog   = generation.KindBlog

	SourceIdea = generation.SourceIdea
	SourceBlog = generation.SourceBlog

	VariantOriginal  = generation.VariantOriginal
	VariantVariation = generation.VariantVariation

	PlanFree = account.PlanFree
	PlanPro  = account.PlanPro

	UsageGeneratePost       = account.UsageGeneratePost
	UsageBlogToSNS          = account.UsageBlogToSNS
	UsageVariation          = account.UsageVariation
	UsageBrandVoiceAnalysis = account.UsageBrandVoiceAnalysis
)

func ParsePlan(s string) (Plan, error) { return account.ParsePlan(s) }

// Models lists every table owned by this service, in migration order.
func Models() []any {
	return []any{
		&account.Profile{},
		&account.UsageEvent{},
		&account.BrandVoice{},
		&account.SocialAccount{},
		&generation.Record{},
	}
}
