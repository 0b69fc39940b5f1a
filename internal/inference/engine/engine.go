package engine

import "context"

// Mode picks which of a provider's configured models a call should use.
type Mode string

const (
	// ModePrimary is the provider's strongest model, used for priority routing.
	ModePrimary Mode = "primary"
	// ModeAnalysis is the cheaper model used for default routing and analysis calls.
	ModeAnalysis Mode = "analysis"
)

type Request struct {
	System      string
	Prompt      string
	Model       string
	Temperature float64
	MaxTokens   int
	// JSON asks for a JSON object answer on providers that support a response format.
	JSON        bool
}

// Engine is one upstream text-generation provider.
type Engine interface {
	Name() string
	Model(mode Mode) string
	Complete(ctx context.Context, req Request) (string, error)
}
