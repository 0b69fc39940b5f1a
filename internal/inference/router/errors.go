package router

import (
	"strconv"
	"strings"
)

type ProviderFailure struct {
	Provider string `json:"provider"`
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Attempts int    `json:"attempts"`
}

// AggregatedError is returned when no provider produced text.
// Err is set when the caller's context ended the loop early.
type AggregatedError struct {
	Failures []ProviderFailure
	Err      error
}

func (e *AggregatedError) Error() string {
	if e == nil || len(e.Failures) == 0 {
		if e != nil && e.Err != nil {
			return "all providers failed: " + e.Err.Error()
		}
		return "all providers failed: no providers configured"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		if f.Status == 0 {
			parts = append(parts, f.Provider+": "+f.Message)
			continue
		}
		parts = append(parts, f.Provider+": status="+strconv.Itoa(f.Status)+" "+f.Message)
	}
	return "all providers failed: " + strings.Join(parts, " | ")
}

func (e *AggregatedError) Unwrap() error { return e.Err }

// Providers lists the providers that failed, in order.
func (e *AggregatedError) Providers() []string {
	if e == nil {
		return nil
	}
	out := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		out = append(out, f.Provider)
	}
	return out
}
