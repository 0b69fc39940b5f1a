package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/api/generate-post", "200", 120*time.Millisecond)
	m.ObserveLLMAttempt("openai", "gpt-4.1", 503, false, time.Second)
	m.ObserveLLMAttempt("anthropic", "claude", 0, true, time.Second)
	m.IncLLMFallback("anthropic")
	m.IncQuotaRejection("daily_limit")

	var buf bytes.Buffer
	if err := m.WritePrometheus(&buf); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`api_requests_total{method="POST",route="/api/generate-post",status="200"} 1.000000`,
		`llm_provider_requests_total{provider="openai",model="gpt-4.1",status="503"} 1.000000`,
		`llm_provider_requests_total{provider="anthropic",model="claude",status="ok"} 1.000000`,
		`llm_fallback_total{provider="anthropic"} 1.000000`,
		`quota_rejections_total{reason="daily_limit"} 1.000000`,
		`api_request_duration_seconds_bucket{method="POST",route="/api/generate-post",status="200",le="+Inf"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if m.LLMFallbacks("anthropic") != 1 || m.QuotaRejections("daily_limit") != 1 {
		t.Fatalf("accessors disagree with exposition")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveLLMAttempt("p", "m", 500, false, time.Millisecond)
	m.IncLLMFallback("p")
	m.ObserveGeneration("idea", "ok")
	m.IncQuotaRejection("x")
	if m.LLMRequests("p", "m", "500") != 0 {
		t.Fatalf("nil metrics should read zero")
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a"}, []string{"x\"y\n"})
	if got != `{a="x\"y\n"}` {
		t.Fatalf("got %s", got)
	}
	if withLe("", "1") != `{le="1"}` {
		t.Fatalf("withLe empty labels")
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders(" api-key = abc ,broken, x=")
	if len(got) != 1 || got["api-key"] != "abc" {
		t.Fatalf("got %v", got)
	}
	if parseHeaders("") != nil {
		t.Fatalf("empty should be nil")
	}
}
