package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func TestCompleteSendsMessagesRequest(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if req.URL.Path != "/v1/messages" {
				t.Fatalf("unexpected path: %s", req.URL.Path)
			}
			if req.Header.Get("x-api-key") != "ak" || req.Header.Get("anthropic-version") != apiVersion {
				t.Fatalf("missing auth headers: %v", req.Header)
			}
			var in messagesRequest
			if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
				t.Fatalf("decode req: %v", err)
			}
			if in.Model != "claude-3-haiku-20240307" || in.MaxTokens != 800 || in.System != "sys" {
				t.Fatalf("unexpected request: %+v", in)
			}
			if len(in.Messages) != 1 || in.Messages[0].Role != "user" || in.Messages[0].Content != "prompt" {
				t.Fatalf("unexpected messages: %+v", in.Messages)
			}
			b := []byte(`{"content":[{"type":"text","text":"hello"}]}`)
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(b))}, nil
		}),
	}
	e, err := NewWithHTTPClient(Config{APIKey: "ak", BaseURL: "http://upstream"}, client)
	if err != nil {
		t.Fatalf("NewWithHTTPClient: %v", err)
	}
	out, err := e.Complete(context.Background(), engine.Request{System: "sys", Prompt: "prompt", Model: e.Model(engine.ModeAnalysis)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "hello" {
		t.Fatalf("out=%q", out)
	}
}

func TestCompleteRateLimitedCarriesRetryAfter(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			b := []byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
			return &http.Response{
				StatusCode: http.StatusTooManyRequests,
				Header:     http.Header{"Retry-After": []string{"2"}},
				Body:       io.NopCloser(bytes.NewReader(b)),
			}, nil
		}),
	}
	e, _ := NewWithHTTPClient(Config{APIKey: "ak", BaseURL: "http://upstream"}, client)
	_, err := e.Complete(context.Background(), engine.Request{Prompt: "p"})
	var pe *engine.Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *engine.Error, got %v", err)
	}
	if pe.Status != http.StatusTooManyRequests || pe.Message != "slow down" || pe.RetryAfter != 2*time.Second {
		t.Fatalf("unexpected error: %+v", pe)
	}
	if !pe.Transient() {
		t.Fatalf("429 should be transient")
	}
}

func TestCompleteEmptyContent(t *testing.T) {
	client := &http.Client{
		Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader([]byte(`{"content":[]}`)))}, nil
		}),
	}
	e, _ := NewWithHTTPClient(Config{APIKey: "ak", BaseURL: "http://upstream"}, client)
	_, err := e.Complete(context.Background(), engine.Request{Prompt: "p"})
	var pe *engine.Error
	if !errors.As(err, &pe) || pe.Message != "empty completion" {
		t.Fatalf("expected empty completion, got %v", err)
	}
}
