package anthropic

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
)

const (
	Name           = "anthropic"
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
)

type Config struct {
	APIKey        string
	BaseURL       string
	PrimaryModel  string
	AnalysisModel string
	MaxTokens     int
}

type Engine struct {
	cfg        Config
	httpClient *http.Client
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func New(cfg Config) (*Engine, error) {
	return NewWithHTTPClient(cfg, engine.DefaultHTTPClient())
}

func NewWithHTTPClient(cfg Config, hc *http.Client) (*Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("anthropic: api key required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = "claude-3-5-sonnet-20240620"
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = "claude-3-haiku-20240307"
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 800
	}
	if hc == nil {
		hc = engine.DefaultHTTPClient()
	}
	return &Engine{cfg: cfg, httpClient: hc}, nil
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Model(mode engine.Mode) string {
	if mode == engine.ModePrimary {
		return e.cfg.PrimaryModel
	}
	return e.cfg.AnalysisModel
}

func (e *Engine) Complete(ctx context.Context, req engine.Request) (string, error) {
	model := req.Model
	if model == "" {
		model = e.cfg.AnalysisModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = e.cfg.MaxTokens
	}
	body := messagesRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    req.System,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
	}
	if req.Temperature > 0 {
		t := req.Temperature
		body.Temperature = &t
	}

	var out messagesResponse
	headers := map[string]string{
		"x-api-key":         e.cfg.APIKey,
		"anthropic-version": apiVersion,
	}
	if err := engine.PostJSON(ctx, e.httpClient, Name, e.cfg.BaseURL+"/v1/messages", headers, body, &out); err != nil {
		return "", err
	}
	if len(out.Content) == 0 {
		return "", engine.EmptyCompletion(Name)
	}
	text := strings.TrimSpace(out.Content[0].Text)
	if text == "" {
		return "", engine.EmptyCompletion(Name)
	}
	return text, nil
}
