package gemini

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
)

const Name = "gemini"

type Config struct {
	APIKey        string
	BaseURL       string
	PrimaryModel  string
	AnalysisModel string
	Temperature   float64
}

type Engine struct {
	cfg    Config
	client *genai.Client
}

func New(cfg Config) (*Engine, error) {
	return NewWithHTTPClient(cfg, engine.DefaultHTTPClient())
}

func NewWithHTTPClient(cfg Config, hc *http.Client) (*Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gemini: api key required")
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = "gemini-pro"
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = "gemini-flash-lite"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.6
	}
	if hc == nil {
		hc = engine.DefaultHTTPClient()
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL + "/"}
	}
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, client: client}, nil
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
	temp := req.Temperature
	if temp == 0 {
		temp = e.cfg.Temperature
	}
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(temp)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.JSON {
		gc.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := e.client.Models.GenerateContent(ctx, model, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", apiError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", engine.EmptyCompletion(Name)
	}
	return text, nil
}

// apiError keeps the upstream status so the router can tell 429/5xx from 4xx.
func apiError(err error) *engine.Error {
	var ae genai.APIError
	if errors.As(err, &ae) {
		return engine.NewError(Name, ae.Code, ae.Message, err)
	}
	var pae *genai.APIError
	if errors.As(err, &pae) && pae != nil {
		return engine.NewError(Name, pae.Code, pae.Message, err)
	}
	return engine.FromError(Name, err)
}
