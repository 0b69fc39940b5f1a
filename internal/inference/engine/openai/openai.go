package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
	"github.com/yungbote/idea2sns-backend/internal/platform/httpx"
)

const Name = "openai"

type Config struct {
	APIKey        string
	BaseURL       string
	PrimaryModel  string
	AnalysisModel string
	Temperature   float64
}

type Engine struct {
	client oai.Client
	cfg    Config
}

func New(cfg Config) (*Engine, error) {
	return NewWithHTTPClient(cfg, nil)
}

// NewWithHTTPClient lets tests point the SDK at a fake transport.
func NewWithHTTPClient(cfg Config, hc *http.Client) (*Engine, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key required")
	}
	if cfg.PrimaryModel == "" {
		cfg.PrimaryModel = "gpt-4.1"
	}
	if cfg.AnalysisModel == "" {
		cfg.AnalysisModel = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.6
	}

	// Retries belong to the router, so the SDK's own retry loop is off.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")+"/"))
	}
	if hc != nil {
		opts = append(opts, option.WithHTTPClient(hc))
	}
	return &Engine{client: oai.NewClient(opts...), cfg: cfg}, nil
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

	msgs := make([]oai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		msgs = append(msgs, oai.SystemMessage(req.System))
	}
	msgs = append(msgs, oai.UserMessage(req.Prompt))

	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(model),
		Messages:    msgs,
		Temperature: oai.Float(temp),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = oai.Int(int64(req.MaxTokens))
	}
	if req.JSON {
		params.ResponseFormat = oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &oai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", wrapError(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", engine.EmptyCompletion(Name)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", engine.EmptyCompletion(Name)
	}
	return text, nil
}

func wrapError(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = http.StatusText(apiErr.StatusCode)
		}
		out := engine.NewError(Name, apiErr.StatusCode, msg, err)
		out.RetryAfter = httpx.RetryAfterDuration(apiErr.Response, 0, 0)
		return out
	}
	return engine.FromError(Name, err)
}
