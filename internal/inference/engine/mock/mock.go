package mock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/idea2sns-backend/internal/inference/engine"
	"github.com/yungbote/idea2sns-backend/internal/platforms"
)

const Name = "mock"

// Engine answers offline with deterministic text shaped like the real providers' output.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) Name() string { return Name }

func (e *Engine) Model(mode engine.Mode) string { return "mock-" + string(mode) }

func (e *Engine) Complete(ctx context.Context, req engine.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", engine.FromError(Name, err)
	}
	prompt := req.Prompt
	tag := digest(prompt)

	switch {
	case strings.Contains(prompt, "Return ONLY the rewritten text"):
		return fmt.Sprintf("mock variation %s", tag), nil
	case strings.Contains(prompt, "brand voice analyst"):
		b, _ := json.Marshal(map[string]any{
			"tone":          "friendly",
			"sentenceStyle": "short sentences",
			"vocabulary":    "plain words",
			"format":        "line breaks",
			"strictness":    0.5,
		})
		return string(b), nil
	}

	out := map[string]string{}
	for _, p := range platforms.All() {
		if strings.Contains(prompt, `"`+string(p)+`"`) {
			out[string(p)] = fmt.Sprintf("mock %s post %s", p, tag)
		}
	}
	if len(out) == 0 {
		return "mock: ok", nil
	}
	b, _ := json.Marshal(out)
	return "```json\n" + string(b) + "\n```", nil
}

func digest(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:4])
}
