package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/idea2sns-backend/internal/domain/account"
	"github.com/yungbote/idea2sns-backend/internal/domain/generation"
	"github.com/yungbote/idea2sns-backend/internal/platforms"
)

// SystemPrompt is sent as the system message on every completion.
const SystemPrompt = "Return concise, well-structured answers."

// Build renders the single upstream prompt for a generation request. Output is a pure
// function of the inputs; encoding/json sorts map keys.
func Build(req generation.Request, rules map[platforms.Platform]string, bv *account.BrandVoice) (string, error) {
	rulesJSON, err := json.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("encode platform rules: %w", err)
	}
	cue := brandVoiceCue("\nBrand voice hints (apply across all outputs): ", bv)

	switch r := req.(type) {
	case *generation.SimpleRequest:
		var b strings.Builder
		b.WriteString("You are an expert social media strategist. Generate JSON with one entry per requested platform key, each containing\n")
		b.WriteString("a platform-optimized post.\n")
		fmt.Fprintf(&b, "Rules per platform (strictly follow): %s%s\n", rulesJSON, cue)
		b.WriteString("Input:\n")
		fmt.Fprintf(&b, "- Topic: %s\n", strings.TrimSpace(r.Topic))
		fmt.Fprintf(&b, "- Supporting content: %s\n", strings.TrimSpace(r.Content))
		fmt.Fprintf(&b, "- Tone: %s\n", strings.TrimSpace(r.Tone))
		fmt.Fprintf(&b, "- Platforms: %s.\n", joinPlatforms(r.Platforms))
		b.WriteString(`Return JSON: { "platform": "post text" } with exactly the requested platform keys and nothing else.`)
		return b.String(), nil
	case *generation.BlogRequest:
		var b strings.Builder
		b.WriteString("You are an expert social media strategist. Convert the following blog content into platform-optimized posts.\n")
		fmt.Fprintf(&b, "Rules per platform: %s%s\n", rulesJSON, cue)
		fmt.Fprintf(&b, "Blog content:\n%s\n", r.BlogContent)
		b.WriteString(`Return JSON: { "platform": "post text" } with exactly the requested platform keys and nothing else.`)
		return b.String(), nil
	default:
		return "", fmt.Errorf("unsupported request type %T", req)
	}
}

func brandVoiceCue(prefix string, bv *account.BrandVoice) string {
	style := bv.Style()
	if style == nil {
		return ""
	}
	raw, err := json.Marshal(style)
	if err != nil {
		return ""
	}
	return prefix + string(raw)
}

func joinPlatforms(ps []platforms.Platform) string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, string(p))
	}
	return strings.Join(names, ", ")
}
