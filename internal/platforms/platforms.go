package platforms

import (
	"fmt"
	"strings"
)

type Platform string

const (
	Twitter  Platform = "twitter"
	LinkedIn Platform = "linkedin"
	Threads  Platform = "threads"
	Reddit   Platform = "reddit"
)

var all = []Platform{Twitter, LinkedIn, Threads, Reddit}

var rules = map[Platform]string{
	Twitter:  "- Max 280 characters.\n- Punchy, direct.\n- 1-2 relevant hashtags.\n- Optional subtle CTA or question.",
	LinkedIn: "- Professional tone, value-driven.\n- Share insights or expertise.\n- 1-3 paragraphs.\n- Industry-relevant hashtags.",
	Threads:  "- Conversational, first-person.\n- Multi-line friendly.\n- Encourage replies.\n- Keep it light.",
	Reddit:   "- Community-focused, authentic voice.\n- Title should be engaging and clear.\n- Body text can be longer, detailed.\n- Avoid promotional language.\n- Match subreddit culture and norms.",
}

// Hint is a preferred provider/model pairing for a platform.
type Hint struct {
	Provider string
	Model    string
}

var hints = map[Platform]Hint{
	Twitter:  {Provider: "anthropic", Model: "claude-3-5-sonnet-latest"},
	LinkedIn: {Provider: "openai", Model: "gpt-4.1-mini"},
	Threads:  {Provider: "openai", Model: "gpt-4.1-mini"},
	Reddit:   {Provider: "openai", Model: "gpt-4.1-mini"},
}

// All returns the canonical platforms in display order.
func All() []Platform {
	out := make([]Platform, len(all))
	copy(out, all)
	return out
}

func (p Platform) Valid() bool {
	_, ok := rules[p]
	return ok
}

func (p Platform) String() string { return string(p) }

func Parse(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown platform %q", s)
	}
	return p, nil
}

// RulesFor returns the style rule of every requested platform.
func RulesFor(ps []Platform) (map[Platform]string, error) {
	out := make(map[Platform]string, len(ps))
	for _, p := range ps {
		r, ok := rules[p]
		if !ok {
			return nil, fmt.Errorf("unknown platform %q", p)
		}
		out[p] = r
	}
	return out, nil
}

func ModelHint(p Platform) (Hint, bool) {
	h, ok := hints[p]
	return h, ok
}
