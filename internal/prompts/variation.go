package prompts

import (
	"fmt"
	"strings"

	"github.com/yungbote/idea2sns-backend/internal/domain/account"
)

type VariationStyle string

const (
	StyleShort     VariationStyle = "short"
	StyleLong      VariationStyle = "long"
	StyleCasual    VariationStyle = "casual"
	StyleFormal    VariationStyle = "formal"
	StyleHookFirst VariationStyle = "hook-first"
	StyleEmotional VariationStyle = "emotional"
)

var styleDirectives = map[VariationStyle]string{
	StyleShort:     "Create a tighter, more concise version.",
	StyleLong:      "Expand with more detail while staying focused.",
	StyleCasual:    "Rewrite in a warmer, conversational tone.",
	StyleFormal:    "Rewrite in a polished, formal tone.",
	StyleHookFirst: "Start with a strong hook, then deliver the core message.",
	StyleEmotional: "Amplify emotional resonance and feeling without exaggeration.",
}

func (s VariationStyle) Valid() bool {
	_, ok := styleDirectives[s]
	return ok
}

// Variation asks for a single plain-text rewrite of baseText.
func Variation(baseText string, style VariationStyle, bv *account.BrandVoice) (string, error) {
	directive, ok := styleDirectives[style]
	if !ok {
		return "", fmt.Errorf("unknown variation style %q", style)
	}
	var b strings.Builder
	b.WriteString("You are an expert social content editor. Produce a single rewritten variation in plain text only.")
	b.WriteString(brandVoiceCue("\nMatch this brand voice: ", bv))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Base text: %s\n", baseText)
	fmt.Fprintf(&b, "Style: %s\n", directive)
	b.WriteString("Return ONLY the rewritten text with no JSON, no labels, and no commentary.")
	return b.String(), nil
}
