package prompts

import (
	"fmt"
	"strings"
)

// BrandVoiceAnalysis asks for a JSON summary of the voice traits shared by samples.
func BrandVoiceAnalysis(samples []string) string {
	parts := make([]string, 0, len(samples))
	for i, s := range samples {
		parts = append(parts, fmt.Sprintf("Sample %d:\n%s", i+1, s))
	}
	var b strings.Builder
	b.WriteString("You are an expert linguist and brand voice analyst. Analyze the provided writing samples and extract a concise JSON summary of the brand voice traits.")
	b.WriteString("\nFocus on reusable patterns, not specific content. Avoid hallucinations.")
	fmt.Fprintf(&b, "\nSamples:\n%s\n", strings.Join(parts, "\n\n"))
	b.WriteString("Return strict JSON with this shape:\n")
	b.WriteString(`{
  "tone": string, // tone adjectives and mood
  "sentenceStyle": string, // sentence length, structure, cadence
  "vocabulary": string, // notable vocabulary patterns, jargon, or phrasing
  "format": string, // formatting preferences (bullets, line breaks, emojis)
  "strictness": number // 0-1 representing how strictly to enforce this voice
}`)
	b.WriteString("\nDo not include any other commentary. Respond with JSON only.")
	return b.String()
}
