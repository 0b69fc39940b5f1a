package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Error means a provider answered but the answer could not be used.
type Error struct {
	Platform string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e == nil {
		return "unusable provider output"
	}
	if e.Platform != "" {
		return fmt.Sprintf("unusable output for %s: %s", e.Platform, e.Reason)
	}
	return "unusable provider output: " + e.Reason
}

func (e *Error) Unwrap() error { return e.Err }

// Clean trims model chatter around a JSON object: code fences, any preamble before the
// first '{' and anything after the last '}'. Clean(Clean(s)) == Clean(s).
func Clean(raw string) string {
	s := stripFences(raw)
	if i := strings.IndexByte(s, '{'); i > 0 {
		s = s[i:]
	}
	if strings.HasPrefix(s, "{") {
		if j := strings.LastIndexByte(s, '}'); j >= 0 && j < len(s)-1 {
			s = s[:j+1]
		}
	}
	return s
}

// PlatformText returns the post text for platform from a cleaned JSON object.
// The value must be a non-blank JSON string.
func PlatformText(raw, platform string) (string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(Clean(raw)), &obj); err != nil {
		return "", &Error{Platform: platform, Reason: "invalid JSON", Err: err}
	}
	val, ok := obj[platform]
	if !ok {
		return "", &Error{Platform: platform, Reason: "missing key"}
	}
	var text string
	if err := json.Unmarshal(val, &text); err != nil {
		return "", &Error{Platform: platform, Reason: "value is not a string", Err: err}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", &Error{Platform: platform, Reason: "empty text"}
	}
	return text, nil
}

// Object decodes a cleaned JSON object.
func Object(raw string) (map[string]any, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(Clean(raw)), &obj); err != nil {
		return nil, &Error{Reason: "invalid JSON", Err: err}
	}
	if obj == nil {
		return nil, &Error{Reason: "not an object"}
	}
	return obj, nil
}

// PlainText strips fences from a free-text answer.
func PlainText(raw string) (string, error) {
	s := stripFences(raw)
	if s == "" {
		return "", &Error{Reason: "empty text"}
	}
	return s, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	for strings.HasPrefix(s, "```") {
		nl := strings.IndexByte(s, '\n')
		if nl == -1 {
			s = strings.TrimSpace(strings.Trim(s, "`"))
			break
		}
		s = s[nl+1:]
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}
	return s
}
