package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yungbote/idea2sns-backend/internal/platform/httpx"
)

const maxMessageLen = 300

// Error is a failed provider call. Status 0 means the request never got an HTTP answer.
type Error struct {
	Provider   string
	Status     int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return "provider error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s: status=%d %s", e.Provider, e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) HTTPStatusCode() int { return e.Status }

// Transient reports whether retrying the same provider could succeed.
func (e *Error) Transient() bool {
	if e == nil {
		return false
	}
	return e.Status == 0 || httpx.IsRetryableHTTPStatus(e.Status)
}

// NewError builds an Error with a cleaned, truncated message.
func NewError(provider string, status int, message string, cause error) *Error {
	return &Error{Provider: provider, Status: status, Message: Truncate(message), Err: cause}
}

// EmptyCompletion is returned when a provider answers 2xx with no usable text.
func EmptyCompletion(provider string) *Error {
	return NewError(provider, 502, "empty completion", nil)
}

// FromError normalizes any failure from a provider call into an *Error.
func FromError(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	var sc httpx.HTTPStatusCoder
	if errors.As(err, &sc) {
		return NewError(provider, sc.HTTPStatusCode(), err.Error(), err)
	}
	if httpx.IsRetryableError(err) {
		return NewError(provider, 0, "timeout", err)
	}
	return NewError(provider, 0, err.Error(), err)
}

// Truncate collapses whitespace and caps s so upstream bodies stay log-sized.
func Truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= maxMessageLen {
		return s
	}
	cut := maxMessageLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
