package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFromErrorClassifiesFailures(t *testing.T) {
	timeout := FromError("openai", fmt.Errorf("call: %w", context.DeadlineExceeded))
	if timeout.Status != 0 || timeout.Message != "timeout" || !timeout.Transient() {
		t.Fatalf("deadline not mapped to transient timeout: %+v", timeout)
	}

	orig := NewError("gemini", 400, "bad", nil)
	if got := FromError("gemini", fmt.Errorf("wrap: %w", orig)); got != orig {
		t.Fatalf("existing *Error not preserved")
	}
	if orig.Transient() {
		t.Fatalf("400 must not be transient")
	}

	if FromError("x", nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}

func TestTruncateCollapsesAndCaps(t *testing.T) {
	long := strings.Repeat("a ", 400)
	got := Truncate(long)
	if len(got) != maxMessageLen+3 || !strings.HasSuffix(got, "...") {
		t.Fatalf("len=%d", len(got))
	}
	if Truncate("a\n\n b") != "a b" {
		t.Fatalf("whitespace not collapsed")
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	got := Truncate("a" + strings.Repeat("한", 200))
	if !utf8.ValidString(got) {
		t.Fatalf("split a rune: %q", got)
	}
	if !strings.HasSuffix(got, "...") || len(got) > maxMessageLen+3 {
		t.Fatalf("len=%d", len(got))
	}
}

func TestEmptyCompletionIsTransient502(t *testing.T) {
	e := EmptyCompletion("anthropic")
	if e.Status != 502 || !e.Transient() {
		t.Fatalf("unexpected: %+v", e)
	}
	var target *Error
	if !errors.As(error(e), &target) {
		t.Fatalf("errors.As failed")
	}
}
