package platforms

import "testing"

func TestRulesFor(t *testing.T) {
	got, err := RulesFor([]Platform{Twitter, Reddit})
	if err != nil {
		t.Fatalf("RulesFor: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len=%d", len(got))
	}
	if got[Twitter] != rules[Twitter] || got[Reddit] != rules[Reddit] {
		t.Fatalf("unexpected rules: %v", got)
	}
	if _, err := RulesFor([]Platform{"instagram"}); err == nil {
		t.Fatalf("expected error for legacy platform")
	}
}

func TestParse(t *testing.T) {
	p, err := Parse(" LinkedIn ")
	if err != nil || p != LinkedIn {
		t.Fatalf("Parse: p=%q err=%v", p, err)
	}
	if _, err := Parse("pinterest"); err == nil {
		t.Fatalf("expected pinterest to be rejected")
	}
}

func TestEveryPlatformHasRuleAndHint(t *testing.T) {
	for _, p := range All() {
		if !p.Valid() {
			t.Fatalf("%s has no rule", p)
		}
		if _, ok := ModelHint(p); !ok {
			t.Fatalf("%s has no model hint", p)
		}
	}
}
