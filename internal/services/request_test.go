package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/idea2sns-backend/internal/domain/generation"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
)

func validationFields(t *testing.T, err error) map[string]string {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
	d, ok := ae.Details.(map[string]any)
	if !ok {
		return nil
	}
	fields, _ := d["fields"].(map[string]string)
	return fields
}

func TestParseGenerationRequestSimple(t *testing.T) {
	req, err := ParseGenerationRequest([]byte(`{"type":"simple","topic":"Product launch","tone":"bold","platforms":["twitter","reddit"],"brandVoiceId":""}`), "")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sr, ok := req.(*generation.SimpleRequest)
	if !ok {
		t.Fatalf("got %T", req)
	}
	if len(sr.Platforms) != 2 || sr.BrandVoiceID != nil || req.BrandVoice() != nil {
		t.Fatalf("request=%+v", sr)
	}
}

func TestParseGenerationRequestRejects(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"blank subject", `{"type":"simple","topic":"  ","content":"","tone":"x","platforms":["twitter"]}`, "topic"},
		{"blank tone", `{"type":"simple","topic":"a","tone":"   ","platforms":["twitter"]}`, "tone"},
		{"too many platforms", `{"type":"simple","topic":"a","tone":"x","platforms":["twitter","linkedin","threads","reddit"]}`, "platforms"},
		{"no platforms", `{"type":"simple","topic":"a","tone":"x","platforms":[]}`, "platforms"},
		{"legacy platform", `{"type":"simple","topic":"a","tone":"x","platforms":["instagram"]}`, "platforms[0]"},
		{"duplicate platform", `{"type":"simple","topic":"a","tone":"x","platforms":["twitter","twitter"]}`, "platforms"},
		{"long topic", `{"type":"simple","topic":"` + strings.Repeat("가", 201) + `","tone":"x","platforms":["twitter"]}`, "topic"},
		{"bad brand voice", `{"type":"simple","topic":"a","tone":"x","platforms":["twitter"],"brandVoiceId":"nope"}`, "brandVoiceId"},
		{"blank blog", `{"type":"blog","blogContent":"  ","platforms":["twitter"]}`, "blogContent"},
		{"unknown type", `{"type":"video","platforms":["twitter"]}`, "type"},
		{"wrong json type", `{"type":"simple","topic":"a","tone":"x","platforms":"twitter"}`, "platforms"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseGenerationRequest([]byte(tc.body), "")
			fields := validationFields(t, err)
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, fields)
			}
		})
	}
}

func TestParseGenerationRequestTopicLengthCountsRunes(t *testing.T) {
	body := `{"type":"simple","topic":"` + strings.Repeat("가", 200) + `","tone":"x","platforms":["twitter"]}`
	if _, err := ParseGenerationRequest([]byte(body), ""); err != nil {
		t.Fatalf("200 code points should pass: %v", err)
	}
}

func TestParseGenerationRequestMalformed(t *testing.T) {
	_, err := ParseGenerationRequest([]byte(`{"type":`), "")
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code != apierr.CodeValidation || ae.Message != "Malformed JSON body" {
		t.Fatalf("got %v", err)
	}
}

func TestParseGenerationRequestBlogDefault(t *testing.T) {
	req, err := ParseGenerationRequest([]byte(`{"blogContent":"long post","platforms":["linkedin"]}`), generation.KindBlog)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Kind() != generation.KindBlog {
		t.Fatalf("kind=%s", req.Kind())
	}
	narrowed := req.ForPlatform("twitter")
	if len(narrowed.TargetPlatforms()) != 1 || len(req.TargetPlatforms()) != 1 || req.TargetPlatforms()[0] != "linkedin" {
		t.Fatalf("ForPlatform must not mutate the original")
	}
}

func TestDecodeAndValidateBrandVoiceInput(t *testing.T) {
	var in BrandVoiceInput
	err := DecodeAndValidate([]byte(`{"samples":["a","b","c","d","e","f"]}`), &in)
	if _, ok := validationFields(t, err)["samples"]; !ok {
		t.Fatalf("expected samples error: %v", err)
	}
	if err := DecodeAndValidate([]byte(`{"samples":["a sample"]}`), &in); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}
}
