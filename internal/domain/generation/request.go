package generation

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/idea2sns-backend/internal/platforms"
)

type RequestKind string

const (
	KindSimple RequestKind = "simple"
	KindBlog   RequestKind = "blog"
)

// MaxBlogContentChars is the transport cap for blog text. Plan length limits are enforced as quota.
const MaxBlogContentChars = 100000

// Request is the sealed set of inbound generation request variants.
type Request interface {
	Kind() RequestKind
	TargetPlatforms() []platforms.Platform
	BrandVoice() *uuid.UUID
	// ForPlatform returns a copy narrowed to a single platform.
	ForPlatform(p platforms.Platform) Request
	isRequest()
}

type SimpleRequest struct {
	Type         RequestKind          `json:"type"`
	Topic        string               `json:"topic" validate:"max=200"`
	Content      string               `json:"content" validate:"max=3000"`
	Tone         string               `json:"tone" validate:"required,notblank"`
	Platforms    []platforms.Platform `json:"platforms" validate:"required,min=1,max=3,unique,dive,oneof=twitter linkedin threads reddit"`
	BrandVoiceID *string              `json:"brandVoiceId" validate:"omitempty,uuid"`
}

type BlogRequest struct {
	Type         RequestKind          `json:"type"`
	BlogContent  string               `json:"blogContent" validate:"required,notblank,max=100000"`
	Platforms    []platforms.Platform `json:"platforms" validate:"required,min=1,max=3,unique,dive,oneof=twitter linkedin threads reddit"`
	BrandVoiceID *string              `json:"brandVoiceId" validate:"omitempty,uuid"`
}

func (r *SimpleRequest) Kind() RequestKind                     { return KindSimple }
func (r *SimpleRequest) TargetPlatforms() []platforms.Platform { return r.Platforms }
func (r *SimpleRequest) BrandVoice() *uuid.UUID                { return parseOptionalID(r.BrandVoiceID) }
func (r *SimpleRequest) isRequest()                            {}

func (r *SimpleRequest) ForPlatform(p platforms.Platform) Request {
	cp := *r
	cp.Platforms = []platforms.Platform{p}
	return &cp
}

// HasSubject reports whether topic or content is non-blank.
func (r *SimpleRequest) HasSubject() bool {
	return strings.TrimSpace(r.Topic) != "" || strings.TrimSpace(r.Content) != ""
}

func (r *BlogRequest) Kind() RequestKind                     { return KindBlog }
func (r *BlogRequest) TargetPlatforms() []platforms.Platform { return r.Platforms }
func (r *BlogRequest) BrandVoice() *uuid.UUID                { return parseOptionalID(r.BrandVoiceID) }
func (r *BlogRequest) isRequest()                            {}

func (r *BlogRequest) ForPlatform(p platforms.Platform) Request {
	cp := *r
	cp.Platforms = []platforms.Platform{p}
	return &cp
}

func parseOptionalID(s *string) *uuid.UUID {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*s))
	if err != nil {
		return nil
	}
	return &id
}
