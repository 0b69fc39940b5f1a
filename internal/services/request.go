package services

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"

	"github.com/yungbote/idea2sns-backend/internal/domain/generation"
	"github.com/yungbote/idea2sns-backend/internal/platform/apierr"
)

var requestValidate = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// ParseGenerationRequest decodes a tagged generation request. defaultKind applies when the
// body carries no "type"; it is empty for endpoints that require the tag.
func ParseGenerationRequest(body []byte, defaultKind generation.RequestKind) (generation.Request, error) {
	var tag struct {
		Type generation.RequestKind `json:"type"`
	}
	if err := json.Unmarshal(body, &tag); err != nil {
		return nil, decodeError(err)
	}
	kind := tag.Type
	if kind == "" {
		kind = defaultKind
	}
	if kind == "" {
		kind = generation.KindSimple
	}

	switch kind {
	case generation.KindSimple:
		var r generation.SimpleRequest
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, decodeError(err)
		}
		r.Type = kind
		r.BrandVoiceID = blankToNil(r.BrandVoiceID)
		fields := fieldErrors(requestValidate.Struct(&r))
		if !r.HasSubject() {
			if fields == nil {
				fields = map[string]string{}
			}
			fields["topic"] = "topic or content is required"
		}
		if len(fields) > 0 {
			return nil, invalidFields(fields)
		}
		return &r, nil
	case generation.KindBlog:
		var r generation.BlogRequest
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, decodeError(err)
		}
		r.Type = kind
		r.BrandVoiceID = blankToNil(r.BrandVoiceID)
		if fields := fieldErrors(requestValidate.Struct(&r)); len(fields) > 0 {
			return nil, invalidFields(fields)
		}
		return &r, nil
	default:
		return nil, invalidFields(map[string]string{"type": "must be one of: simple, blog"})
	}
}

// DecodeAndValidate is the generic JSON body path for the smaller endpoints.
func DecodeAndValidate(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return decodeError(err)
	}
	if fields := fieldErrors(requestValidate.Struct(dst)); len(fields) > 0 {
		return invalidFields(fields)
	}
	return nil
}

func invalidFields(fields map[string]string) error {
	return apierr.Validation("Request validation failed", map[string]any{"fields": fields})
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return invalidFields(map[string]string{typeErr.Field: "must be " + typeErr.Type.String()})
	}
	return apierr.Validation("Malformed JSON body", nil)
}

// fieldErrors flattens validator output into json-path -> message.
func fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"body": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fieldPath(fe)] = ruleMessage(fe)
	}
	return out
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "max":
		if fe.Kind() == reflect.Slice {
			return "must contain at most " + fe.Param() + " items"
		}
		return "must be at most " + fe.Param() + " characters"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " items"
		}
		return "must be at least " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "unique":
		return "must not contain duplicates"
	case "uuid":
		return "must be a UUID"
	default:
		return "failed " + fe.Tag()
	}
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func optionalUUID(s *string) *uuid.UUID {
	s = blankToNil(s)
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}
