package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeAuthRequired  = "AUTH_REQUIRED"
	CodeNotFound      = "NOT_FOUND"
	CodeQuotaExceeded = "QUOTA_EXCEEDED"
	CodeProvider      = "PROVIDER_ERROR"
	CodeInternal      = "INTERNAL_ERROR"
)

// StatusFor is the fixed code -> HTTP status mapping used by every endpoint.
func StatusFor(code string) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeAuthRequired:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeQuotaExceeded:
		return http.StatusTooManyRequests
	case CodeProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Status  int
	Code    string
	Message string
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		if e.Err != nil {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(code, message string, details any, err error) *Error {
	return &Error{Status: StatusFor(code), Code: code, Message: message, Details: details, Err: err}
}

func Validation(message string, details any) *Error {
	return New(CodeValidation, message, details, nil)
}

func AuthRequired(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return New(CodeAuthRequired, message, nil, nil)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message, nil, nil)
}

func QuotaExceeded(message string, details any) *Error {
	return New(CodeQuotaExceeded, message, details, nil)
}

func Provider(message string, details any, err error) *Error {
	return New(CodeProvider, message, details, err)
}

func Internal(message string, err error) *Error {
	if message == "" {
		message = "internal error"
	}
	return New(CodeInternal, message, nil, err)
}

// From returns err as an *Error, wrapping anything else as INTERNAL_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal("", err)
}

// PublicMessage is the message shown to callers. Internal causes are never exposed.
func (e *Error) PublicMessage() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	if e.Code == CodeInternal {
		return "internal error"
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Code
}
