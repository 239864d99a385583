package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies explanation failures so each boundary can map them to its
// own surface (HTTP status, panel message).
type Kind int

const (
	KindUpstream Kind = iota
	KindInvalidInput
	KindNotConfigured
	KindUnauthorized
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotConfigured:
		return "not_configured"
	case KindUnauthorized:
		return "unauthorized"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "upstream"
	}
}

// User-facing messages. They are part of the HTTP contract.
const (
	TooLongMessage       = "Text is too long (max 2000 characters)"
	NotConfiguredMessage = "Server is missing its API key configuration"
	UnauthorizedMessage  = "Invalid API key. Check the server configuration."
	RateLimitedMessage   = "Rate limit exceeded. Please wait a moment and try again."
	UpstreamMessage      = "Failed to generate explanation"
)

// Error is the classified failure returned by providers and the Explainer.
type Error struct {
	Kind Kind
	// Detail is safe to show users. For upstream failures it carries the
	// provider's own short message, never the raw body.
	Detail string
	// Status is the upstream HTTP status, when there was one.
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the classification of err; unclassified errors are upstream.
func KindOf(err error) Kind {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Kind
	}
	return KindUpstream
}

// UserMessage converts err into the short message shown to readers.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var llmErr *Error
	if !errors.As(err, &llmErr) {
		return UpstreamMessage
	}
	switch llmErr.Kind {
	case KindInvalidInput:
		if llmErr.Detail != "" {
			return llmErr.Detail
		}
		return "Invalid text"
	case KindNotConfigured:
		return NotConfiguredMessage
	case KindUnauthorized:
		return UnauthorizedMessage
	case KindRateLimited:
		return RateLimitedMessage
	default:
		if detail := safeDetail(llmErr.Detail); detail != "" {
			return UpstreamMessage + ": " + detail
		}
		return UpstreamMessage
	}
}

// classifyStatus maps an upstream HTTP status to an Error. detail is the
// provider's short error message, if it sent one.
func classifyStatus(status int, detail string, cause error) *Error {
	kind := KindUpstream
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = KindUnauthorized
	case http.StatusTooManyRequests:
		kind = KindRateLimited
	}
	return &Error{Kind: kind, Detail: detail, Status: status, Err: cause}
}

const maxDetailChars = 200

func safeDetail(detail string) string {
	detail = strings.Join(strings.Fields(detail), " ")
	if detail == "" {
		return ""
	}
	runes := []rune(detail)
	if len(runes) > maxDetailChars {
		return string(runes[:maxDetailChars]) + "…"
	}
	return detail
}
