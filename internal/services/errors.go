package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConfiguration = errors.New("configuration error")
	ErrUpstream      = errors.New("upstream error")
	ErrTimeout       = errors.New("timeout")
	ErrEncoding      = errors.New("encoding error")
	ErrValidation    = errors.New("validation error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns a short label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "config"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrEncoding):
		return "encoding"
	case errors.Is(err, ErrValidation):
		return "validation"
	default:
		return "internal"
	}
}

// ResponseError captures a non-usable response from an external service.
type ResponseError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s response: %s", e.Service, Snippet(e.Body, 160))
	}
	return fmt.Sprintf("%s response: http %d: %s", e.Service, e.StatusCode, Snippet(e.Body, 160))
}

// Snippet collapses whitespace in content and truncates it to limit runes.
func Snippet(content string, limit int) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	runes := []rune(clean)
	if limit > 0 && len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
