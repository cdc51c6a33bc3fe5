package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"hookclip/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrEncoding, "compose", "render", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrEncoding) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"compose", "render", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestKindMapping(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrConfiguration, "caption", "", "missing key", nil), "config"},
		{services.Wrap(services.ErrUpstream, "caption", "", "", nil), "upstream"},
		{services.Wrap(services.ErrTimeout, "speech", "", "", nil), "timeout"},
		{services.Wrap(services.ErrEncoding, "compose", "", "", nil), "encoding"},
		{fmt.Errorf("outer: %w", services.ErrValidation), "validation"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		if got := services.Kind(tt.err); got != tt.want {
			t.Errorf("Kind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestResponseErrorIsDiscoverable(t *testing.T) {
	raw := &services.ResponseError{Service: "gemini", StatusCode: 403, Body: "{\n  \"error\": \"denied\"\n}"}
	err := services.Wrap(services.ErrUpstream, "caption", "generate", "request rejected", raw)

	var respErr *services.ResponseError
	if !errors.As(err, &respErr) {
		t.Fatalf("expected ResponseError in chain: %v", err)
	}
	if respErr.StatusCode != 403 {
		t.Fatalf("unexpected status %d", respErr.StatusCode)
	}
	if !strings.Contains(err.Error(), `http 403: { "error": "denied" }`) {
		t.Fatalf("expected collapsed body in message, got %q", err.Error())
	}
}

func TestSnippetTruncates(t *testing.T) {
	if got := services.Snippet("   ", 10); got != "<empty>" {
		t.Fatalf("unexpected empty snippet %q", got)
	}
	if got := services.Snippet("abcdefghijkl", 5); got != "abcde..." {
		t.Fatalf("unexpected truncation %q", got)
	}
}
