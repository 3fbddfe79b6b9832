package services_test

import (
	"errors"
	"strings"
	"testing"

	"vistopia/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "fetch", "convert", "ffmpeg failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"fetch", "convert", "ffmpeg failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport marker by default, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestFailureScopeMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want services.Scope
	}{
		{"nil", nil, services.ScopeArticle},
		{"config", services.Wrap(services.ErrConfiguration, "config", "load", "bad", nil), services.ScopeRun},
		{"not found", services.Wrap(services.ErrNotFound, "api", "catalog", "missing", nil), services.ScopeShow},
		{"decode", services.Wrap(services.ErrDecode, "api", "catalog", "garbled", nil), services.ScopeShow},
		{"transport", services.Wrap(services.ErrTransport, "fetch", "audio", "reset", errors.New("io")), services.ScopeArticle},
		{"tool", services.Wrap(services.ErrToolMissing, "fetch", "video", "ffmpeg", nil), services.ScopeArticle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureScope(tc.err); got != tc.want {
				t.Fatalf("FailureScope = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHintMentionsInstallForMissingTool(t *testing.T) {
	err := services.Wrap(services.ErrToolMissing, "fetch", "video", "ffmpeg not found", nil)
	if !strings.Contains(services.Hint(err), "install") {
		t.Fatalf("unexpected hint: %q", services.Hint(err))
	}
}
