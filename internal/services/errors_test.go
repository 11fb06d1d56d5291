package services_test

import (
	"errors"
	"strings"
	"testing"

	"loudlimit/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "ffmpeg", "analyze", "failed", base)
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
	for _, fragment := range []string{"ffmpeg", "analyze", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected placeholder detail, got %q", err.Error())
	}
}

func TestIsUserActionable(t *testing.T) {
	if !services.IsUserActionable(services.Wrap(services.ErrValidation, "pipeline", "preflight", "not a file", nil)) {
		t.Fatal("expected validation error to be user actionable")
	}
	if !services.IsUserActionable(services.Wrap(services.ErrNotFound, "pipeline", "preflight", "missing", nil)) {
		t.Fatal("expected not found error to be user actionable")
	}
	if services.IsUserActionable(services.Wrap(services.ErrExternalTool, "ffmpeg", "normalize", "exit 1", nil)) {
		t.Fatal("expected tool failure to not be user actionable")
	}
	if services.IsUserActionable(nil) {
		t.Fatal("expected nil to not be user actionable")
	}
}
