package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{
		Level:     slog.LevelDebug,
		Component: ComponentApp,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}), &buf
}

func TestComponentEmittedOnce(t *testing.T) {
	logger, buf := newBufferLogger()

	logger.WithComponent(ComponentAuth).Info("user logged in")

	line := buf.String()
	if got := strings.Count(line, FieldComponent+"="+ComponentAuth); got != 1 {
		t.Fatalf("component attribute appears %d times in %q, want 1", got, line)
	}
}

func TestWithComponentOverridesTag(t *testing.T) {
	logger, buf := newBufferLogger()

	logger.WithComponent(ComponentStorage).Warn("slow query")

	line := buf.String()
	if !strings.Contains(line, FieldComponent+"="+ComponentStorage) {
		t.Fatalf("missing storage component tag in %q", line)
	}
	if strings.Contains(line, FieldComponent+"="+ComponentApp) {
		t.Fatalf("base component tag leaked into %q", line)
	}
	if got := logger.WithComponent(ComponentStorage).Component(); got != ComponentStorage {
		t.Fatalf("Component() = %q, want %q", got, ComponentStorage)
	}
}

func TestWithKeepsComponent(t *testing.T) {
	logger, buf := newBufferLogger()

	logger.WithComponent(ComponentHTTP).With(FieldRequestID, "abc").Error("boom")

	line := buf.String()
	if got := strings.Count(line, FieldComponent+"="); got != 1 {
		t.Fatalf("component attribute appears %d times in %q, want 1", got, line)
	}
	if !strings.Contains(line, FieldComponent+"="+ComponentHTTP) {
		t.Fatalf("missing http component tag in %q", line)
	}
	if !strings.Contains(line, FieldRequestID+"=abc") {
		t.Fatalf("missing request id in %q", line)
	}
}
