package log

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentAuth, Output: &buf})

	logger.Info("Login succeeded", FieldUserID, int64(7))
	out := buf.String()
	if !strings.Contains(out, "component=auth") || !strings.Contains(out, "user_id=7") {
		t.Fatalf("unexpected log line: %s", out)
	}

	buf.Reset()
	logger.WithComponent(ComponentBudget).Info("Budget set")
	if !strings.Contains(buf.String(), "component=budget") {
		t.Fatalf("component not replaced: %s", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	if got := FromContext(context.Background()); got.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got component %q", got.Component())
	}

	logger := New(DefaultConfig())
	ctx := NewContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatalf("expected logger from context")
	}
}

func TestLogHTTPEndLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelDebug, Output: &buf}))
	r := httptest.NewRequest("GET", "/summary", nil)

	sl.LogHTTPEnd(context.Background(), r, 500, 3, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected error level for 500: %s", buf.String())
	}

	buf.Reset()
	sl.LogHTTPEnd(context.Background(), r, 303, 1, "127.0.0.1")
	if !strings.Contains(buf.String(), "level=INFO") || !strings.Contains(buf.String(), "success=true") {
		t.Fatalf("expected info level for 303: %s", buf.String())
	}
}
