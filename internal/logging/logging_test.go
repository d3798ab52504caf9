package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " INFO ": slog.LevelInfo, "warning": slog.LevelWarn,
		"error": slog.LevelError, "": slog.LevelInfo, "verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q: expected %v, got %v", in, want, got)
		}
	}
}

func TestValidate(t *testing.T) {
	if err := Validate(Options{Level: "trace"}); err == nil {
		t.Fatal("expected unknown level error")
	}
	if err := Validate(Options{Format: "xml"}); err == nil {
		t.Fatal("expected unknown format error")
	}
	if err := Validate(Options{Level: "warn", Format: "JSON"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNewJSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("graphql error", "operation", "Me")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if rec["msg"] != "graphql error" || rec["operation"] != "Me" {
		t.Fatalf("unexpected record %v", rec)
	}
}
