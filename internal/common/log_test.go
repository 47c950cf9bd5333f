// File path: internal/common/log_test.go
package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCapturingHandlerRecordsComponentAndAttributes(t *testing.T) {
	s := newLogSink(10)
	var buf bytes.Buffer
	log := slog.New(newCapturingHandler(&buf, "text", slog.LevelDebug, s)).With("component", "complaint")

	log.Info("complaint: submitted", "public_id", "07-003-042", "error", errors.New("boom"))

	entries := s.entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Component != "complaint" {
		t.Fatalf("component = %q", entry.Component)
	}
	if entry.Attributes["public_id"] != "07-003-042" {
		t.Fatalf("unexpected attributes: %#v", entry.Attributes)
	}
	if entry.Attributes["error"] != "boom" {
		t.Fatalf("error attribute not flattened: %#v", entry.Attributes["error"])
	}
	if !strings.Contains(buf.String(), "complaint: submitted") {
		t.Fatalf("base handler did not receive record: %q", buf.String())
	}
}

func TestCapturingHandlerDerivesComponentFromMessage(t *testing.T) {
	s := newLogSink(10)
	var buf bytes.Buffer
	log := slog.New(newCapturingHandler(&buf, "json", slog.LevelInfo, s))
	log.Warn("store: busy database")
	log.Debug("render: hidden below level")

	entries := s.entries()
	if len(entries) != 1 {
		t.Fatalf("expected only the warn entry, got %d", len(entries))
	}
	if entries[0].Component != "store" || entries[0].Level != "warn" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
	if !strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Fatalf("expected JSON output, got %q", buf.String())
	}
}

func TestLogSinkKeepsNewestEntries(t *testing.T) {
	s := newLogSink(3)
	h := newCapturingHandler(&bytes.Buffer{}, "", slog.LevelInfo, s)
	log := slog.New(h)
	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		log.InfoContext(context.Background(), msg)
	}
	entries := s.entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Message != "c" || entries[2].Message != "e" {
		t.Fatalf("unexpected window: %+v", entries)
	}
}

func TestParseLevelAndHistory(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
	if historySize("25") != 25 {
		t.Errorf("historySize(25) mismatch")
	}
	if historySize("-1") != defaultLogHistory || historySize("x") != defaultLogHistory {
		t.Errorf("invalid history sizes should fall back to default")
	}
}
