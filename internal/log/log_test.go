package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"debug", slog.LevelDebug, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"verbose", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelDebug, Format: "json", Output: &buf, Component: ComponentApp})

	logger.WithComponent(ComponentLedger).Info("hello")

	if n := strings.Count(buf.String(), `"component"`); n != 1 {
		t.Fatalf("expected one component attribute, got %d in %s", n, buf.String())
	}
	lines := decodeLines(t, &buf)
	if lines[0][FieldComponent] != ComponentLedger {
		t.Fatalf("unexpected component: %v", lines[0][FieldComponent])
	}
}

func TestLogTransactionCreatedMasksSession(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Level: slog.LevelInfo, Format: "json", Output: &buf}))

	sl.LogTransactionCreated(context.Background(), "tx-1", "Salary", "-30.25", "0123456789abcdef", true)

	lines := decodeLines(t, &buf)
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d", len(lines))
	}
	got := lines[0]
	if got[FieldSessionID] != "01234567***" {
		t.Errorf("session not masked: %v", got[FieldSessionID])
	}
	if got[FieldAmount] != "-30.25" || got[FieldTransactionID] != "tx-1" || got[FieldSessionNew] != true {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestLogErrorDefaultsFields(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Format: "json", Output: &buf}))

	sl.LogError(context.Background(), "boom", errors.New("db down"), ComponentStorage, OpList, nil)

	got := decodeLines(t, &buf)[0]
	if got[FieldError] != "db down" || got[FieldComponent] != ComponentStorage || got[FieldOperation] != OpList {
		t.Fatalf("unexpected fields: %v", got)
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if l := FromContext(context.Background()); l == nil || l.Component() != "unknown" {
		t.Fatalf("unexpected fallback logger: %+v", l)
	}
	logger := New(DefaultConfig())
	if FromContext(WithLogger(context.Background(), logger)) != logger {
		t.Fatalf("expected stored logger")
	}
}
