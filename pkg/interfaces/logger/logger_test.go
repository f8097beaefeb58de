package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestBasicLoggerFormatsSortedFields(t *testing.T) {
	var buf bytes.Buffer
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	log := New(WithWriter(&buf), WithClock(func() time.Time { return fixed }))

	log.With(Field{Key: "user_id", Value: 7}).Info("rendered", Field{Key: "count", Value: 2})

	got := strings.TrimSpace(buf.String())
	want := "2024-01-02T03:04:05Z [INFO] rendered count=2 user_id=7"
	if got != want {
		t.Fatalf("unexpected line:\n got %q\nwant %q", got, want)
	}
}

func TestBasicLoggerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithWriter(&buf), WithLevel(LevelWarn))

	log.Debug("hidden")
	log.Info("hidden")
	log.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("expected entries below warn to be dropped, got %q", buf.String())
	}
	if !strings.Contains(buf.String(), "[WARN] shown") {
		t.Fatalf("expected warn entry, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"WARNING": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
