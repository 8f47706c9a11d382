package logger

import (
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := parseLevel(tt.in); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInitSetsGlobal(t *testing.T) {
	prev := L
	defer func() { L = prev; slog.SetDefault(prev) }()

	Init("debug", "json")
	if L == prev {
		t.Error("Init did not replace the global logger")
	}
	if !L.Enabled(t.Context(), slog.LevelDebug) {
		t.Error("debug level not enabled after Init(\"debug\")")
	}
}
