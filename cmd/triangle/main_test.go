package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/vkngwrapper/triangle/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		debug bool
		warn  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"error", false, false},
	}
	for _, tt := range tests {
		cfg := config.Default()
		cfg.LogLevel = tt.level

		var buf bytes.Buffer
		logger, err := newLogger(cfg, &buf)
		if err != nil {
			t.Fatalf("newLogger(%q) error = %v", tt.level, err)
		}
		if got := logger.Enabled(context.Background(), slog.LevelDebug); got != tt.debug {
			t.Errorf("level %q: debug enabled = %v, want %v", tt.level, got, tt.debug)
		}
		if got := logger.Enabled(context.Background(), slog.LevelWarn); got != tt.warn {
			t.Errorf("level %q: warn enabled = %v, want %v", tt.level, got, tt.warn)
		}

		logger.Error("device lost")
		if !strings.Contains(buf.String(), "device lost") {
			t.Errorf("level %q: output = %q, want the error record", tt.level, buf.String())
		}
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "verbose"

	logger, err := newLogger(cfg, &bytes.Buffer{})
	if err == nil {
		t.Fatal("newLogger() error = nil, want an error for an unknown level")
	}
	if logger != nil {
		t.Error("newLogger() returned a logger alongside the error")
	}
}
