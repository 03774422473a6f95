package main

import (
	"log/slog"
	"testing"

	"github.com/amf-prep/trainer/internal/platform/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.LogConfig
		debugOn    bool
		warnOn     bool
	}{
		{"default json info", config.LogConfig{Level: "info", Format: "json"}, false, true},
		{"debug level", config.LogConfig{Level: "debug", Format: "json"}, true, true},
		{"warn level", config.LogConfig{Level: "warn", Format: "text"}, false, true},
		{"invalid level falls back to info", config.LogConfig{Level: "loud", Format: "json"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := newLogger(tt.cfg)

			if got := logger.Enabled(t.Context(), slog.LevelDebug); got != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", got, tt.debugOn)
			}
			if got := logger.Enabled(t.Context(), slog.LevelWarn); got != tt.warnOn {
				t.Errorf("warn enabled = %v, want %v", got, tt.warnOn)
			}
		})
	}
}

func TestNewStore_FileBackend(t *testing.T) {
	cfg := &config.Config{
		State: config.StateConfig{Backend: "file", Dir: t.TempDir()},
	}

	store, cleanup, err := newStore(t.Context(), cfg)
	if err != nil {
		t.Fatalf("newStore() error = %v", err)
	}
	defer cleanup()

	if store == nil {
		t.Fatal("newStore() returned nil store")
	}
}

func TestNewCache_Unconfigured(t *testing.T) {
	cfg := &config.Config{}
	if c := newCache(t.Context(), cfg); c != nil {
		t.Error("newCache() should return nil when no URL is configured")
	}
}
