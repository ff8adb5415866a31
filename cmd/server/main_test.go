package main

import (
	"log/slog"
	"testing"

	"github.com/edu-forge/itemforge/internal/platform/config"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.LogConfig
		wantDebug bool
	}{
		{
			name:      "debug level enables debug logs",
			cfg:       config.LogConfig{Level: "debug", Format: "json"},
			wantDebug: true,
		},
		{
			name:      "default level suppresses debug logs",
			cfg:       config.LogConfig{Level: "info", Format: "json"},
			wantDebug: false,
		},
		{
			name:      "unknown level falls back to info",
			cfg:       config.LogConfig{Level: "verbose", Format: "text"},
			wantDebug: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupLogger(tt.cfg)
			if got := slog.Default().Enabled(t.Context(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("debug enabled = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}
