package observability

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		env, level string
		enabled    zapcore.Level
		disabled   zapcore.Level
	}{
		{"production", "info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"development", "debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"development", "warn", zapcore.WarnLevel, zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			log, err := NewLogger(tt.env, tt.level)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !log.Core().Enabled(tt.enabled) {
				t.Errorf("expected %s enabled", tt.enabled)
			}
			if log.Core().Enabled(tt.disabled) {
				t.Errorf("expected %s disabled", tt.disabled)
			}
		})
	}
}

func TestNewLogger_BadLevel(t *testing.T) {
	if _, err := NewLogger("development", "chatty"); err == nil {
		t.Fatal("expected error")
	}
}
