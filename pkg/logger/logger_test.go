package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/sjkim/vega/pkg/config"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.expected {
			t.Errorf("parseLogLevel(%q) = %v, expected %v", tt.input, got, tt.expected)
		}
	}
}

func TestNewSetsGlobalLevel(t *testing.T) {
	cfg := &config.Config{
		Env:       "development",
		LogLevel:  "warn",
		LogFormat: "json",
	}

	log := New(cfg)
	if log == nil {
		t.Fatal("New() returned nil")
	}

	if zerolog.GlobalLevel() != zerolog.WarnLevel {
		t.Errorf("Expected global level warn, got %v", zerolog.GlobalLevel())
	}

	// Restore for other tests.
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func TestNopLoggerDoesNotPanic(t *testing.T) {
	log := NewNop()

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message")
	log.Infof("formatted %s", "message")

	log.WithField("key", "value").Info("with field")
	log.WithFields(map[string]interface{}{"a": 1, "b": "two"}).Info("with fields")
	log.WithComponent("backtest").Info("with component")
}

func TestWithErrorCarriesField(t *testing.T) {
	log := NewNop()

	derived := log.WithError(nil)
	if derived == nil {
		t.Fatal("WithError returned nil")
	}
	derived.Error("still works")
}
