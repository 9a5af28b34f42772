package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "8090" {
		t.Errorf("Expected Port to be 8090, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}
	if cfg.Database.MaxConns != 25 {
		t.Errorf("Expected DB MaxConns to be 25, got %d", cfg.Database.MaxConns)
	}
	if cfg.Strategy.ThresholdWindow != 365 {
		t.Errorf("Expected ThresholdWindow to be 365, got %d", cfg.Strategy.ThresholdWindow)
	}
	if cfg.Strategy.ThresholdTTL != 24*time.Hour {
		t.Errorf("Expected ThresholdTTL to be 24h, got %s", cfg.Strategy.ThresholdTTL)
	}
	if cfg.Redis.Enabled {
		t.Error("Expected Redis to be disabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("PORT", "9000")
	os.Setenv("ENV", "production")
	os.Setenv("DB_MAX_CONNS", "50")
	os.Setenv("THRESHOLD_WINDOW_DAYS", "180")
	os.Setenv("RESULT_RETENTION", "720h")

	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ENV")
		os.Unsetenv("DB_MAX_CONNS")
		os.Unsetenv("THRESHOLD_WINDOW_DAYS")
		os.Unsetenv("RESULT_RETENTION")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9000" {
		t.Errorf("Expected Port to be 9000, got %s", cfg.Port)
	}
	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}
	if cfg.Database.MaxConns != 50 {
		t.Errorf("Expected DB MaxConns to be 50, got %d", cfg.Database.MaxConns)
	}
	if cfg.Strategy.ThresholdWindow != 180 {
		t.Errorf("Expected ThresholdWindow to be 180, got %d", cfg.Strategy.ThresholdWindow)
	}
	if cfg.Strategy.ResultRetention != 720*time.Hour {
		t.Errorf("Expected ResultRetention to be 720h, got %s", cfg.Strategy.ResultRetention)
	}
}

func TestLoad_InvalidEnv(t *testing.T) {
	os.Setenv("ENV", "sandbox")
	defer os.Unsetenv("ENV")

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid ENV, got nil")
	}
}

func TestLoad_InvalidThresholdWindow(t *testing.T) {
	os.Setenv("THRESHOLD_WINDOW_DAYS", "0")
	defer os.Unsetenv("THRESHOLD_WINDOW_DAYS")

	if _, err := Load(); err == nil {
		t.Error("Expected error for zero threshold window, got nil")
	}
}

func TestGetEnvAsDuration_BadValueFallsBack(t *testing.T) {
	os.Setenv("TEST_DURATION", "not-a-duration")
	defer os.Unsetenv("TEST_DURATION")

	if got := getEnvAsDuration("TEST_DURATION", "5m"); got != 5*time.Minute {
		t.Errorf("Expected fallback 5m, got %s", got)
	}
}

func TestGetEnvAsInt_BadValueFallsBack(t *testing.T) {
	os.Setenv("TEST_INT", "abc")
	defer os.Unsetenv("TEST_INT")

	if got := getEnvAsInt("TEST_INT", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}
}
