package config

import (
	"testing"
	"time"
)

func TestGetFallback(t *testing.T) {
	t.Setenv("TEST_GET_SET", "value")
	t.Setenv("TEST_GET_BLANK", "   ")

	if got := Get("TEST_GET_SET", "x"); got != "value" {
		t.Fatalf("Get = %q, want value", got)
	}
	if got := Get("TEST_GET_BLANK", "x"); got != "x" {
		t.Fatalf("Get blank = %q, want fallback", got)
	}
	if got := Get("TEST_GET_MISSING", "x"); got != "x" {
		t.Fatalf("Get missing = %q, want fallback", got)
	}
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "abc")
	_, err := envInt("TEST_INT_BAD", 0)
	if err == nil {
		t.Fatal("expected error for non-integer value, got nil")
	}
	if got := err.Error(); got != `TEST_INT_BAD="abc" is not a valid integer` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("TEST_DUR", "3s")
	d, err := envDuration("TEST_DUR", time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 3*time.Second {
		t.Fatalf("expected 3s, got %v", d)
	}

	t.Setenv("TEST_DUR_BAD", "soon")
	if _, err := envDuration("TEST_DUR_BAD", time.Second); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DISTANCE_PROVIDER", "haversine")
	t.Setenv("ORS_API_KEY", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ORS_TIMEOUT", "")
	t.Setenv("ORS_MAX_ATTEMPTS", "")
	t.Setenv("PLANNER_TWO_OPT_PASSES", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ORSTimeout != 15*time.Second {
		t.Errorf("ORSTimeout = %v, want 15s", cfg.ORSTimeout)
	}
	if cfg.ORSMaxAttempts != 2 {
		t.Errorf("ORSMaxAttempts = %d, want 2", cfg.ORSMaxAttempts)
	}
	if cfg.TwoOptPasses != 0 {
		t.Errorf("TwoOptPasses = %d, want 0", cfg.TwoOptPasses)
	}
	if cfg.ORSProfile != "driving-car" {
		t.Errorf("ORSProfile = %q", cfg.ORSProfile)
	}
}

func TestLoadRequiresORSKey(t *testing.T) {
	t.Setenv("DISTANCE_PROVIDER", "ors")
	t.Setenv("ORS_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when ORS_API_KEY is missing")
	}
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	cfg := Config{DistanceProvider: "google", DBPath: "x", ORSTimeout: time.Second, ORSMaxAttempts: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
