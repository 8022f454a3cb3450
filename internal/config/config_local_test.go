//go:build !gcloud

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestValidateForRunRequiresTripSource(t *testing.T) {
	cfg := &Config{
		Redis: &RedisConfig{Addr: "localhost:6379"},
		Store: &StoreConfig{PreferenceBackend: "redis", LedgerBackend: "redis"},
	}

	if err := ValidateForRun(cfg); !errors.Is(err, ErrTripSourceURLMissing) {
		t.Errorf("expected ErrTripSourceURLMissing, got %v", err)
	}

	cfg.TripSourceURL = "http://localhost:8081"
	if err := ValidateForRun(cfg); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("TRIP_SOURCE_URL=http://trips.local\n"), 0o644); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	t.Setenv("DOTENV_PATH", path)
	t.Setenv("TRIP_SOURCE_URL", "")
	os.Unsetenv("TRIP_SOURCE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TripSourceURL != "http://trips.local" {
		t.Errorf("TripSourceURL: got %q, want %q", cfg.TripSourceURL, "http://trips.local")
	}
}
