package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadCustomPathPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studio.yaml")
	data := []byte(`
ai:
  max_attempts: 7
genres:
  runner:
    gravity: 900
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.AI.MaxAttempts != 7 {
		t.Errorf("MaxAttempts = %d, expected 7", cfg.AI.MaxAttempts)
	}
	if cfg.Genres.Runner.Gravity != 900 {
		t.Errorf("Gravity = %v, expected 900", cfg.Genres.Runner.Gravity)
	}
	// Untouched values keep their defaults.
	if cfg.Genres.Runner.JumpVelocity != -400 {
		t.Errorf("JumpVelocity = %v, expected default -400", cfg.Genres.Runner.JumpVelocity)
	}
	if cfg.AI.Backoff() != 500*time.Millisecond {
		t.Errorf("Backoff = %v, expected default 500ms", cfg.AI.Backoff())
	}
	if cfg.Assets.Defaults.Player != "/images/player.png" {
		t.Errorf("default player url = %q", cfg.Assets.Defaults.Player)
	}
}

func TestLoadMissingCustomPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail for a missing custom path")
	}
}

func TestEmbeddedDefaultsMatchHardcoded(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	def := DefaultStudioConfig()
	if cfg.Genres != def.Genres {
		t.Errorf("embedded genres %+v differ from hardcoded %+v", cfg.Genres, def.Genres)
	}
	if cfg.Canvas != def.Canvas {
		t.Errorf("embedded canvas %+v differs from hardcoded %+v", cfg.Canvas, def.Canvas)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvEndpoint, "https://example.openai.azure.com")
	t.Setenv(EnvAPIKey, "secret")
	t.Setenv(EnvMaxAttempts, "5")
	t.Setenv(EnvPublicURL, "https://arcade.example.com")

	cfg := DefaultStudioConfig()
	ApplyEnv(&cfg)

	if cfg.AI.Endpoint != "https://example.openai.azure.com" || cfg.AI.APIKey != "secret" {
		t.Errorf("env not applied: %+v", cfg.AI)
	}
	if cfg.AI.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, expected 5", cfg.AI.MaxAttempts)
	}
	if cfg.Server.PublicURL != "https://arcade.example.com" {
		t.Errorf("PublicURL = %q", cfg.Server.PublicURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BG_REMOVAL_ENDPOINT=http://bg.local/remove\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvBgEndpoint, "")
	os.Unsetenv(EnvBgEndpoint)

	LoadDotEnv(path)
	if got := os.Getenv(EnvBgEndpoint); got != "http://bg.local/remove" {
		t.Errorf("%s = %q after LoadDotEnv", EnvBgEndpoint, got)
	}
}
