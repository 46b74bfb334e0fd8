package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Recommend.NumericWeight != 0.6 || cfg.Recommend.TextWeight != 0.4 {
		t.Errorf("default weights = %v, %v; want 0.6, 0.4",
			cfg.Recommend.NumericWeight, cfg.Recommend.TextWeight)
	}
	if cfg.Recommend.MaxResults != 6 {
		t.Errorf("MaxResults = %d, want 6", cfg.Recommend.MaxResults)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SONGREC_REDIS_ADDR", "cache.internal:6380")
	t.Setenv("SONGREC_SERVER_ADDR", "0.0.0.0:9000")
	t.Setenv("SONGREC_DATASET_DATABASE_URL", "postgres://localhost/songs")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Redis.Addr != "cache.internal:6380" {
		t.Errorf("Redis.Addr = %q, want env override", cfg.Redis.Addr)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("Server.Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Dataset.DatabaseURL != "postgres://localhost/songs" {
		t.Errorf("Dataset.DatabaseURL = %q, want env override", cfg.Dataset.DatabaseURL)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte(`
server:
  addr: "127.0.0.1:8123"
recommend:
  numeric_weight: 0.8
  text_weight: 0.2
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:8123" {
		t.Errorf("Server.Addr = %q, want file value", cfg.Server.Addr)
	}
	if cfg.Recommend.NumericWeight != 0.8 {
		t.Errorf("NumericWeight = %v, want 0.8", cfg.Recommend.NumericWeight)
	}
	// Values absent from the file keep their defaults
	if cfg.Recommend.MaxResults != 6 {
		t.Errorf("MaxResults = %d, want default 6", cfg.Recommend.MaxResults)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Error("Load() error = nil for missing file")
	}
}

func TestSpotifyEnvFallback(t *testing.T) {
	t.Setenv("SPOTIFY_ID", "conventional-id")
	t.Setenv("SPOTIFY_SECRET", "conventional-secret")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Spotify.ClientID != "conventional-id" {
		t.Errorf("Spotify.ClientID = %q, want fallback env value", cfg.Spotify.ClientID)
	}
	if cfg.Spotify.ClientSecret != "conventional-secret" {
		t.Errorf("Spotify.ClientSecret = %q, want fallback env value", cfg.Spotify.ClientSecret)
	}
}

func TestEnvKeyToPath(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"SONGREC_REDIS_ADDR", "redis.addr"},
		{"SONGREC_SERVER_ADDR", "server.addr"},
		{"SONGREC_DATASET_DATABASE_URL", "dataset.database_url"},
		{"SONGREC_SPOTIFY_CLIENT_ID", "spotify.client_id"},
		{"SONGREC_RECOMMEND_MAX_RESULTS", "recommend.max_results"},
	}
	for _, tt := range tests {
		if got := envKeyToPath(tt.key); got != tt.want {
			t.Errorf("envKeyToPath(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
