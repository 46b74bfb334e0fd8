// Package config loads application configuration from defaults, an optional
// YAML file and environment variables, in that order of precedence.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envPrefix namespaces the application's environment variables, e.g.
// SONGREC_REDIS_ADDR overrides redis.addr.
const envPrefix = "SONGREC_"

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Dataset   DatasetConfig   `koanf:"dataset"`
	Redis     RedisConfig     `koanf:"redis"`
	Spotify   SpotifyConfig   `koanf:"spotify"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// DatasetConfig selects the dataset source. When DatabaseURL is set the
// catalog is read from PostgreSQL, otherwise from the CSV at Path.
type DatasetConfig struct {
	Path        string `koanf:"path"`
	DatabaseURL string `koanf:"database_url"`
}

// RedisConfig holds cache backend settings.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// SpotifyConfig holds artwork-lookup credentials. Both values empty disables
// the Spotify bridge in favor of placeholder artwork.
type SpotifyConfig struct {
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

// RecommendConfig holds the default scoring weights and result cap.
type RecommendConfig struct {
	NumericWeight float64 `koanf:"numeric_weight"`
	TextWeight    float64 `koanf:"text_weight"`
	MaxResults    int     `koanf:"max_results"`
}

// defaultConfig returns the built-in defaults, applied before the config
// file and environment overrides.
func defaultConfig() *Config {
	return &Config{
		Server:  ServerConfig{Addr: "127.0.0.1:8080"},
		Dataset: DatasetConfig{Path: "data/dataset.csv"},
		Redis:   RedisConfig{Addr: "localhost:6379"},
		Recommend: RecommendConfig{
			NumericWeight: 0.6,
			TextWeight:    0.4,
			MaxResults:    6,
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply; a named file that does not exist
// is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyToPath), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// The conventional Spotify variables take effect when the namespaced
	// ones are absent.
	if cfg.Spotify.ClientID == "" {
		cfg.Spotify.ClientID = os.Getenv("SPOTIFY_ID")
	}
	if cfg.Spotify.ClientSecret == "" {
		cfg.Spotify.ClientSecret = os.Getenv("SPOTIFY_SECRET")
	}

	return cfg, nil
}

// envKeyToPath maps SONGREC_REDIS_ADDR to "redis.addr". Only the first
// underscore separates the section; the rest of the key keeps its
// underscores (SONGREC_DATASET_DATABASE_URL -> dataset.database_url).
func envKeyToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))
	return strings.Replace(key, "_", ".", 1)
}
