// Command song-recommender runs the song recommendation API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meghsharma/song-recommender/internal/cache"
	"github.com/meghsharma/song-recommender/internal/config"
	"github.com/meghsharma/song-recommender/internal/dataset"
	"github.com/meghsharma/song-recommender/internal/feature"
	"github.com/meghsharma/song-recommender/internal/poster"
	"github.com/meghsharma/song-recommender/internal/recommend"
	"github.com/meghsharma/song-recommender/internal/similarity"
	"github.com/meghsharma/song-recommender/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("SONGREC_CONFIG"), "path to YAML config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx := context.Background()

	store := cache.Open(ctx, cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)

	snap, err := loadSnapshot(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded",
		"snapshot", snap.ID, "fingerprint", snap.Fingerprint, "tracks", snap.Len())

	var resolver poster.Resolver = poster.StaticResolver{}
	if cfg.Spotify.ClientID != "" && cfg.Spotify.ClientSecret != "" {
		resolver = poster.NewSpotifyResolver(ctx, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, logger)
	} else {
		logger.Info("spotify credentials absent, serving placeholder artwork")
	}
	resolver = poster.NewCachedResolver(resolver, store, logger)

	svc := recommend.NewService(
		snap,
		feature.NewBuilder(store, logger),
		similarity.NewEngine(store, logger),
		resolver,
		logger,
	)

	server := web.NewServer(web.ServerConfig{
		Addr:          cfg.Server.Addr,
		CacheBackend:  store.Backend(),
		NumericWeight: cfg.Recommend.NumericWeight,
		TextWeight:    cfg.Recommend.TextWeight,
		MaxResults:    cfg.Recommend.MaxResults,
	}, svc, logger)

	return server.Run()
}

// loadSnapshot reads the catalog from PostgreSQL when a database URL is
// configured, otherwise from the CSV path.
func loadSnapshot(ctx context.Context, cfg *config.Config) (*dataset.Snapshot, error) {
	if cfg.Dataset.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Dataset.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()

		snap, err := dataset.LoadPostgres(ctx, pool)
		if err != nil {
			return nil, fmt.Errorf("loading dataset from database: %w", err)
		}
		return snap, nil
	}

	snap, err := dataset.LoadCSV(cfg.Dataset.Path)
	if err != nil {
		return nil, fmt.Errorf("loading dataset from %s: %w", cfg.Dataset.Path, err)
	}
	return snap, nil
}
