package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"layover-route-service/internal/adapters/cache"
	"layover-route-service/internal/adapters/traveltime"
	"layover-route-service/internal/api"
	"layover-route-service/internal/config"
	"layover-route-service/internal/platform/db"
	"layover-route-service/internal/platform/obs"
	"layover-route-service/internal/ports"
)

// main is the application composition root. It wires a concrete travel time
// provider and cache backend behind the ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using process environment")
	}

	cfg := config.Load()
	obs.Setup(cfg.Logging.Level, cfg.Logging.FilePath, cfg.Logging.Pretty)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	travelCache, closeCache, err := buildCache(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("cache", cfg.Cache.Kind).Msg("travel cache init failed")
	}
	defer closeCache()

	provider, err := buildProvider(cfg, travelCache)
	if err != nil {
		log.Fatal().Err(err).Str("provider", cfg.Provider.Kind).Msg("travel time provider init failed")
	}

	// SQL cache rows go stale as road conditions drift; sweep them on a
	// schedule. Redis entries expire on their own, so its purge is a no-op.
	sweeper := cron.New()
	if travelCache != nil {
		if _, err := sweeper.AddFunc(cfg.Cache.SweepSpec, func() { sweepCache(travelCache, cfg.Cache.TTL) }); err != nil {
			log.Fatal().Err(err).Str("spec", cfg.Cache.SweepSpec).Msg("invalid cache sweep schedule")
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	router := api.NewRouter(provider, cfg.Planner.MaxSearchStops, cfg.Planner.DefaultProfile)

	// Timeouts are tuned for cold-cache planning (external matrix latency).
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Info().
		Str("addr", srv.Addr).
		Str("provider", cfg.Provider.Kind).
		Str("cache", cfg.Cache.Kind).
		Msg("layover route service listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// buildProvider selects the travel time source. The haversine provider works
// offline and ignores the cache; ORS answers with real road durations and
// needs both an API key and, ideally, a cache in front of it.
func buildProvider(cfg *config.Config, travelCache ports.TravelTimeCache) (ports.TravelTimeProvider, error) {
	switch cfg.Provider.Kind {
	case "haversine":
		return traveltime.NewHaversineProvider(), nil
	case "ors":
		if strings.TrimSpace(cfg.Provider.ORSAPIKey) == "" {
			return nil, errors.New("ORS_API_KEY is required for the ors provider")
		}
		return traveltime.NewORSTravelTimeProvider(cfg.Provider.ORSAPIKey, travelCache)
	default:
		return nil, fmt.Errorf("unknown travel time provider %q", cfg.Provider.Kind)
	}
}

// buildCache opens the configured travel time cache backend and returns it
// with its cleanup. Kind "none" disables caching entirely.
func buildCache(ctx context.Context, cfg *config.Config) (ports.TravelTimeCache, func(), error) {
	switch cfg.Cache.Kind {
	case "none":
		return nil, func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("build cache: ping redis at %q: %w", cfg.Cache.RedisAddr, err)
		}
		return cache.NewRedisTravelTimeCache(client, cfg.Cache.TTL), func() { _ = client.Close() }, nil

	case "postgres":
		if strings.TrimSpace(cfg.Cache.DatabaseURL) == "" {
			return nil, nil, errors.New("build cache: DATABASE_URL is required for the postgres cache")
		}
		pool, err := db.Open(ctx, cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("build cache: %w", err)
		}
		if err := cache.InitPostgresSchema(pool); err != nil {
			_ = pool.Close()
			return nil, nil, fmt.Errorf("build cache: %w", err)
		}
		return cache.NewPostgresTravelTimeCache(pool), func() { _ = pool.Close() }, nil

	case "sqlite":
		sqlDB, err := openSqlite(cfg.Cache.SqlitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("build cache: %w", err)
		}
		if err := cache.InitSqliteSchema(sqlDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("build cache: %w", err)
		}
		return cache.NewSqliteTravelTimeCache(sqlDB), func() { _ = sqlDB.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("build cache: unknown travel time cache %q", cfg.Cache.Kind)
	}
}

func openSqlite(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", dir, err)
		}
	}
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %q: %w", path, err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("verify sqlite connection to %q: %w", path, err)
	}
	return sqlDB, nil
}

func sweepCache(travelCache ports.TravelTimeCache, maxAge time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	purged, err := travelCache.PurgeOlderThan(ctx, maxAge)
	if err != nil {
		log.Warn().Err(err).Msg("travel cache sweep failed")
		return
	}
	log.Info().Int64("purged", purged).Msg("travel cache sweep done")
}
