package config

import (
	"os"
	"strconv"
	"time"
)

// Config is everything the service reads from the environment, loaded once
// at startup.
type Config struct {
	Server   ServerConfig
	Planner  PlannerConfig
	Provider ProviderConfig
	Cache    CacheConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port string
}

type PlannerConfig struct {
	MaxSearchStops int
	DefaultProfile string
}

// ProviderConfig selects the travel time source: "ors" needs an API key,
// "haversine" runs offline on straight-line estimates.
type ProviderConfig struct {
	Kind      string
	ORSAPIKey string
}

// CacheConfig selects the travel time cache backend: "postgres", "sqlite",
// "redis" or "none". SweepSpec is a cron expression for purging stale rows
// on the SQL backends; redis expires entries through their TTL instead.
type CacheConfig struct {
	Kind        string
	DatabaseURL string
	SqlitePath  string
	RedisAddr   string
	TTL         time.Duration
	SweepSpec   string
}

type LoggingConfig struct {
	Level    string
	FilePath string
	Pretty   bool
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: Get("PORT", "8080"),
		},
		Planner: PlannerConfig{
			MaxSearchStops: GetInt("MAX_SEARCH_STOPS", 8),
			DefaultProfile: Get("DEFAULT_PROFILE", "driving-car"),
		},
		Provider: ProviderConfig{
			Kind:      Get("TT_PROVIDER", "ors"),
			ORSAPIKey: os.Getenv("ORS_API_KEY"),
		},
		Cache: CacheConfig{
			Kind:        Get("TT_CACHE", "sqlite"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			SqlitePath:  Get("DB_PATH", "data/app.db"),
			RedisAddr:   Get("REDIS_ADDR", "localhost:6379"),
			TTL:         GetDuration("CACHE_TTL", 7*24*time.Hour),
			SweepSpec:   Get("CACHE_SWEEP_CRON", "0 */6 * * *"),
		},
		Logging: LoggingConfig{
			Level:    Get("LOG_LEVEL", "info"),
			FilePath: Get("LOG_FILE", ""),
			Pretty:   GetBool("LOG_PRETTY", true),
		},
	}
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetInt parses an integer environment value, falling back on absence or
// garbage.
func GetInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// GetBool parses a boolean environment value ("true", "1", "f", ...),
// falling back on absence or garbage.
func GetBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// GetDuration parses a duration environment value such as "36h" or "90m".
func GetDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
