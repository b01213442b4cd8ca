// Package config loads service configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderORS       = "ors"
	ProviderHaversine = "haversine"
)

type Config struct {
	Port string

	// Postgres is used when DatabaseURL is set, SQLite at DBPath otherwise.
	DatabaseURL string
	DBPath      string
	SeedPath    string

	DistanceProvider string
	ORSAPIKey        string
	ORSBaseURL       string
	ORSProfile       string
	ORSTimeout       time.Duration
	ORSMaxAttempts   int
	ORSRetryBackoff  time.Duration

	// Redis matrix cache is enabled when RedisURL is set.
	RedisURL       string
	MatrixCacheTTL time.Duration

	TwoOptPasses int

	LogLevel  string
	LogFormat string
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	var errs []error

	timeout, err := envDuration("ORS_TIMEOUT", 15*time.Second)
	errs = append(errs, err)
	attempts, err := envInt("ORS_MAX_ATTEMPTS", 2)
	errs = append(errs, err)
	backoff, err := envDuration("ORS_RETRY_BACKOFF", 250*time.Millisecond)
	errs = append(errs, err)
	ttl, err := envDuration("MATRIX_CACHE_TTL", 24*time.Hour)
	errs = append(errs, err)
	passes, err := envInt("PLANNER_TWO_OPT_PASSES", 0)
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg := Config{
		Port:             Get("PORT", "8080"),
		DatabaseURL:      Get("DATABASE_URL", ""),
		DBPath:           Get("DB_PATH", "data/app.db"),
		SeedPath:         Get("SEED_PATH", ""),
		DistanceProvider: strings.ToLower(Get("DISTANCE_PROVIDER", ProviderORS)),
		ORSAPIKey:        Get("ORS_API_KEY", ""),
		ORSBaseURL:       Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		ORSProfile:       Get("ORS_PROFILE", "driving-car"),
		ORSTimeout:       timeout,
		ORSMaxAttempts:   attempts,
		ORSRetryBackoff:  backoff,
		RedisURL:         Get("REDIS_URL", ""),
		MatrixCacheTTL:   ttl,
		TwoOptPasses:     passes,
		LogLevel:         Get("LOG_LEVEL", "info"),
		LogFormat:        Get("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and consistent.
func (c Config) Validate() error {
	switch c.DistanceProvider {
	case ProviderORS:
		if c.ORSAPIKey == "" {
			return errors.New("config: ORS_API_KEY is required when DISTANCE_PROVIDER=ors")
		}
	case ProviderHaversine:
	default:
		return fmt.Errorf("config: unknown DISTANCE_PROVIDER %q", c.DistanceProvider)
	}

	if c.DatabaseURL == "" && c.DBPath == "" {
		return errors.New("config: one of DATABASE_URL or DB_PATH is required")
	}
	if c.ORSTimeout <= 0 {
		return errors.New("config: ORS_TIMEOUT must be positive")
	}
	if c.ORSMaxAttempts < 1 {
		return errors.New("config: ORS_MAX_ATTEMPTS must be at least 1")
	}
	if c.TwoOptPasses < 0 {
		return errors.New("config: PLANNER_TWO_OPT_PASSES must not be negative")
	}
	return nil
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid integer", key, v)
	}
	return n, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a valid duration", key, v)
	}
	return d, nil
}
