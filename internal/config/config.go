// Package config loads CaDrA's runtime configuration from environment
// variables, following the teacher's internal/config Load()/validate()
// pattern: typed sub-configs, getEnvOrDefault-style helpers, and errors
// wrapped through internal/errors.
package config

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/bioc/CaDrA/internal/errors"
)

// Config is CaDrA's complete runtime configuration.
type Config struct {
	Search      SearchConfig
	Permutation PermutationConfig
	Database    DatabaseConfig
	Logging     LoggingConfig
}

// SearchConfig holds the default search/kernel knobs the CLI falls back
// to when a flag is not supplied.
type SearchConfig struct {
	DefaultMethod      string
	DefaultAlternative string
	DefaultMaxSize     int
	DefaultTopN        int
	DefaultNCores      int
	SearchTimeout      time.Duration
}

// PermutationConfig holds the defaults for component F.
type PermutationConfig struct {
	DefaultNumShuffles int
	DefaultSeed        int64
}

// DatabaseConfig holds optional Postgres persistence settings. Unlike the
// teacher's web app, CaDrA runs perfectly well with no database at all —
// URL empty means the adapters/store/postgres adapter is never wired up.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// LoggingConfig carries the LOG_LEVEL setting. The leveled logger in
// package internal reads LOG_LEVEL from the environment itself and does not
// consult this struct.
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		Search:      loadSearchConfig(),
		Permutation: loadPermutationConfig(),
		Database:    loadDatabaseConfig(),
		Logging:     loadLoggingConfig(),
	}
	if err := validateConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func loadSearchConfig() SearchConfig {
	return SearchConfig{
		DefaultMethod:      getEnvOrDefault("CADRA_METHOD", "ks"),
		DefaultAlternative: getEnvOrDefault("CADRA_ALTERNATIVE", "less"),
		DefaultMaxSize:     getEnvIntOrDefault("CADRA_MAX_SIZE", 7),
		DefaultTopN:        getEnvIntOrDefault("CADRA_TOP_N", 7),
		DefaultNCores:      getEnvIntOrDefault("CADRA_NCORES", runtime.NumCPU()),
		SearchTimeout:      getEnvDurationOrDefault("CADRA_SEARCH_TIMEOUT", 10*time.Minute),
	}
}

func loadPermutationConfig() PermutationConfig {
	return PermutationConfig{
		DefaultNumShuffles: getEnvIntOrDefault("CADRA_N_PERM", 1000),
		DefaultSeed:        int64(getEnvIntOrDefault("CADRA_SEED", 42)),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:     getEnvOrDefault("DATABASE_URL", ""),
		SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Search.DefaultMaxSize <= 0 {
		return errors.ConfigInvalid("CADRA_MAX_SIZE must be positive")
	}
	if cfg.Permutation.DefaultNumShuffles <= 0 {
		return errors.ConfigInvalid("CADRA_N_PERM must be positive")
	}
	if cfg.Search.DefaultNCores <= 0 {
		return errors.ConfigInvalid("CADRA_NCORES must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
