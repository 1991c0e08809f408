// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// defaultCORSOrigins covers the Vite and CRA dev servers on both loopback names.
const defaultCORSOrigins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173,http://127.0.0.1:3000"

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override the dev defaults.
	// FRONTEND_URL, when set, is appended.
	CORSOrigins []string

	// JWTSecret signs and verifies access tokens. Required.
	JWTSecret string

	// JWTAlgorithm is the HMAC signing method. Defaults to "HS256".
	JWTAlgorithm string

	// TokenTTL is how long an issued token stays valid.
	// Set in hours via JWT_EXPIRATION_HOURS. Defaults to 24h.
	TokenTTL time.Duration

	// BcryptCost is the bcrypt work factor. 0 means bcrypt.DefaultCost.
	BcryptCost int

	// MaxBodyBytes caps request bodies. Defaults to 1 MiB.
	MaxBodyBytes int64

	// MigrateOnStart runs pending migrations before serving.
	MigrateOnStart bool
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error listing any required variables that are not set, or the
// first variable whose value cannot be parsed.
func Load() (Config, error) {
	cfg := Config{
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		CORSOrigins:  splitCSV(getEnv("CORS_ORIGINS", defaultCORSOrigins)),
		JWTAlgorithm: getEnv("JWT_ALGORITHM", "HS256"),
	}
	if fe := strings.TrimSpace(os.Getenv("FRONTEND_URL")); fe != "" && !slices.Contains(cfg.CORSOrigins, fe) {
		cfg.CORSOrigins = append(cfg.CORSOrigins, fe)
	}

	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	hours, err := getInt("JWT_EXPIRATION_HOURS", 24)
	if err != nil {
		return Config{}, err
	}
	if hours <= 0 {
		return Config{}, fmt.Errorf("JWT_EXPIRATION_HOURS must be positive, got %d", hours)
	}
	cfg.TokenTTL = time.Duration(hours) * time.Hour

	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 0); err != nil {
		return Config{}, err
	}

	maxBody, err := getInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxBodyBytes = int64(maxBody)

	if v := os.Getenv("MIGRATE_ON_START"); v != "" {
		if cfg.MigrateOnStart, err = strconv.ParseBool(v); err != nil {
			return Config{}, fmt.Errorf("MIGRATE_ON_START: %w", err)
		}
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
