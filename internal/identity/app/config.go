package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer       string // Issuer claim for access tokens
	JWTSecret    string // Required: shared HS256 secret (min 32 bytes)
	DatabaseFile string // Path to SQLite database file (default: ./identity.db)
	Driver       string // Store driver (sqlite, memory) (default: sqlite)

	SeedAdminUsername string // Initial admin username (default: admin)
	SeedAdminEmail    string // Initial admin email
	SeedAdminPassword string // Initial admin password; seeding is skipped when empty

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8081)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired token sweep interval (default: 1h)
}

func LoadConfig() Config {
	// A .env file is a dev convenience; absence is fine.
	_ = godotenv.Load()

	cfg := Config{
		Issuer:            getEnvOrDefault("IDENTITY_ISSUER", "clinicgate-identity"),
		JWTSecret:         os.Getenv("IDENTITY_JWT_SECRET"),
		DatabaseFile:      getEnvOrDefault("IDENTITY_DATABASE_FILE", "identity.db"),
		Driver:            getEnvOrDefault("IDENTITY_STORE_DRIVER", "sqlite"),
		SeedAdminUsername: getEnvOrDefault("IDENTITY_SEED_ADMIN_USERNAME", "admin"),
		SeedAdminEmail:    getEnvOrDefault("IDENTITY_SEED_ADMIN_EMAIL", "admin@clinic.local"),
		SeedAdminPassword: os.Getenv("IDENTITY_SEED_ADMIN_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8081),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
