package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	IdentityURL   string // Base URL of the identity backend (default: http://localhost:8081)
	PagesUpstream string // Frontend origin page requests proxy to; placeholder page when empty

	SessionStore  string        // Session store driver (memory, redis) (default: memory)
	RedisURL      string        // Redis connection URL, required for the redis driver
	SessionTTL    time.Duration // Session cookie and store lifetime (default: 168h)
	SecureCookies bool          // Mark auth cookies Secure (default: true outside dev)

	ClinicDriver       string // Clinic store driver (sqlite, memory) (default: sqlite)
	ClinicDatabaseFile string // Path to the clinic SQLite file (default: ./clinic.db)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	// A .env file is a dev convenience; absence is fine.
	_ = godotenv.Load()

	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		IdentityURL:   getEnvOrDefault("GATE_IDENTITY_URL", "http://localhost:8081"),
		PagesUpstream: os.Getenv("GATE_PAGES_UPSTREAM"),

		SessionStore:  getEnvOrDefault("GATE_SESSION_STORE", "memory"),
		RedisURL:      os.Getenv("GATE_REDIS_URL"),
		SessionTTL:    getEnvDurationOrDefault("GATE_SESSION_TTL", 168*time.Hour),
		SecureCookies: getEnvBoolOrDefault("GATE_SECURE_COOKIES", env != "dev"),

		ClinicDriver:       getEnvOrDefault("GATE_CLINIC_STORE_DRIVER", "sqlite"),
		ClinicDatabaseFile: getEnvOrDefault("GATE_CLINIC_DATABASE_FILE", "clinic.db"),

		Env:                 env,
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
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
