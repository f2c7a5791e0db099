package config

import (
	"os"
	"time"
)

const (
	// Matchmaking
	PendingEntryTTL = 10 * time.Minute // unmatched entries older than this are invisible to partner search
	JanitorInterval = time.Minute

	// Poll interval hint handed to clients with the chat shell.
	PollIntervalSeconds = 4

	// Sessions & auth
	SessionTTL      = 24 * time.Hour
	TokenTTL        = 72 * time.Hour
	TokenIssuer     = "anonchat-service"
	MinPasswordLen  = 8
	MaxMessageBytes = 4096
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port          string
	PostgresDSN   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
}

func Load() *Config {
	return &Config{
		Port:          getenv("PORT", "8080"),
		PostgresDSN:   getenv("POSTGRES_DSN", "host=localhost user=user password=password dbname=anonchatdb port=5432 sslmode=disable"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       0,
		JWTSecret:     getenv("JWT_SECRET", ""),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
