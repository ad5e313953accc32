package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// ListenAddr is the gin bind address, e.g. ":8080".
	ListenAddr string
	// DatabaseURL selects postgres (postgres:// prefix) or a sqlite
	// file path for local development.
	DatabaseURL string
	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string
	// LogFormat is "json" or "text".
	LogFormat string
	// CORSAllowedOrigins is a comma-separated extra origin list.
	CORSAllowedOrigins string
}

// Load reads .env when present, then the environment. Missing values
// fall back to local-development defaults; there are no required
// secrets, authentication lives upstream.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:        getenv("DATABASE_URL", "machrent.db"),
		LogLevel:           getenv("LOG_LEVEL", "info"),
		LogFormat:          getenv("LOG_FORMAT", "json"),
		CORSAllowedOrigins: os.Getenv("CORS_ALLOWED_ORIGINS"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
