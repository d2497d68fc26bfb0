package config

import (
	"os"
	"strconv"
	"strings"
)

// Config carries the service-specific settings. Process-level settings
// (service name, log level, HTTP address, shutdown timeout) live in the
// platform config.
type Config struct {
	// DatabaseURL is the Postgres DSN. Empty selects the in-memory stores
	// (development only).
	DatabaseURL string
	// RedisAddr is either a redis:// URL or a bare host:port. Empty selects
	// the in-process cache and notification broker (development only).
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// JWTSecret verifies the HS256 bearer tokens issued at login.
	JWTSecret string
}

func Load() Config {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		addr = strings.TrimSpace(os.Getenv("REDIS_URL"))
	}
	return Config{
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		RedisAddr:     addr,
		RedisPassword: strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:       envInt("REDIS_DB", 0),
		JWTSecret:     strings.TrimSpace(os.Getenv("JWT_SECRET")),
	}
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
