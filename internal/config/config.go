// Package config loads process configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Env variable names.
const (
	EnvPostgresDSN = "NOTEHUB_PG_DSN"
	EnvAuthSecret  = "NOTEHUB_AUTH_SECRET"
	EnvBcryptCost  = "NOTEHUB_BCRYPT_COST"
	EnvSessionTTL  = "NOTEHUB_SESSION_TTL"
	EnvResetMaxAge = "NOTEHUB_RESET_MAX_AGE"
	EnvLogLevel    = "NOTEHUB_LOG_LEVEL"
	EnvLoginPerMin = "NOTEHUB_LOGIN_PER_MINUTE"
	EnvLoginBurst  = "NOTEHUB_LOGIN_BURST"
)

// Config holds everything the binaries need to wire the core. The auth
// secret is loaded once at process start; rotating it requires a restart
// and invalidates outstanding tokens.
type Config struct {
	PostgresDSN string
	AuthSecret  string
	BcryptCost  int
	SessionTTL  time.Duration
	ResetMaxAge time.Duration
	LogLevel    string

	LoginPerMinute int
	LoginBurst     int
}

// Load reads the environment, applying defaults. Required values are
// validated by the components that consume them.
func Load() Config {
	return Config{
		PostgresDSN:    os.Getenv(EnvPostgresDSN),
		AuthSecret:     os.Getenv(EnvAuthSecret),
		BcryptCost:     getInt(EnvBcryptCost, 0),
		SessionTTL:     getDuration(EnvSessionTTL, 15*time.Minute),
		ResetMaxAge:    getDuration(EnvResetMaxAge, 600*time.Second),
		LogLevel:       getEnv(EnvLogLevel, "info"),
		LoginPerMinute: getInt(EnvLoginPerMin, 10),
		LoginBurst:     getInt(EnvLoginBurst, 5),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
