package config

import (
	"os"
	"time"
)

const (
	minHTTPTimeout = 100 * time.Millisecond
	maxHTTPTimeout = 30 * time.Minute
)

// Config holds 12-factor environment configuration used by the CLI. Flags
// override these values; the network tables in network.go fill in whatever is
// still empty.
type Config struct {
	Network    string
	RPCURL     string
	HorizonURL string
	Timeout    time.Duration
	LogLevel   string
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDurEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

func clampDuration(v, min, max time.Duration) time.Duration {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Load reads environment variables and returns a Config with defaults applied.
func Load() Config {
	timeout := clampDuration(parseDurEnv("HTTP_TIMEOUT", 30*time.Second), minHTTPTimeout, maxHTTPTimeout)
	return Config{
		Network:    env("SOROBAN_NETWORK", ""),
		RPCURL:     env("SOROBAN_RPC_URL", ""),
		HorizonURL: env("HORIZON_URL", ""),
		Timeout:    timeout,
		LogLevel:   env("LOG_LEVEL", ""),
	}
}
