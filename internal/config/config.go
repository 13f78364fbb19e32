package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// Storage
	DBPath string

	// Rules catalog
	RulesPath string

	// Telemetry
	LogLevel string
}

func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath:    envStr("MATCHLOG_DB", "data/match.db"),
		RulesPath: envStr("MATCHLOG_RULES", "internal/config/rules.yaml"),
		LogLevel:  envStr("LOG_LEVEL", "info"),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
