// Package config reads the server configuration from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultEnv          = "development"
	defaultPort         = "8080"
	defaultDBPath       = "./devis.db"
	defaultLogLevel     = "info"
	defaultTargetMargin = 25.0
)

// Config holds application configuration sourced from environment variables.
type Config struct {
	Env                 string
	Port                string
	DBPath              string
	LogLevel            string
	TariffsPath         string
	SeedDemo            bool
	DefaultTargetMargin float64

	// Warnings lists the problems found while loading. Loading never fails.
	Warnings []string
}

// IsDev reports whether the server runs in development mode.
func (c Config) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv) || strings.EqualFold(c.Env, "dev")
}

// Load reads .env (if present) then environment variables.
func Load() Config {
	return LoadFrom(".env")
}

// LoadFrom is Load with explicit dotenv paths.
func LoadFrom(dotenvPaths ...string) Config {
	cfg := Config{}

	// Best-effort: production should use real env injection.
	if err := loadDotEnv(dotenvPaths...); err != nil {
		cfg.warn("read dotenv: %v", err)
	}

	cfg.Env = stringEnv("APP_ENV", defaultEnv)
	cfg.Port = stringEnv("PORT", defaultPort)
	cfg.DBPath = stringEnv("DB_PATH", defaultDBPath)
	cfg.LogLevel = stringEnv("LOG_LEVEL", defaultLogLevel)
	cfg.TariffsPath = strings.TrimSpace(os.Getenv("TARIFFS_PATH"))
	cfg.SeedDemo = cfg.boolEnv("SEED_DEMO", cfg.IsDev())
	cfg.DefaultTargetMargin = cfg.marginEnv("DEFAULT_TARGET_MARGIN", defaultTargetMargin)

	if os.Getenv("DB_PATH") == "" {
		cfg.warn("DB_PATH is not set, using %s", defaultDBPath)
	}

	return cfg
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (c *Config) boolEnv(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.warn("%s=%q is not a boolean, using %t", key, raw, fallback)
		return fallback
	}
	return v
}

func (c *Config) marginEnv(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v >= 100 {
		c.warn("%s=%q is not a percentage in [0, 100), using %g", key, raw, fallback)
		return fallback
	}
	return v
}
