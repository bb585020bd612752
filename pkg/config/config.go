// Package config loads runtime settings for the CLI and the web server from
// environment variables.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

type Config struct {
	Port         string
	Environment  string
	LogLevel     string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds

	// ProfilesDir is where imported IES profiles are stored.
	ProfilesDir string
	// CatalogPath is the sqlite profile index. Empty disables the catalog.
	CatalogPath string
}

// Load reads the configuration from the environment, falling back to
// defaults for unset or malformed values.
func Load() *Config {
	profilesDir := getEnv("IES_PROFILES_DIR", defaultProfilesDir())
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Environment:  getEnv("ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
		ProfilesDir:  profilesDir,
		CatalogPath:  getEnv("IES_CATALOG_PATH", filepath.Join(profilesDir, "catalog.db")),
	}
}

// IsProduction reports whether ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Level parses LogLevel, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func (c *Config) ReadTimeoutDuration() time.Duration {
	return time.Duration(c.ReadTimeout) * time.Second
}

func (c *Config) WriteTimeoutDuration() time.Duration {
	return time.Duration(c.WriteTimeout) * time.Second
}

// defaultProfilesDir is "IES Profiles" under the user config directory, or
// under the working directory when that cannot be determined.
func defaultProfilesDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "IES Profiles")
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
