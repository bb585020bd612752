package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "LOG_LEVEL", "READ_TIMEOUT", "WRITE_TIMEOUT", "IES_PROFILES_DIR", "IES_CATALOG_PATH"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
	assert.Equal(t, 10*time.Second, cfg.ReadTimeoutDuration())
	assert.Equal(t, 10*time.Second, cfg.WriteTimeoutDuration())
	assert.Equal(t, "IES Profiles", filepath.Base(cfg.ProfilesDir))
	assert.Equal(t, filepath.Join(cfg.ProfilesDir, "catalog.db"), cfg.CatalogPath)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("READ_TIMEOUT", "30")
	t.Setenv("WRITE_TIMEOUT", "not-a-number")
	t.Setenv("IES_PROFILES_DIR", "/srv/ies")
	t.Setenv("IES_CATALOG_PATH", "/var/lib/ies.db")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
	assert.Equal(t, 30, cfg.ReadTimeout)
	assert.Equal(t, 10, cfg.WriteTimeout)
	assert.Equal(t, "/srv/ies", cfg.ProfilesDir)
	assert.Equal(t, "/var/lib/ies.db", cfg.CatalogPath)
}

func TestLevelFallsBackToInfo(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"warn", zerolog.WarnLevel},
		{"loud", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		if got := cfg.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.level, got, tt.want)
		}
	}
}
