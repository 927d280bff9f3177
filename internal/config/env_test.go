package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 540, cfg.SurfaceSize)
	assert.Equal(t, 24*time.Millisecond, cfg.QuietPeriod)
	assert.Equal(t, "jsdares.db", cfg.DBPath)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lvl)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JSDARES_SURFACE_SIZE", "200")
	t.Setenv("JSDARES_QUIET_PERIOD", "50ms")
	t.Setenv("JSDARES_DB", "/tmp/sessions.db")
	t.Setenv("JSDARES_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.SurfaceSize)
	assert.Equal(t, 50*time.Millisecond, cfg.QuietPeriod)
	assert.Equal(t, "/tmp/sessions.db", cfg.DBPath)
	lvl, _ := cfg.Level()
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"not an int", "JSDARES_SURFACE_SIZE", "big", "parse env:"},
		{"negative size", "JSDARES_SURFACE_SIZE", "-1", "must be positive"},
		{"zero quiet", "JSDARES_QUIET_PERIOD", "0s", "must be positive"},
		{"bad level", "JSDARES_LOG_LEVEL", "loud", "JSDARES_LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
