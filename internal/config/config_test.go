package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
	assert.Equal(t, "memory", cfg.QueueBackend)
	assert.Equal(t, "static", cfg.AuthMode)
	assert.Equal(t, "spring-2026", cfg.CurrentTerm)
	assert.Equal(t, 20.0, cfg.RequiredHours)
	assert.Equal(t, 50.0, cfg.OnTrackThreshold)
	assert.Equal(t, 25.0, cfg.NeedsAttentionThreshold)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.Production())
}

func TestLoadFromEnvironment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_DRIVER", "pgx")
	t.Setenv("AUTH_MODE", "jwt")
	t.Setenv("JWT_SIGNING_KEY", "s3cret")
	t.Setenv("ACCESS_TTL", "1h")
	t.Setenv("REQUIRED_HOURS", "12.5")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SEED_DEMO_DATA", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Production())
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 12.5, cfg.RequiredHours)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoadFallsBackOnMalformedValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ACCESS_TTL", "soon")
	t.Setenv("RATE_LIMIT_PER_MIN", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 120, cfg.RateLimitPerMin)
}

func TestValidateRejectsJWTWithoutKey(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("AUTH_MODE", "jwt")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWTSigningKey")
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ON_TRACK_THRESHOLD", "20")
	t.Setenv("NEEDS_ATTENTION_THRESHOLD", "40")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NeedsAttentionThreshold")
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_DRIVER", "mysql")

	_, err := Load()
	require.Error(t, err)
}
