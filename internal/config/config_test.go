package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: 9090
database:
  postgres:
    host: db.internal
    database: syncup
    user: syncup
  redis:
    host: cache.internal
auth:
  jwt_secret: from-file
achievements:
  timezone: Europe/Paris
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "Europe/Paris", cfg.Achievements.Timezone)
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, "02:00", cfg.Scheduler.Time)
	assert.True(t, cfg.Notifications.InApp)
	assert.Equal(t, "/metrics", cfg.Metrics.Prometheus.Path)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("POSTGRES_PORT", "6543")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, 6543, cfg.Database.Postgres.Port)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{
				Postgres: PostgresConfig{Host: "h", Database: "d", User: "u"},
				Redis:    RedisConfig{Host: "r"},
			},
			Auth:         AuthConfig{JWTSecret: "s"},
			Achievements: AchievementsConfig{Timezone: "UTC"},
			RateLimit:    RateLimitConfig{Enabled: true, Requests: 10, Window: 60},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"missing postgres host", func(c *Config) { c.Database.Postgres.Host = "" }, "database.postgres.host"},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "auth.jwt_secret"},
		{"redis required by rate limit", func(c *Config) { c.Database.Redis.Host = "" }, "database.redis.host"},
		{"rate limit off without redis", func(c *Config) {
			c.Database.Redis.Host = ""
			c.RateLimit.Enabled = false
		}, ""},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }, "rate_limit"},
		{"webhook without url", func(c *Config) { c.Notifications.Enabled = true }, "notifications.webhook_url"},
		{"bad timezone", func(c *Config) { c.Achievements.Timezone = "Mars/Olympus" }, "achievements.timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPostgresURL(t *testing.T) {
	cfg := PostgresConfig{Host: "h", Port: 5432, Database: "d", User: "u", Password: "p", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.URL())
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", cfg.DSN())
}
