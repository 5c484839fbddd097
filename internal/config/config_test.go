package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/domainy")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/domainy", cfg.Database.URL)
	assert.Equal(t, 25, cfg.Database.MaxConnections)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "stub", cfg.Whois.Provider)
	assert.Equal(t, 10*time.Second, cfg.Whois.Timeout)
	assert.Equal(t, 4, cfg.Scheduler.WorkerCount)
	assert.Equal(t, time.Minute, cfg.Scheduler.PollInterval)
	assert.Equal(t, 5.0, cfg.RateLimit.RPS)
	assert.Equal(t, 15*time.Second, cfg.Metrics.FlushInterval)
}

func TestLoadFromFile(t *testing.T) {
	dir := chdirTemp(t)
	yaml := []byte(`
server:
  port: "9090"
  mode: debug
database:
  driver: memory
whois:
  provider: live
  timeout: 3s
scheduler:
  workercount: 2
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsDebug())
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "live", cfg.Whois.Provider)
	assert.Equal(t, 3*time.Second, cfg.Whois.Timeout)
	assert.Equal(t, 2, cfg.Scheduler.WorkerCount)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:    ServerConfig{Mode: "release"},
			Database:  DatabaseConfig{Driver: "postgres", URL: "postgres://x"},
			Auth:      AuthConfig{JWTSecret: "k"},
			Whois:     WhoisConfig{Provider: "stub"},
			Scheduler: SchedulerConfig{WorkerCount: 1},
		}
	}

	cfg := valid()
	require.NoError(t, cfg.Validate())

	tests := map[string]func(*Config){
		"postgres without url": func(c *Config) { c.Database.URL = "" },
		"unknown driver":       func(c *Config) { c.Database.Driver = "mysql" },
		"unknown provider":     func(c *Config) { c.Whois.Provider = "rdap" },
		"missing secret":       func(c *Config) { c.Auth.JWTSecret = "" },
		"no workers":           func(c *Config) { c.Scheduler.WorkerCount = 0 },
		"unknown mode":         func(c *Config) { c.Server.Mode = "verbose" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("debug mode allows empty secret", func(t *testing.T) {
		c := valid()
		c.Server.Mode = "debug"
		c.Auth.JWTSecret = ""
		assert.NoError(t, c.Validate())
	})
}
