package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "missing.env")
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, warnings, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Len(t, warnings, 1)
	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "catalog.db", cfg.DatabaseDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "admin", cfg.AdminUsername)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.False(t, cfg.SeedDemoData)
}

func TestLoadFromEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	content := "DB_DRIVER=memory\nAPP_PORT=:9090\nSEED_DEMO_DATA=true\nLOG_FORMAT=JSON\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Cleanup(func() {
		for _, key := range []string{"DB_DRIVER", "APP_PORT", "SEED_DEMO_DATA", "LOG_FORMAT"} {
			os.Unsetenv(key)
		}
	})

	cfg, warnings, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, DriverMemory, cfg.DBDriver)
	assert.Equal(t, ":9090", cfg.AppPort)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestEnvironmentWinsOverEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("APP_PORT=:9090\n"), 0o600))
	t.Setenv("APP_PORT", ":7070")
	t.Setenv("DB_DRIVER", DriverMemory)

	cfg, _, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.AppPort)
}

func TestValidate(t *testing.T) {
	valid := Config{DBDriver: DriverPostgres, DatabaseDSN: "host=db", JWTSecret: "s", LogFormat: "text"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"memory needs no secret", func(c *Config) { c.DBDriver = DriverMemory; c.JWTSecret = "" }, ""},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"missing dsn", func(c *Config) { c.DatabaseDSN = "" }, "DATABASE_DSN"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "unsupported DB_DRIVER"},
		{"unknown log format", func(c *Config) { c.LogFormat = "xml" }, "unsupported LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
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

func TestNewLogger(t *testing.T) {
	logger := NewLogger("debug", "json")
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	logger = NewLogger("nonsense", "text")
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)
}
