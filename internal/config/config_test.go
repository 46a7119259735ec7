package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Mongo.URL)
	assert.Equal(t, "test", cfg.Mongo.Database)
	assert.Equal(t, "users", cfg.Mongo.Collection)
	assert.Equal(t, 10*time.Second, cfg.Mongo.ConnectTimeout())
	assert.Equal(t, uint64(100), cfg.Mongo.MaxPoolSize)
	assert.Equal(t, uint64(0), cfg.Mongo.MinPoolSize)

	assert.Equal(t, "3000", cfg.App.HTTPPort)
	assert.Equal(t, 10*time.Second, cfg.App.ShutdownTimeout())
	assert.True(t, cfg.App.ExposeErrorDetails)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "console", cfg.Logger.Format)
	assert.Equal(t, "stdout", cfg.Logger.OutputPath)
	assert.Equal(t, "user-crud-service", cfg.Logger.ServiceName)

	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 6379, cfg.Redis.Port)
	assert.Equal(t, 5*time.Minute, cfg.Redis.CacheTTL())

	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.BurstCapacity)

	assert.True(t, cfg.Swagger.Enabled)
	assert.Equal(t, "./api/swagger/users.swagger.json", cfg.Swagger.SpecPath)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := []byte("MONGODB_URL=mongodb://file:27017\nMONGODB_DATABASE=fromfile\nHTTP_PORT=4000\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), content, 0o600))

	t.Setenv("HTTP_PORT", "5000")
	t.Setenv("EXPOSE_ERROR_DETAILS", "false")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "mongodb://file:27017", cfg.Mongo.URL)
	assert.Equal(t, "fromfile", cfg.Mongo.Database)
	assert.Equal(t, "5000", cfg.App.HTTPPort)
	assert.False(t, cfg.App.ExposeErrorDetails)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadConfig_ProductionLoggerDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.True(t, cfg.Logger.EnableSampling)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"non numeric port", "HTTP_PORT", "http"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"zero connect timeout", "MONGODB_CONNECT_TIMEOUT_SECONDS", "0"},
		{"zero shutdown timeout", "SHUTDOWN_TIMEOUT_SECONDS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := LoadConfig(t.TempDir())
			assert.Error(t, err)
		})
	}
}
