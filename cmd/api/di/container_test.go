package di

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	mongorepo "user-crud-service/internal/adapter/db/mongodb"
	"user-crud-service/internal/adapter/repository/cached"
	"user-crud-service/internal/config"
	"user-crud-service/internal/usecase/user"
	apperrors "user-crud-service/pkg/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		Mongo: config.MongoConfig{
			URL:                   "",
			Database:              "test",
			Collection:            "users",
			ConnectTimeoutSeconds: 1,
			MaxPoolSize:           10,
		},
		App: config.AppConfig{
			HTTPPort:               "3000",
			ShutdownTimeoutSeconds: 1,
			ExposeErrorDetails:     true,
		},
		Logger: config.LoggerConfig{
			Level:       "debug",
			Format:      "console",
			OutputPath:  "stdout",
			ServiceName: "user-crud-service",
		},
		Redis: config.RedisConfig{
			Host:            "localhost",
			Port:            6379,
			CacheTTLSeconds: 60,
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 10,
			BurstCapacity:     20,
		},
	}
}

func TestNewContainer_MissingURL(t *testing.T) {
	c, err := NewContainer(context.Background(), testConfig(), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	assert.Nil(t, c.Mongo)
	assert.Nil(t, c.RedisClient)
	assert.Nil(t, c.RateLimiter)
	assert.IsType(t, &mongorepo.UnavailableRepo{}, c.UserRepo)

	_, err = c.UserUC.ListUsers(context.Background(), user.ListUsersRequest{})
	var se *apperrors.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, apperrors.KindStoreUnavailable, se.Kind)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", c.HealthHandler.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewContainer_WithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = mr.Host()
	cfg.Redis.Port = port
	cfg.RateLimit.Enabled = true

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	require.NotNil(t, c.RedisClient)
	assert.NotNil(t, c.RateLimiter)
	assert.IsType(t, &cached.UserRepository{}, c.UserRepo)
}

func TestNewContainer_RedisDownIsNotFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Redis.Enabled = true
	cfg.Redis.Host = "127.0.0.1"
	cfg.Redis.Port = 1
	cfg.Redis.MaxRetries = -1

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	assert.Nil(t, c.RedisClient)
	assert.IsType(t, &mongorepo.UnavailableRepo{}, c.UserRepo)
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.App.HTTPPort = "not-a-port"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.Error(t, err)
}
