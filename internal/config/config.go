package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Mongo     MongoConfig
	App       AppConfig
	Logger    LoggerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Swagger   SwaggerConfig
}

// MongoConfig holds configuration for the document store
type MongoConfig struct {
	URL                   string `mapstructure:"MONGODB_URL"`
	Database              string `mapstructure:"MONGODB_DATABASE" validate:"required"`
	Collection            string `mapstructure:"MONGODB_COLLECTION" validate:"required"`
	ConnectTimeoutSeconds int    `mapstructure:"MONGODB_CONNECT_TIMEOUT_SECONDS" validate:"gt=0"`
	MaxPoolSize           uint64 `mapstructure:"MONGODB_MAX_POOL_SIZE"`
	MinPoolSize           uint64 `mapstructure:"MONGODB_MIN_POOL_SIZE"`
}

// ConnectTimeout returns the connect/ping budget as a duration.
func (c MongoConfig) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	HTTPPort               string `mapstructure:"HTTP_PORT" validate:"required,numeric"`
	Environment            string `mapstructure:"APP_ENV"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS" validate:"gt=0"`
	ExposeErrorDetails     bool   `mapstructure:"EXPOSE_ERROR_DETAILS"`
}

// ShutdownTimeout returns the graceful shutdown budget as a duration.
func (c AppConfig) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	Format           string  `mapstructure:"LOG_FORMAT" validate:"oneof=json console"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH" validate:"required"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS" validate:"gte=0"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// RedisConfig holds configuration for the optional cache and limiter backend
type RedisConfig struct {
	Enabled         bool   `mapstructure:"REDIS_ENABLED"`
	Host            string `mapstructure:"REDIS_HOST" validate:"required_if=Enabled true"`
	Port            int    `mapstructure:"REDIS_PORT" validate:"gt=0,lte=65535"`
	Password        string `mapstructure:"REDIS_PASSWORD"`
	DB              int    `mapstructure:"REDIS_DB" validate:"gte=0"`
	MaxRetries      int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize        int    `mapstructure:"REDIS_POOL_SIZE" validate:"gte=0"`
	MinIdleConns    int    `mapstructure:"REDIS_MIN_IDLE_CONNS" validate:"gte=0"`
	CacheTTLSeconds int    `mapstructure:"REDIS_CACHE_TTL_SECONDS" validate:"gt=0"`
}

// CacheTTL returns the cache entry lifetime as a duration.
func (c RedisConfig) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// RateLimitConfig holds configuration for the request rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND" validate:"gt=0"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST_CAPACITY" validate:"gt=0"`
}

// SwaggerConfig holds configuration for the API docs
type SwaggerConfig struct {
	Enabled  bool   `mapstructure:"SWAGGER_ENABLED"`
	SpecPath string `mapstructure:"SWAGGER_SPEC_PATH" validate:"required_if=Enabled true"`
}

// LoadConfig reads app.env from path, if present, and lets process
// environment variables override it.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	v.AutomaticEnv() // Read from environment variables

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	setDefaults(v)

	var config Config

	config.Mongo.URL = v.GetString("MONGODB_URL")
	config.Mongo.Database = v.GetString("MONGODB_DATABASE")
	config.Mongo.Collection = v.GetString("MONGODB_COLLECTION")
	config.Mongo.ConnectTimeoutSeconds = v.GetInt("MONGODB_CONNECT_TIMEOUT_SECONDS")
	config.Mongo.MaxPoolSize = v.GetUint64("MONGODB_MAX_POOL_SIZE")
	config.Mongo.MinPoolSize = v.GetUint64("MONGODB_MIN_POOL_SIZE")

	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.Environment = v.GetString("APP_ENV")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.ExposeErrorDetails = v.GetBool("EXPOSE_ERROR_DETAILS")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	config.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetInt("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConns = v.GetInt("REDIS_MIN_IDLE_CONNS")
	config.Redis.CacheTTLSeconds = v.GetInt("REDIS_CACHE_TTL_SECONDS")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.Swagger.Enabled = v.GetBool("SWAGGER_ENABLED")
	config.Swagger.SpecPath = v.GetString("SWAGGER_SPEC_PATH")

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the loaded values against their struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("MONGODB_URL", "")
	v.SetDefault("MONGODB_DATABASE", "test")
	v.SetDefault("MONGODB_COLLECTION", "users")
	v.SetDefault("MONGODB_CONNECT_TIMEOUT_SECONDS", 10)
	v.SetDefault("MONGODB_MAX_POOL_SIZE", 100)
	v.SetDefault("MONGODB_MIN_POOL_SIZE", 0)

	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)
	v.SetDefault("EXPOSE_ERROR_DETAILS", true)

	// Logger defaults
	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "user-crud-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 10)
	v.SetDefault("RATE_LIMIT_BURST_CAPACITY", 20)

	v.SetDefault("SWAGGER_ENABLED", true)
	v.SetDefault("SWAGGER_SPEC_PATH", "./api/swagger/users.swagger.json")
}
