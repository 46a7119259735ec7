package di

import (
	"context"
	"fmt"

	"user-crud-service/cmd/api/infrastructure"
	"user-crud-service/internal/adapter/cache"
	mongorepo "user-crud-service/internal/adapter/db/mongodb"
	ginhandler "user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"
	"user-crud-service/internal/adapter/repository/cached"
	"user-crud-service/internal/config"
	"user-crud-service/internal/usecase/user"
	"user-crud-service/pkg/mongodb"
	redisclient "user-crud-service/pkg/redis"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config        *config.Config
	Logger        *zap.Logger
	Mongo         *mongodb.Client
	RedisClient   *redisclient.Client
	UserRepo      user.Repository
	UserUC        user.Usecase
	RateLimiter   *middleware.RateLimiter
	UserHandler   *ginhandler.UserHandler
	HealthHandler *ginhandler.HealthHandler
}

// NewContainer creates and initializes all application dependencies.
// Neither an unreachable MongoDB nor an unreachable Redis stops startup.
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	// Initialize document store
	mongoClient, mongoErr := infrastructure.NewMongo(cfg, l)
	c.Mongo = mongoClient

	var repo user.Repository
	if mongoClient == nil {
		repo = mongorepo.NewUnavailableRepo(mongoErr)
	} else {
		repo = mongorepo.NewUserRepoMongo(mongoClient.Collection(cfg.Mongo.Collection), l)
	}

	// Initialize Redis client
	if cfg.Redis.Enabled || cfg.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			l.Error("Redis unavailable, running without cache and rate limiter", zap.Error(err))
		} else {
			c.RedisClient = rdb
		}
	}

	// Initialize cache layer
	if cfg.Redis.Enabled && c.RedisClient != nil {
		userCache := cache.NewRedisUserCache(c.RedisClient.Client, cfg.Redis.CacheTTL(), l)
		repo = cached.NewUserRepository(repo, userCache, l)
	}
	c.UserRepo = repo

	// Initialize use case
	c.UserUC = user.New(repo, l)

	// Initialize rate limiter
	if cfg.RateLimit.Enabled && c.RedisClient != nil {
		c.RateLimiter = middleware.NewRateLimiter(
			c.RedisClient.Client,
			middleware.RateLimiterConfig{
				RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
				BurstCapacity:     cfg.RateLimit.BurstCapacity,
				Enabled:           true,
			},
			l,
		)
	}

	// Initialize handlers
	c.UserHandler = ginhandler.NewUserHandler(c.UserUC, l, cfg.App.ExposeErrorDetails)

	var store ginhandler.Pinger
	if mongoClient != nil {
		store = mongoClient
	}
	c.HealthHandler = ginhandler.NewHealthHandler(store, cfg.Logger.ServiceName, l)

	return c, nil
}

// Close closes all resources held by the container
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Disconnect from MongoDB
	if c.Mongo != nil {
		if err := c.Mongo.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("failed to close MongoDB: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
