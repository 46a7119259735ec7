package server

import (
	"net/http"
	"time"

	"user-crud-service/cmd/api/di"
	ginrouter "user-crud-service/internal/adapter/gin/router"
	"user-crud-service/internal/config"

	"go.uber.org/zap"
)

// SetupGinServer creates the HTTP server around the gin router
func SetupGinServer(cfg *config.Config, c *di.Container, addr string, l *zap.Logger) *http.Server {
	router := ginrouter.SetupRouter(
		c.UserHandler,
		c.HealthHandler,
		c.RateLimiter,
		ginrouter.Options{
			ExposeErrors:    cfg.App.ExposeErrorDetails,
			SwaggerEnabled:  cfg.Swagger.Enabled,
			SwaggerSpecPath: cfg.Swagger.SpecPath,
		},
		l,
	)

	l.Info("Gin REST API configured",
		zap.String("address", addr),
		zap.Bool("swagger", cfg.Swagger.Enabled),
		zap.Bool("rate_limit", c.RateLimiter != nil),
	)

	return &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
