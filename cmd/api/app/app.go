package app

import (
	"context"
	"fmt"
	"os"

	"user-crud-service/cmd/api/di"
	"user-crud-service/cmd/api/server"
	"user-crud-service/internal/config"
	"user-crud-service/pkg/logger"

	"go.uber.org/zap"
)

// App represents the application
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container
}

// New creates a new application instance
func New(ctx context.Context) (*App, error) {
	// Load configuration
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := initLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewWithConfig(ctx, cfg, l)
}

// NewWithConfig builds the application from an already loaded config and logger.
func NewWithConfig(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	container, err := di.NewContainer(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Server:    server.New(cfg, l, container),
		Container: container,
	}, nil
}

// Run serves until ctx is canceled or the server fails, then shuts down.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.App.Environment),
	)

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		// Add panic recovery for server goroutine
		defer func() {
			if r := recover(); r != nil {
				errChan <- fmt.Errorf("server panic: %v", r)
			}
		}()

		errChan <- a.Server.Start()
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		a.Logger.Info("shutting down application...")
		return a.shutdown()
	case err := <-errChan:
		if err != nil {
			a.Logger.Error("server stopped", zap.Error(err))
			if shutdownErr := a.shutdown(); shutdownErr != nil {
				a.Logger.Error("shutdown after server error failed", zap.Error(shutdownErr))
			}
			return fmt.Errorf("server error: %w", err)
		}
		return a.shutdown()
	}
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	timeout := a.Config.App.ShutdownTimeout()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("starting graceful shutdown", zap.Duration("timeout", timeout))

	var errs []error

	if a.Server != nil {
		a.Logger.Info("shutting down HTTP server...")
		if err := a.Server.Shutdown(shutdownCtx); err != nil {
			a.Logger.Error("failed to shutdown HTTP server", zap.Error(err))
			errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
		}
	}

	// Close container resources
	if a.Container != nil {
		a.Logger.Info("closing container resources...")
		if err := a.Container.Close(shutdownCtx); err != nil {
			a.Logger.Error("failed to close container", zap.Error(err))
			errs = append(errs, fmt.Errorf("container close: %w", err))
		}
	}

	a.Logger.Info("application shutdown complete")

	if err := logger.Sync(a.Logger); err != nil {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}

	// Return aggregated errors
	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}

	return nil
}

// initLogger initializes the application logger
func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:          cfg.Logger.Level,
		Format:         cfg.Logger.Format,
		OutputPath:     cfg.Logger.OutputPath,
		EnableSampling: cfg.Logger.EnableSampling,
		ServiceName:    cfg.Logger.ServiceName,
		ServiceVersion: cfg.Logger.ServiceVersion,
		Environment:    cfg.App.Environment,
	})
}

// getConfigPath returns the configuration path
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}
