package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"user-crud-service/cmd/api/di"
	"user-crud-service/internal/config"

	"go.uber.org/zap"
)

// Server struct holds all server dependencies
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	HTTP   *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, l *zap.Logger, c *di.Container) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		HTTP:   SetupGinServer(cfg, c, httpAddress(cfg), l),
	}
}

// Start listens on the configured port and serves until Shutdown.
// A clean shutdown returns nil.
func (s *Server) Start() error {
	return s.startWithReady(nil)
}

// startWithReady sends the bound address on ready, when non-nil, once the
// listener is open.
func (s *Server) startWithReady(ready chan<- string) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(context.Background(), "tcp", s.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.Logger.Info("server is running",
		zap.String("address", lis.Addr().String()),
		zap.String("url", "http://localhost:"+s.Config.App.HTTPPort),
	)
	if ready != nil {
		ready <- lis.Addr().String()
	}

	if err := s.HTTP.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.HTTP.Shutdown(ctx)
}

// httpAddress returns the HTTP server address
func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
