package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	store   Pinger
	service string
	timeout time.Duration
	log     *zap.Logger
}

// NewHealthHandler creates a HealthHandler. A nil store is reported as down.
func NewHealthHandler(store Pinger, service string, log *zap.Logger) *HealthHandler {
	return &HealthHandler{
		store:   store,
		service: service,
		timeout: 2 * time.Second,
		log:     log,
	}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Store   string `json:"store"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Service: h.service, Store: "down"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.log.Warn("health check: store ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Service: h.service, Store: "down"})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: h.service, Store: "up"})
}
