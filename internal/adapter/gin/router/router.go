package router

import (
	"net/http"

	"user-crud-service/internal/adapter/gin/handler"
	"user-crud-service/internal/adapter/gin/middleware"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

// SwaggerDocPath is the route serving the OpenAPI document.
const SwaggerDocPath = "/swagger/users.swagger.json"

// Options holds the router settings that come from configuration
type Options struct {
	ExposeErrors    bool
	SwaggerEnabled  bool
	SwaggerSpecPath string
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	healthHandler *handler.HealthHandler,
	rateLimiter *middleware.RateLimiter,
	opts Options,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log, opts.ExposeErrors))

	router.GET("/health", healthHandler.Health)

	if opts.SwaggerEnabled {
		ui := gin.WrapH(httpSwagger.Handler(httpSwagger.URL(SwaggerDocPath)))
		router.GET("/swagger/*any", func(c *gin.Context) {
			if c.Request.URL.Path == SwaggerDocPath {
				c.File(opts.SwaggerSpecPath)
				return
			}
			ui(c)
		})
	}

	users := router.Group("/users", rateLimiter.Middleware())
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handler.MessageResponse{Message: "Not found"})
	})

	return router
}
