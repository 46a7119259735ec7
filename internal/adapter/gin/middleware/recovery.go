package middleware

import (
	"fmt"
	"net/http"

	apperrors "user-crud-service/pkg/errors"
	"user-crud-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery turns a panic in any later handler into a 500 response.
func Recovery(log *zap.Logger, exposeErrors bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithContext(c.Request.Context(), log).Error("panic recovered in handler",
					zap.Any("panic", r),
					zap.String("method", c.Request.Method),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)

				body := gin.H{"message": "Internal server error"}
				if exposeErrors {
					body["error"] = apperrors.DetailOf(fmt.Errorf("panic: %v", r))
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, body)
			}
		}()

		c.Next()
	}
}
