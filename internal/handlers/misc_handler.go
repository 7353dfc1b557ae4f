package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/logging"
	"storefront/internal/service"
)

// GET /api/services
func ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, service.StylingServices())
}

// Health answers 200 while ping succeeds and 503 otherwise.
// GET /api/health
func Health(ping func(context.Context) error, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := ping(c.Request.Context()); err != nil {
			logging.FromContext(c.Request.Context(), logger).Warn("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
