package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"lotellar.backend/pkg/logger"
)

// LoggerMiddleware writes one access log line per request
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		logger.LogAccess(c.Request.Context(), logger.AccessEntry{
			Method:         c.Request.Method,
			Path:           path,
			Status:         c.Writer.Status(),
			Latency:        time.Since(start),
			ClientIP:       c.ClientIP(),
			IdempotencyHit: c.Writer.Header().Get(idempotencyHitHeader) == "true",
		})
	}
}
