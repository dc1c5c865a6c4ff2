package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"olp/backend/pkg/logger"
)

// RequestLog logs one line per request with method, path, status and
// latency.
func RequestLog(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if status >= 500 {
			log.Errorf(c.Request.Context(), "[HTTP] %s %s -> %d (%v)", c.Request.Method, path, status, latency)
		} else {
			log.Infof(c.Request.Context(), "[HTTP] %s %s -> %d (%v)", c.Request.Method, path, status, latency)
		}
	}
}
