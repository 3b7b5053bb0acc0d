package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atomclub/attendance/internal/pkg/logger"
)

// RequestLogger emits one structured log line per request. Health and
// metrics probes are skipped to keep the log readable.
func RequestLogger() gin.HandlerFunc {
	skip := map[string]bool{
		"/healthz": true,
		"/metrics": true,
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		event := logger.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		} else if c.Writer.Status() >= 400 {
			event = logger.Warn()
		}
		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("clientIP", c.ClientIP()).
			Msg("Request handled")
	}
}
