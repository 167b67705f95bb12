package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/telemetry"
)

// Context keys handlers set so the request log can carry resource ids.
const (
	ResumeIDKey      = "resumeId"
	ApplicationIDKey = "applicationId"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]any{
			"request_id":     RequestIDFromContext(c),
			"method":         c.Request.Method,
			"path":           c.Request.URL.Path,
			"route":          c.FullPath(),
			"status":         status,
			"duration_ms":    float64(latency.Microseconds()) / 1000.0,
			"user_id":        UserIDFromContext(c),
			"resume_id":      c.GetString(ResumeIDKey),
			"application_id": c.GetString(ApplicationIDKey),
			"client_ip":      c.ClientIP(),
			"user_agent":     c.Request.UserAgent(),
		}
		if status >= 500 {
			telemetry.Error("request.complete", fields)
			return
		}
		telemetry.Info("request.complete", fields)
	}
}
