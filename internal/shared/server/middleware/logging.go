package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	ProcedureIDKey = "procedureId"
	QualityKey     = "qualityScore"
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

		procedureID, _ := c.Get(ProcedureIDKey)
		score, _ := c.Get(QualityKey)

		telemetry.Info("request.complete", map[string]any{
			"request_id":    RequestIDFromContext(c),
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        c.Writer.Status(),
			"duration_ms":   float64(latency.Microseconds()) / 1000.0,
			"user_id":       UserIDFromContext(c),
			"user_role":     contextString(c, userRoleKey),
			"procedure_id":  procedureID,
			"quality_score": score,
			"client_ip":     c.ClientIP(),
			"user_agent":    c.Request.UserAgent(),
		})
	}
}
