package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/shared/server/respond"
	"procedure-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a 500 error body. The log line names the
// route and, once a handler has set it, the procedure being processed.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			fields := map[string]any{
				"request_id": RequestIDFromContext(c),
				"panic":      fmt.Sprint(rec),
				"stack":      string(debug.Stack()),
				"route":      c.FullPath(),
				"method":     c.Request.Method,
			}
			if id := c.GetString(ProcedureIDKey); id != "" {
				fields["procedure_id"] = id
			}
			if userID := UserIDFromContext(c); userID != "" {
				fields["user_id"] = userID
			}
			telemetry.Error("http.panic", fields)

			if c.Writer.Written() {
				// headers are gone; all that is left is to stop the chain
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
		}()
		c.Next()
	}
}
