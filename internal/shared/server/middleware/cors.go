package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsMethods = "GET,POST,OPTIONS"
	corsHeaders = "Content-Type, Authorization, X-User-Id, X-User-Role, X-Request-Id"
	// Location after an upload, the file name on downloads, the wait after a 429.
	corsExposed = "X-Request-Id, Location, Content-Disposition, Retry-After"
)

// CORS lets the configured browser origins call the procedures API. A "*" entry
// admits any origin without credentials; listed origins match case-insensitively
// and ignore a trailing slash.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]bool)
	anyOrigin := false
	for _, o := range allowedOrigins {
		switch o = normalizeOrigin(o); o {
		case "":
		case "*":
			anyOrigin = true
		default:
			origins[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		h := c.Writer.Header()
		switch {
		case origin == "":
		case origins[normalizeOrigin(origin)]:
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
			setCORSHeaders(h)
		case anyOrigin:
			h.Set("Access-Control-Allow-Origin", "*")
			setCORSHeaders(h)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Methods", corsMethods)
	h.Set("Access-Control-Allow-Headers", corsHeaders)
	h.Set("Access-Control-Expose-Headers", corsExposed)
	h.Set("Access-Control-Max-Age", "600")
}

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(origin), "/"))
}
