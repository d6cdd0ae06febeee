package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/shared/auth"
	"procedure-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
	userRoleKey  = "userRole"
)

var publicPaths = map[string]bool{
	"/api/v1/health": true,
	"/metrics":       true,
}

// Auth validates Bearer JWTs and stores identity in context. In dev and local
// environments X-User-Id / X-User-Role headers are accepted instead.
func Auth(env string) gin.HandlerFunc {
	devHeaders := env == "dev" || env == "local"
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}
		if publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

		if authHeader != "" {
			if !strings.HasPrefix(authHeader, "Bearer ") {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
			if token == "" {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			claims, err := auth.VerifyJWT(token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}

			c.Set(userIDKey, claims.Sub)
			c.Set(userRoleKey, claims.Role)
			if claims.Email != "" {
				c.Set(userEmailKey, claims.Email)
			}
			if claims.Name != "" {
				c.Set(userNameKey, claims.Name)
			}
			c.Next()
			return
		}

		userID := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if !devHeaders || userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}

		c.Set(userIDKey, userID)
		c.Set(userRoleKey, auth.NormalizeRole(c.GetHeader("X-User-Role")))
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated role is one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[auth.NormalizeRole(r)] = true
	}
	return func(c *gin.Context) {
		if UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
			return
		}
		if !allowed[UserRoleFromContext(c)] {
			respond.Error(c, http.StatusForbidden, "forbidden", "insufficient role", nil)
			return
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return contextString(c, userIDKey)
}

// UserRoleFromContext returns the normalized role, RoleAuthor when unset.
func UserRoleFromContext(c *gin.Context) string {
	return auth.NormalizeRole(contextString(c, userRoleKey))
}

func UserEmailFromContext(c *gin.Context) string {
	return contextString(c, userEmailKey)
}

func UserNameFromContext(c *gin.Context) string {
	return contextString(c, userNameKey)
}

func contextString(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
