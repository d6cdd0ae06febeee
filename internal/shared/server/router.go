package server

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/dashboard"
	"procedure-backend/internal/procedures"
	"procedure-backend/internal/shared/config"
	"procedure-backend/internal/shared/metrics"
	"procedure-backend/internal/shared/server/middleware"
	"procedure-backend/internal/shared/server/respond"
	"procedure-backend/internal/shared/storage/db"
)

const (
	rateGroupRead   = "READ"
	rateGroupUpload = "UPLOAD"

	healthPingTimeout = 2 * time.Second
)

// RouterDeps carries the handlers the router mounts. Nil handlers are skipped.
type RouterDeps struct {
	Config      config.Config
	DB          *sql.DB
	Procedures  *procedures.Handler
	Dashboard   *dashboard.Handler
	RateLimiter *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	cfg := deps.Config

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(rateLimitConfig(cfg, deps.RateLimiter)),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.DB))
	registerMeRoutes(api)
	if deps.Procedures != nil {
		deps.Procedures.RegisterRoutes(api)
	}
	if deps.Dashboard != nil {
		deps.Dashboard.RegisterRoutes(api)
	}

	return r
}

func rateLimitConfig(cfg config.Config, limiter *middleware.RateLimiter) middleware.RateLimitConfig {
	rules := map[string]middleware.RateLimitRule{}
	if cfg.RateLimitPerSecond > 0 && cfg.RateLimitBurst > 0 {
		// Uploads run the full analysis, so they get a fifth of the read budget.
		rules[rateGroupRead] = middleware.RateLimitRule{Rate: cfg.RateLimitPerSecond * 5, Burst: cfg.RateLimitBurst * 5}
		rules[rateGroupUpload] = middleware.RateLimitRule{Rate: cfg.RateLimitPerSecond, Burst: cfg.RateLimitBurst}
	}
	return middleware.RateLimitConfig{
		Rules:        rules,
		DefaultGroup: rateGroupRead,
		GroupFor:     rateGroupFor,
		Limiter:      limiter,
	}
}

func rateGroupFor(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/v1/procedures") {
		return rateGroupUpload
	}
	return rateGroupRead
}

func healthHandler(database *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if database == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true, "storage": "memory"})
			return
		}
		if err := db.Ping(context.WithoutCancel(c.Request.Context()), database, healthPingTimeout); err != nil {
			respond.Error(c, http.StatusServiceUnavailable, "database_unavailable", "database is not reachable", nil)
			return
		}
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "storage": "postgres"})
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
