package dashboard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/shared/auth"
	"procedure-backend/internal/shared/server/middleware"
	"procedure-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches dashboard routes; only reviewers and admins may read them.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/dashboard", middleware.RequireRole(auth.RoleReviewer, auth.RoleAdmin))
	g.GET("/summary", h.summary)
}

func (h *Handler) summary(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	sum, err := h.Svc.Summary(c.Request.Context(), strings.TrimSpace(c.Query("department")))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to build dashboard", nil)
		return
	}
	respond.OK(c, sum)
}
