package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"procedure-backend/internal/shared/auth"
	"procedure-backend/internal/shared/server/middleware"
	"procedure-backend/internal/shared/server/respond"
)

// profile tells the front end which procedure views to offer the caller.
type profile struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	// "own" for authors, "all" for reviewers and admins
	Visibility string `json:"visibility"`
	Dashboard  bool   `json:"dashboard"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", whoAmI)
}

func whoAmI(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}

	role := middleware.UserRoleFromContext(c)
	p := profile{
		UserID:     userID,
		Role:       role,
		Email:      middleware.UserEmailFromContext(c),
		Name:       middleware.UserNameFromContext(c),
		Visibility: "own",
	}
	if auth.IsPrivileged(role) {
		p.Visibility = "all"
		p.Dashboard = true
	}
	respond.OK(c, p)
}
