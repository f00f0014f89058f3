package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

type meResponse struct {
	UserID    string     `json:"userId"`
	IsAdmin   bool       `json:"isAdmin"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name,omitempty"`
	Role      string     `json:"role,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the verified identity so clients can check a token before
// building download links with it.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	resp := meResponse{
		UserID:  userID,
		IsAdmin: middleware.IsAdmin(c),
		Email:   middleware.UserEmailFromContext(c),
		Name:    middleware.UserNameFromContext(c),
		Role:    middleware.UserRoleFromContext(c),
	}
	if exp, ok := middleware.TokenExpiryFromContext(c); ok {
		exp = exp.UTC()
		resp.ExpiresAt = &exp
	}
	respond.OK(c, resp)
}

func healthHandler(ready func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
			defer cancel()
			if err := ready(ctx); err != nil {
				respond.Error(c, http.StatusServiceUnavailable, "unavailable", "dependency check failed", nil)
				return
			}
		}
		respond.OK(c, gin.H{"ok": true})
	}
}
