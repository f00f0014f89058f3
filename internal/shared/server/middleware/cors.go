package middleware

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured browser origins. Entries may use a
// "https://*.example.com" wildcard. Range is allowed so PDF viewers can
// fetch resume downloads in parts.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "HEAD", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id", "Range"},
		ExposeHeaders:    []string{"X-Request-Id", "Content-Disposition", "Content-Length", "Accept-Ranges"},
		AllowCredentials: true,
		AllowWildcard:    true,
		MaxAge:           10 * time.Minute,
	}
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		// No browser origins configured: only same-origin and non-browser
		// callers get through.
		cfg.AllowOriginFunc = func(string) bool { return false }
	}
	return cors.New(cfg)
}
