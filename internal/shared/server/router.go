package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/interviews"
	"jobtracker-backend/internal/retrieval"
	"jobtracker-backend/internal/savedresumes"
	"jobtracker-backend/internal/scheduling"
	"jobtracker-backend/internal/shared/config"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/server/middleware"
)

const (
	rateGroupDownload = "DOWNLOAD"
	rateGroupGenerate = "GENERATE"
	rateGroupDefault  = "DEFAULT"
	healthTimeout     = 2 * time.Second
)

// RouterDeps carries the handlers mounted by NewRouter.
type RouterDeps struct {
	Config       config.Config
	Verifier     middleware.TokenVerifier
	SavedResumes *savedresumes.Handler
	Interviews   *interviews.Handler
	Scheduling   *scheduling.Handler
	Retrieval    *retrieval.Handler
	// Ready reports dependency health for /api/health. Nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		metrics.Middleware(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)
	r.GET("/metrics", metrics.Handler())

	limit := middleware.RateLimit(middleware.RateLimitConfig{
		DefaultGroup: rateGroupDefault,
		GroupFor: middleware.RouteGroups(map[string]string{
			"GET /api/interviews/:id/scheduled-resume-pdf":             rateGroupDownload,
			"POST /api/interviews/:id/scheduled-resume-pdf/regenerate": rateGroupGenerate,
			"POST /api/admin/reconcile":                                rateGroupGenerate,
			"POST /api/saved-resumes/upload":                           rateGroupGenerate,
		}),
		Rules: map[string]middleware.RateLimitRule{
			rateGroupDefault:  {Rate: 10, Burst: 40},
			rateGroupDownload: {Rate: 5, Burst: 20},
			rateGroupGenerate: {Rate: 0.5, Burst: 5},
		},
	})

	api := r.Group("/api")
	api.GET("/health", healthHandler(deps.Ready))

	// The download route authenticates itself so browsers can pass ?token=.
	if deps.Retrieval != nil {
		deps.Retrieval.RegisterRoutes(api.Group("", limit))
	}

	authed := api.Group("", middleware.Auth(deps.Verifier), limit)
	registerMeRoutes(authed)
	if deps.SavedResumes != nil {
		deps.SavedResumes.RegisterRoutes(authed)
	}
	if deps.Interviews != nil {
		deps.Interviews.RegisterRoutes(authed)
	}
	if deps.Scheduling != nil {
		deps.Scheduling.RegisterRoutes(authed)
		deps.Scheduling.RegisterAdminRoutes(authed.Group("/admin", middleware.RequireAdmin()))
	}

	return r
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
