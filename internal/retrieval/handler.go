package retrieval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/artifacts"
	"jobtracker-backend/internal/interviews"
	"jobtracker-backend/internal/scheduling"
	"jobtracker-backend/internal/shared/metrics"
	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
	"jobtracker-backend/internal/shared/telemetry"
)

// Path is the download route, relative to the /api group.
const Path = "/interviews/:id/scheduled-resume-pdf"

const maxFilenameCompany = 40

// Resolver loads interviews and finds their current artifact.
type Resolver interface {
	Interview(ctx context.Context, interviewID string) (interviews.Interview, error)
	Resolve(ctx context.Context, iv interviews.Interview) (scheduling.Resolved, error)
}

// ArtifactOpener streams stored artifacts.
type ArtifactOpener interface {
	Open(ctx context.Context, name string) (io.ReadCloser, artifacts.Artifact, error)
}

// Handler serves interview resume PDFs. It authenticates on its own so the
// token may also arrive as a query parameter for iframes and direct links.
type Handler struct {
	Verifier  middleware.TokenVerifier
	Resolver  Resolver
	Artifacts ArtifactOpener
}

// NewHandler constructs a Handler.
func NewHandler(v middleware.TokenVerifier, r Resolver, a ArtifactOpener) *Handler {
	return &Handler{Verifier: v, Resolver: r, Artifacts: a}
}

// RegisterRoutes attaches the download route. The group must not run the
// header-only auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET(Path, h.download)
}

func (h *Handler) download(c *gin.Context) {
	ctx := c.Request.Context()
	interviewID := c.Param("id")
	c.Set("interviewId", interviewID)

	token, ok := extractToken(c)
	if !ok {
		h.fail(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	claims, err := h.Verifier.Verify(ctx, token)
	if err != nil {
		h.fail(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", err)
		return
	}
	middleware.SetIdentity(c, claims)

	iv, err := h.Resolver.Interview(ctx, interviewID)
	if err != nil {
		h.resolveError(c, err)
		return
	}
	if iv.UserID != claims.Sub && !claims.IsAdmin() {
		h.fail(c, http.StatusForbidden, "forbidden", "access denied", nil)
		return
	}

	res, err := h.Resolver.Resolve(ctx, iv)
	if err != nil {
		h.resolveError(c, err)
		return
	}
	rc, art, err := h.Artifacts.Open(ctx, res.Artifact.Name)
	if err != nil {
		h.resolveError(c, err)
		return
	}
	defer rc.Close()
	c.Set("artifact", art.Name)

	metrics.IncDownload(http.StatusOK)
	c.DataFromReader(http.StatusOK, art.Size, "application/pdf", contextReader{ctx: ctx, r: rc}, map[string]string{
		"Content-Disposition":    fmt.Sprintf("inline; filename=%q", Filename(res)),
		"Cache-Control":          "no-store, no-cache, must-revalidate, max-age=0",
		"Pragma":                 "no-cache",
		"Expires":                "0",
		"X-Content-Type-Options": "nosniff",
	})
}

func (h *Handler) resolveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, scheduling.ErrNotFound), errors.Is(err, artifacts.ErrNotFound):
		h.fail(c, http.StatusNotFound, "not_found", "resume pdf not found", err)
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
		c.Abort()
	default:
		h.fail(c, http.StatusInternalServerError, "internal_error", "failed to load resume pdf", err)
	}
}

// fail writes the error body. The cause is only logged so 403 and 404 stay
// opaque to the caller.
func (h *Handler) fail(c *gin.Context, status int, code, message string, cause error) {
	if cause != nil {
		telemetry.Warn("retrieval.failed", map[string]any{
			"interview_id": c.Param("id"),
			"status":       status,
			"cause":        cause.Error(),
			"request_id":   middleware.RequestIDFromContext(c),
		})
	}
	metrics.IncDownload(status)
	respond.Flat(c, status, code, message)
}

// Filename is the cosmetic download name, distinct from the stored
// artifact name.
func Filename(res scheduling.Resolved) string {
	company := strings.Trim(artifacts.SanitizeSegment(strings.TrimSpace(res.Resume.Company), maxFilenameCompany), "_")
	if company == "" {
		company = "resume"
	}
	return fmt.Sprintf("resume_%s_%s.pdf", company, res.Interview.MeetingDate.UTC().Format("2006-01-02"))
}

func extractToken(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		return middleware.BearerToken(header)
	}
	token := strings.TrimSpace(c.Query("token"))
	return token, token != ""
}

// contextReader stops the copy once the request context is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
