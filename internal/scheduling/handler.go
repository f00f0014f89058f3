package scheduling

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/artifacts"
	"jobtracker-backend/internal/pdfgen"
	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// Handler exposes regeneration and reconciliation over HTTP.
type Handler struct {
	Svc        *Service
	Reconciler *Reconciler
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, rec *Reconciler) *Handler {
	return &Handler{Svc: svc, Reconciler: rec}
}

// RegisterRoutes attaches owner routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/interviews/:id/scheduled-resume-pdf/regenerate", h.regenerate)
}

// RegisterAdminRoutes attaches admin-only routes to the router group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/reconcile", h.reconcile)
}

type resultResponse struct {
	InterviewID  string `json:"interviewId"`
	Status       Status `json:"status"`
	Prefix       string `json:"prefix"`
	Artifact     string `json:"artifact"`
	ResumeLink   string `json:"resumeLink"`
	ResumeStatus string `json:"resumeStatus"`
}

func (h *Handler) regenerate(c *gin.Context) {
	ctx := c.Request.Context()
	iv, err := h.Svc.Interview(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if iv.UserID != middleware.UserIDFromContext(c) && !middleware.IsAdmin(c) {
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
		return
	}
	if !iv.HasSelectedResume() {
		respond.Error(c, http.StatusBadRequest, "validation_error", "interview has no selected resume", nil)
		return
	}

	res, err := h.Svc.Regenerate(ctx, iv.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, resultResponse{
		InterviewID:  res.InterviewID,
		Status:       res.Status,
		Prefix:       res.Prefix,
		Artifact:     res.Artifact.Name,
		ResumeLink:   res.Link,
		ResumeStatus: "linked",
	})
}

type reconcileRequest struct {
	DryRun      bool   `json:"dryRun"`
	Force       bool   `json:"force"`
	InterviewID string `json:"interviewId"`
}

func (h *Handler) reconcile(c *gin.Context) {
	var req reconcileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}
	report, err := h.Reconciler.Run(c.Request.Context(), Options{
		DryRun:      req.DryRun,
		Force:       req.Force,
		InterviewID: req.InterviewID,
	})
	if err != nil {
		if errors.Is(err, ErrReconcileInProgress) {
			respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
			return
		}
		writeError(c, err)
		return
	}
	respond.OK(c, report)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, pdfgen.ErrEmptySource), errors.Is(err, pdfgen.ErrInvalidSource), errors.Is(err, pdfgen.ErrBlankDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "invalid_resume", err.Error(), nil)
	case errors.Is(err, artifacts.ErrUnavailable):
		respond.Error(c, http.StatusInternalServerError, "storage_unavailable", "artifact storage unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to generate resume artifact", nil)
	}
}
