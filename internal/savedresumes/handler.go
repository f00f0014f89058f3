package savedresumes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// multipart framing on top of the file itself
const uploadOverheadBytes = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches saved resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/saved-resumes", h.create)
	rg.POST("/saved-resumes/upload", h.upload)
	rg.GET("/saved-resumes", h.list)
	rg.GET("/saved-resumes/:id", h.get)
	rg.PUT("/saved-resumes/:id", h.update)
}

func (h *Handler) create(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req.input())
	if err != nil {
		h.writeError(c, err, "failed to create saved resume")
		return
	}
	respond.Created(c, "/api/saved-resumes/"+r.ID, toResponse(r))
}

func (h *Handler) update(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	r, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), middleware.IsAdmin(c), req.input())
	if err != nil {
		h.writeError(c, err, "failed to update saved resume")
		return
	}
	respond.OK(c, toResponse(r))
}

func (h *Handler) upload(c *gin.Context) {
	limit := h.Svc.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+uploadOverheadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	in := Input{
		Company:        formValue(c, "company"),
		JobTitle:       formValue(c, "jobTitle"),
		JobDescription: formValue(c, "jobDescription"),
		InferCompany:   c.PostForm("inferCompany") == "true",
	}
	r, err := h.Svc.Upload(c.Request.Context(), middleware.UserIDFromContext(c), fileHeader.Filename, file, in)
	if err != nil {
		h.writeError(c, err, "failed to upload resume")
		return
	}
	respond.Created(c, "/api/saved-resumes/"+r.ID, toResponse(r))
}

func (h *Handler) get(c *gin.Context) {
	r, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), middleware.IsAdmin(c))
	if err != nil {
		h.writeError(c, err, "failed to fetch saved resume")
		return
	}
	respond.OK(c, toResponse(r))
}

func (h *Handler) list(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		h.writeError(c, err, "failed to list saved resumes")
		return
	}
	resp := make([]Response, 0, len(items))
	for _, r := range items {
		resp = append(resp, toResponse(r))
	}
	respond.OK(c, resp)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "saved resume not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func formValue(c *gin.Context, key string) *string {
	v, ok := c.GetPostForm(key)
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	return &v
}
