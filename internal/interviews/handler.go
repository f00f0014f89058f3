package interviews

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches interview routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/interviews", h.create)
	rg.GET("/interviews", h.list)
	rg.GET("/interviews/:id", h.get)
	rg.PUT("/interviews/:id", h.update)
}

func (h *Handler) create(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	v, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), in)
	if err != nil {
		writeError(c, err, "failed to create interview")
		return
	}
	respond.Created(c, "/api/interviews/"+v.ID, toResponse(v))
}

func (h *Handler) update(c *gin.Context) {
	in, ok := bindInput(c)
	if !ok {
		return
	}
	v, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), middleware.IsAdmin(c), in)
	if err != nil {
		writeError(c, err, "failed to update interview")
		return
	}
	respond.OK(c, toResponse(v))
}

func (h *Handler) get(c *gin.Context) {
	v, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), middleware.IsAdmin(c))
	if err != nil {
		writeError(c, err, "failed to fetch interview")
		return
	}
	respond.OK(c, toResponse(v))
}

func (h *Handler) list(c *gin.Context) {
	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > 200 {
		limit = 200
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), middleware.IsAdmin(c), c.Query("all") == "true", limit, offset)
	if err != nil {
		writeError(c, err, "failed to list interviews")
		return
	}
	resp := make([]Response, 0, len(items))
	for _, i := range items {
		resp = append(resp, toResponse(View{Interview: i}))
	}
	respond.OK(c, resp)
}

func bindInput(c *gin.Context) (Input, bool) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return Input{}, false
	}
	in, err := req.input()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return Input{}, false
	}
	return in, true
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "interview not found", nil)
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", "access denied", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
