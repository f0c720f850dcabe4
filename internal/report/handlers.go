package report

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kollabary/backend/internal/logging"
)

// Handler exposes report HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a report HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public report endpoint.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reports", h.create)
}

// RegisterAdminRoutes registers triage endpoints behind the admin gate.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.GET("/reports", h.list)
	r.PATCH("/reports/:id/status", h.updateStatus)
}

func (h *Handler) create(c *gin.Context) {
	reporterID := c.GetString("userID")
	if reporterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "influencerUserId and reason are required"})
		return
	}

	r, err := h.service.Create(c.Request.Context(), reporterID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), Status(c.Query("status")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []*Report{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	r, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "report_not_found"})
	case errors.Is(err, ErrInvalidReport), errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.L(c.Request.Context()).Error("report request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
