package collab

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kollabary/backend/internal/logging"
	"github.com/kollabary/backend/internal/validation"
)

// Handler exposes collaboration HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a collaboration HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the collaboration endpoints. All of them require
// a caller identity.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/collaborations", h.create)
	r.GET("/collaborations", h.listMine)
	r.GET("/collaborations/:id", h.get)
	r.PATCH("/collaborations/:id", h.update)
	r.PATCH("/collaborations/:id/status", h.updateStatus)
}

func (h *Handler) create(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "influencerId and title are required"})
		return
	}

	created, err := h.service.Create(c.Request.Context(), callerID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) listMine(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	items, err := h.service.ListMine(c.Request.Context(), callerID, Status(c.Query("status")))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []*Collaboration{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) get(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}
	if !validation.IsValidID(c.Param("id")) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collaboration id"})
		return
	}

	found, err := h.service.Get(c.Request.Context(), c.Param("id"), callerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

func (h *Handler) update(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), c.Param("id"), callerID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) updateStatus(c *gin.Context) {
	callerID, ok := caller(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), callerID, req.Status)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func caller(c *gin.Context) (string, bool) {
	callerID := c.GetString("userID")
	if callerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return "", false
	}
	return callerID, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "collaboration_not_found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrInvalidUpdate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "collaboration was modified concurrently"})
	default:
		logging.L(c.Request.Context()).Error("collaboration request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
