package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kollabary/backend/internal/collab"
	"github.com/kollabary/backend/internal/logging"
)

// Handler exposes review HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a review HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the review endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reviews", h.create)
	r.GET("/influencers/:id/reviews", h.listForInfluencer)
	r.GET("/collaborations/:id/review", h.getForCollaboration)
}

func (h *Handler) create(c *gin.Context) {
	reviewerID := c.GetString("userID")
	if reviewerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "collaborationId and rating are required"})
		return
	}

	r, err := h.service.Create(c.Request.Context(), reviewerID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) listForInfluencer(c *gin.Context) {
	items, err := h.service.ListForInfluencer(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if items == nil {
		items = []*Review{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) getForCollaboration(c *gin.Context) {
	r, err := h.service.GetForCollaboration(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "review_not_found"})
	case errors.Is(err, collab.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "collaboration_not_found"})
	case errors.Is(err, ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "collaboration already reviewed"})
	case errors.Is(err, ErrInvalidReview):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.L(c.Request.Context()).Error("review request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
