package ranking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kollabary/backend/internal/influencer"
	"github.com/kollabary/backend/internal/logging"
)

// Handler exposes the ranking engine over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a ranking HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public ranking endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/ranking/tiers", h.tierGuide)
	r.GET("/ranking/weights", h.getWeights)
	r.GET("/ranking/:influencerId/breakdown", h.breakdown)
	r.POST("/ranking/:influencerId/recalculate", h.recalculate)
}

// RegisterAdminRoutes registers endpoints behind the admin gate.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.PUT("/ranking/weights", h.updateWeights)
	r.POST("/ranking/recalculate-all", h.recalculateAll)
}

func (h *Handler) tierGuide(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tiers": TierGuide()})
}

func (h *Handler) getWeights(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Weights())
}

func (h *Handler) breakdown(c *gin.Context) {
	b, err := h.service.ComputeBreakdown(c.Request.Context(), c.Param("influencerId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) recalculate(c *gin.Context) {
	profile, err := h.service.Recalculate(c.Request.Context(), c.Param("influencerId"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) updateWeights(c *gin.Context) {
	var req WeightsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	w, err := h.service.UpdateWeights(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

func (h *Handler) recalculateAll(c *gin.Context) {
	h.service.RecalculateAllAsync()
	c.JSON(http.StatusAccepted, gin.H{"status": "sweep started"})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, influencer.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "influencer_not_found"})
	case errors.Is(err, ErrInvalidWeights):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.L(c.Request.Context()).Error("ranking request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
