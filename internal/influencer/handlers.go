package influencer

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kollabary/backend/internal/logging"
)

// Handler exposes influencer profile HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates an influencer HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the public influencer endpoints.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/influencers", h.search)
	r.GET("/influencers/me", h.getMine)
	r.PUT("/influencers/me", h.saveMine)
	r.GET("/influencers/:id", h.getByID)
}

// RegisterAdminRoutes registers endpoints that require the admin gate.
func (h *Handler) RegisterAdminRoutes(r *gin.RouterGroup) {
	r.PATCH("/influencers/:userId/verify", h.setVerified)
}

func (h *Handler) search(c *gin.Context) {
	q := SearchQuery{
		Niche:    c.Query("niche"),
		Platform: c.Query("platform"),
	}
	if v := c.Query("minFollowers"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid minFollowers"})
			return
		}
		q.MinFollowers = n
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		logging.L(c.Request.Context()).Error("influencer search failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) getMine(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}
	p, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) saveMine(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	p, err := h.service.Save(c.Request.Context(), userID, req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) getByID(c *gin.Context) {
	p, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

type verifyRequest struct {
	Verified *bool `json:"verified" binding:"required"`
}

func (h *Handler) setVerified(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "verified flag is required"})
		return
	}

	p, err := h.service.SetVerified(c.Request.Context(), c.Param("userId"), *req.Verified)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "influencer_not_found"})
	case errors.Is(err, ErrInvalidProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logging.L(c.Request.Context()).Error("influencer request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
