package http

import (
	"net/http"

	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/gin-gonic/gin"
)

// GetProfile returns the caller's profile, creating it if needed
func (h *Handlers) GetProfile(c *gin.Context) {
	if h.profiles == nil {
		unavailable(c, "profile service")
		return
	}

	p := h.profiles.EnsureProfile(c.Request.Context(), middleware.UserID(c), middleware.Identity(c))
	if p == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "profile unavailable"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// PatchProfile merges preference fields; null values remove keys
func (h *Handlers) PatchProfile(c *gin.Context) {
	if h.profiles == nil {
		unavailable(c, "profile service")
		return
	}

	var patch map[string]interface{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)
	h.profiles.EnsureProfile(ctx, userID, middleware.Identity(c))

	p := h.profiles.UpdateField(ctx, userID, patch)
	if p == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile update failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}
