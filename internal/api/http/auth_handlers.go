package http

import (
	"net/http"

	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SignUp registers an account and signs it in
func (h *Handlers) SignUp(c *gin.Context) {
	var req types.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if result.Error != "" {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	h.ensureProfile(c, result.User)
	c.JSON(http.StatusCreated, result)
}

// SignIn starts a session for existing credentials
func (h *Handlers) SignIn(c *gin.Context) {
	var req types.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if result.Error != "" {
		c.JSON(http.StatusUnauthorized, result)
		return
	}
	h.ensureProfile(c, result.User)
	c.JSON(http.StatusOK, result)
}

// SignInAsGuest creates a throwaway guest account
func (h *Handlers) SignInAsGuest(c *gin.Context) {
	result := h.auth.SignInAsGuest(c.Request.Context())
	if result.Error != "" {
		c.JSON(http.StatusServiceUnavailable, result)
		return
	}
	h.ensureProfile(c, result.User)
	c.JSON(http.StatusCreated, result)
}

// SignOut ends the bearer token's session and releases the user's desktop
func (h *Handlers) SignOut(c *gin.Context) {
	token := middleware.BearerToken(c.Request)
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing bearer token"})
		return
	}

	ctx := c.Request.Context()
	session := h.auth.GetSession(ctx, token)
	result := h.auth.SignOut(ctx, token)
	if result.Error != "" {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	if session.User != nil {
		h.desktops.Release(session.User.ID)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Session returns the user behind the bearer token
func (h *Handlers) Session(c *gin.Context) {
	token := middleware.BearerToken(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
		return
	}

	result := h.auth.GetSession(c.Request.Context(), token)
	if result.Error != "" {
		c.JSON(http.StatusUnauthorized, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handlers) ensureProfile(c *gin.Context, user *types.User) {
	if h.profiles == nil || user == nil {
		return
	}
	if h.profiles.EnsureProfile(c.Request.Context(), user.ID, user.Email) == nil {
		h.logger.Warn("Profile unavailable after sign-in", zap.String("user_id", user.ID))
	}
}
