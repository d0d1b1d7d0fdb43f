package http

import (
	"errors"
	"net/http"

	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/persist"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// SaveSession snapshots the caller's workspace
func (h *Handlers) SaveSession(c *gin.Context) {
	var req types.SessionSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateName(req.Name, "name"); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	done := h.metrics.TrackSessionOperation("save")
	d := h.desktopFor(c)
	session, err := h.desktops.Save(c.Request.Context(), d.UserID(), req.Name, req.Description)
	if err != nil {
		done("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	done("success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session.ToMetadata(),
	})
}

// ListSessions lists the caller's saved workspaces
func (h *Handlers) ListSessions(c *gin.Context) {
	sessions, err := h.desktops.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessions": sessions,
		"stats":    h.desktops.Stats(),
	})
}

// RestoreSession applies a saved workspace to the caller's desktop
func (h *Handlers) RestoreSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := utils.ValidateID(sessionID, "session_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	done := h.metrics.TrackSessionOperation("restore")
	d := h.desktopFor(c)
	session, err := h.desktops.Restore(c.Request.Context(), d.UserID(), sessionID)
	if err != nil {
		done("error")
		if errors.Is(err, persist.ErrWorkspaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	done("success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session.ToMetadata(),
		"desktop": d.View(),
	})
}

// DeleteSession removes a saved workspace
func (h *Handlers) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	if err := utils.ValidateID(sessionID, "session_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.desktops.Delete(c.Request.Context(), middleware.UserID(c), sessionID)
	if errors.Is(err, persist.ErrWorkspaceNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
