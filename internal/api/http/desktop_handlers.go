package http

import (
	"net/http"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/desktop"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/launcher"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/surface"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/utils"
	"github.com/gin-gonic/gin"
)

// GetDesktop returns the rendered desktop
func (h *Handlers) GetDesktop(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktopFor(c).View())
}

// windowOp adapts a single-id desktop operation into a handler
func (h *Handlers) windowOp(name string, op func(d *desktop.Desktop, id string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		windowID := c.Param("id")
		if err := utils.ValidateID(windowID, "window_id", true); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		done := h.metrics.TrackDesktopOperation(name)
		d := h.desktopFor(c)
		changed := op(d, windowID)
		done(statusOf(changed))

		c.JSON(http.StatusOK, gin.H{
			"success":   changed,
			"window_id": windowID,
			"desktop":   d.View(),
		})
	}
}

// OpenWindow opens or restores a window
func (h *Handlers) OpenWindow(c *gin.Context) {
	h.windowOp("open", (*desktop.Desktop).Open)(c)
}

// CloseWindow closes a window
func (h *Handlers) CloseWindow(c *gin.Context) {
	h.windowOp("close", (*desktop.Desktop).CloseWindow)(c)
}

// ToggleWindow opens a closed window or closes an open one
func (h *Handlers) ToggleWindow(c *gin.Context) {
	h.windowOp("toggle", (*desktop.Desktop).Toggle)(c)
}

// MinimizeWindow minimizes a window, or restores it when already minimized
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.windowOp("minimize", (*desktop.Desktop).Minimize)(c)
}

// FocusWindow raises a window to the top
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.windowOp("focus", (*desktop.Desktop).Focus)(c)
}

// MoveWindow sets a window's position
func (h *Handlers) MoveWindow(c *gin.Context) {
	var req types.PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.windowOp("move", func(d *desktop.Desktop, id string) bool {
		return d.Move(id, types.WindowPosition{X: req.X, Y: req.Y})
	})(c)
}

// ResizeWindow sets a window's size, clamped to the minimum
func (h *Handlers) ResizeWindow(c *gin.Context) {
	var req types.SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.windowOp("resize", func(d *desktop.Desktop, id string) bool {
		return d.Resize(id, types.WindowSize{Width: req.Width, Height: req.Height})
	})(c)
}

// Pointer applies one pointer event and returns the frames
func (h *Handlers) Pointer(c *gin.Context) {
	var req types.PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d := h.desktopFor(c)
	handled := d.Pointer(surface.EventFromRequest(req))

	c.JSON(http.StatusOK, gin.H{
		"handled": handled,
		"desktop": d.View(),
	})
}

// Keys applies one keyboard event and returns the frames
func (h *Handlers) Keys(c *gin.Context) {
	var req types.KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d := h.desktopFor(c)
	handled := d.Key(launcher.KeyFromRequest(req))

	c.JSON(http.StatusOK, gin.H{
		"handled": handled,
		"desktop": d.View(),
	})
}

// ResetDesktop closes every window and clears the persisted desktop state
func (h *Handlers) ResetDesktop(c *gin.Context) {
	done := h.metrics.TrackDesktopOperation("reset")
	d := h.desktopFor(c)
	d.Reset()
	done("success")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"desktop": d.View(),
	})
}
