package http

import (
	"errors"
	"net/http"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/apps"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// Content returns the rendered body of one application
func (h *Handlers) Content(c *gin.Context) {
	appID := c.Param("id")
	content, ok := h.desktopFor(c).Content(appID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown application"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"app_id": appID, "view": content.View()})
}

// TerminalExec runs one terminal line
func (h *Handlers) TerminalExec(c *gin.Context) {
	var req types.CommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	done := h.metrics.TrackDesktopOperation("terminal_exec")
	d := h.desktopFor(c)
	result, err := d.Exec(req.Line)
	if err != nil {
		done("error")
		appError(c, err)
		return
	}
	done("success")

	c.JSON(http.StatusOK, gin.H{
		"result":   result,
		"terminal": d.Terminal(),
	})
}

// GetTerminal returns the terminal transcript
func (h *Handlers) GetTerminal(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktopFor(c).Terminal())
}

// GetNote returns the notepad document
func (h *Handlers) GetNote(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktopFor(c).Note())
}

// PutNote replaces the notepad document
func (h *Handlers) PutNote(c *gin.Context) {
	var req types.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	d := h.desktopFor(c)
	if err := d.SetNote(req.Content); err != nil {
		if errors.Is(err, apps.ErrNoteTooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return
		}
		appError(c, err)
		return
	}

	c.JSON(http.StatusOK, d.Note())
}

// GetLogs returns the log viewer, optionally selecting ?id=
func (h *Handlers) GetLogs(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktopFor(c).Logs(c.Query("id")))
}

// GameStart begins a new round
func (h *Handlers) GameStart(c *gin.Context) {
	view, err := h.desktopFor(c).StartGame()
	if err != nil {
		appError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GameConnect links one node
func (h *Handlers) GameConnect(c *gin.Context) {
	var req struct {
		Node int `json:"node"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.desktopFor(c).ConnectNode(req.Node)
	if err != nil {
		appError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GameWin ends the running round as won and reveals the code
func (h *Handlers) GameWin(c *gin.Context) {
	d := h.desktopFor(c)
	code, err := d.WinGame()
	if err != nil {
		appError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    code,
		"desktop": d.View(),
	})
}

// FileManager reloads the file manager, filtered by ?pattern=
func (h *Handlers) FileManager(c *gin.Context) {
	c.JSON(http.StatusOK, h.desktopFor(c).Files(c.Request.Context(), c.Query("pattern")))
}
