package http

import (
	"github.com/gin-gonic/gin"
)

// Register mounts every API route on r. authn guards the per-user routes.
func (h *Handlers) Register(r gin.IRouter, authn gin.HandlerFunc) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/apps", h.Apps)

	// Signed links carry their own authorization
	r.GET("/files/download", h.Download)

	if h.auth != nil {
		a := r.Group("/auth")
		a.POST("/signup", h.SignUp)
		a.POST("/signin", h.SignIn)
		a.POST("/guest", h.SignInAsGuest)
		a.POST("/signout", h.SignOut)
		a.GET("/session", h.Session)
	}

	user := r.Group("/", authn)

	// Window registry
	user.GET("/desktop", h.GetDesktop)
	user.POST("/desktop/windows/:id/open", h.OpenWindow)
	user.POST("/desktop/windows/:id/close", h.CloseWindow)
	user.POST("/desktop/windows/:id/toggle", h.ToggleWindow)
	user.POST("/desktop/windows/:id/minimize", h.MinimizeWindow)
	user.POST("/desktop/windows/:id/focus", h.FocusWindow)
	user.PUT("/desktop/windows/:id/position", h.MoveWindow)
	user.PUT("/desktop/windows/:id/size", h.ResizeWindow)
	user.POST("/desktop/pointer", h.Pointer)
	user.POST("/desktop/keys", h.Keys)
	user.POST("/desktop/reset", h.ResetDesktop)

	// Application content
	user.GET("/content/:id", h.Content)
	user.GET("/apps/terminal", h.GetTerminal)
	user.POST("/apps/terminal/exec", h.TerminalExec)
	user.GET("/apps/notepad", h.GetNote)
	user.PUT("/apps/notepad", h.PutNote)
	user.GET("/apps/logs", h.GetLogs)
	user.POST("/apps/game/start", h.GameStart)
	user.POST("/apps/game/connect", h.GameConnect)
	user.POST("/apps/game/win", h.GameWin)
	user.GET("/apps/files", h.FileManager)

	// Profile
	user.GET("/profile", h.GetProfile)
	user.PATCH("/profile", h.PatchProfile)

	// Blob storage
	user.GET("/files", h.ListFiles)
	user.POST("/files", h.UploadFile)
	user.GET("/files/usage", h.FileUsage)
	user.GET("/files/:id/url", h.FileURL)
	user.DELETE("/files/:id", h.DeleteFile)
	user.POST("/admin/reset-storage", h.ResetStorage)

	// Workspace snapshots
	user.POST("/sessions/save", h.SaveSession)
	user.GET("/sessions", h.ListSessions)
	user.POST("/sessions/:id/restore", h.RestoreSession)
	user.DELETE("/sessions/:id", h.DeleteSession)

	// Frontend logs
	user.POST("/logs", h.StreamLogs)
}
