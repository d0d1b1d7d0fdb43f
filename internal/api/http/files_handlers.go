package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/blob"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListFiles lists the caller's files, newest first. ?pattern= is a glob.
func (h *Handlers) ListFiles(c *gin.Context) {
	if h.blobs == nil {
		unavailable(c, "file storage")
		return
	}

	files, err := h.blobs.List(c.Request.Context(), middleware.UserID(c), c.Query("pattern"))
	if errors.Is(err, blob.ErrBadPattern) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

// UploadFile stores the multipart "file" field. The quota is checked before
// anything is written; a denial returns the quota check.
func (h *Handlers) UploadFile(c *gin.Context) {
	if h.blobs == nil {
		unavailable(c, "file storage")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}

	ctx := c.Request.Context()
	userID := middleware.UserID(c)

	check := h.blobs.CheckQuota(ctx, userID, header.Size)
	if check.Error == "" && !check.Allowed {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"success":     false,
			"error":       blob.ErrQuotaExceeded.Error(),
			"quota_check": check,
		})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	result := h.blobs.Upload(ctx, userID, header.Filename, f, header.Size)
	switch {
	case result.Success:
		c.JSON(http.StatusCreated, result)
	case result.QuotaCheck != nil:
		c.JSON(http.StatusRequestEntityTooLarge, result)
	default:
		c.JSON(http.StatusInternalServerError, result)
	}
}

// DeleteFile removes a file's blob and metadata
func (h *Handlers) DeleteFile(c *gin.Context) {
	if h.blobs == nil {
		unavailable(c, "file storage")
		return
	}

	fileID := c.Param("id")
	err := h.blobs.Delete(c.Request.Context(), middleware.UserID(c), fileID, c.Query("path"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "file_id": fileID})
	case errors.Is(err, blob.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, blob.ErrInvalidPath):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		h.logger.Warn("File delete failed", zap.String("file_id", fileID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}

// FileUsage reports bytes used against the quota
func (h *Handlers) FileUsage(c *gin.Context) {
	if h.blobs == nil {
		unavailable(c, "file storage")
		return
	}

	usage, err := h.blobs.Usage(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, usage)
}

// FileURL returns a signed download URL for one of the caller's files
func (h *Handlers) FileURL(c *gin.Context) {
	if h.blobs == nil {
		unavailable(c, "file storage")
		return
	}

	rec, err := h.blobs.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if errors.Is(err, blob.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	url, expires, err := h.blobs.DownloadURL(rec.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "expires_at": expires})
}

// Download streams a file named by a signed URL. No session is required.
func (h *Handlers) Download(c *gin.Context) {
	if h.blobs == nil {
		unavailable(c, "file storage")
		return
	}

	path := c.Query("path")
	if err := h.blobs.VerifyDownload(path, c.Query("expires"), c.Query("sig")); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	}

	body, rec, err := h.blobs.Open(c.Request.Context(), path)
	if errors.Is(err, blob.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, rec.SizeBytes, rec.MimeType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", rec.Filename),
	})
}

// ResetStorage wipes the caller's uploaded files through the admin panel
func (h *Handlers) ResetStorage(c *gin.Context) {
	done := h.metrics.TrackDesktopOperation("reset_storage")
	view, err := h.desktopFor(c).ResetStorage(c.Request.Context())
	if err != nil {
		done("error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "admin": view})
		return
	}
	done("success")
	c.JSON(http.StatusOK, gin.H{"success": true, "admin": view})
}
