package http

import (
	"errors"
	"net/http"

	"github.com/AxonInnova/StellarFluxOs/internal/api/middleware"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/catalog"
	"github.com/AxonInnova/StellarFluxOs/internal/domain/desktop"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/auth"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/blob"
	"github.com/AxonInnova/StellarFluxOs/internal/providers/profile"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Version is reported by the root endpoint
const Version = "1.0.0"

// Deps are the collaborators the handlers front
type Deps struct {
	Desktops *desktop.Manager
	Catalog  *catalog.Catalog
	Auth     *auth.Provider
	Profiles *profile.Provider
	Blobs    *blob.Provider
	Metrics  *HandlerMetrics
	Logger   *zap.Logger
}

// Handlers contains all HTTP handlers
type Handlers struct {
	desktops *desktop.Manager
	catalog  *catalog.Catalog
	auth     *auth.Provider
	profiles *profile.Provider
	blobs    *blob.Provider
	metrics  *HandlerMetrics
	logger   *zap.Logger
}

// NewHandlers creates a new handler set. Profiles and Blobs may be nil when
// those collaborators are not configured.
func NewHandlers(deps Deps) *Handlers {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Handlers{
		desktops: deps.Desktops,
		catalog:  deps.Catalog,
		auth:     deps.Auth,
		profiles: deps.Profiles,
		blobs:    deps.Blobs,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
	}
}

// Root handles the liveness check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "StellarFlux OS",
		"version": Version,
	})
}

// Health handles the detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"desktops": h.desktops.Stats(),
		"apps":     h.catalog.Len(),
		"auth":     gin.H{"enabled": h.auth != nil},
		"profiles": gin.H{"enabled": h.profiles != nil},
		"storage":  gin.H{"enabled": h.blobs != nil},
	})
}

// Apps lists the application catalog
func (h *Handlers) Apps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"apps": h.catalog.List()})
}

// desktopFor returns the caller's desktop, creating it on first use
func (h *Handlers) desktopFor(c *gin.Context) *desktop.Desktop {
	return h.desktops.Get(middleware.UserID(c), middleware.Identity(c))
}

// appError maps an application operation error to a response
func appError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, desktop.ErrAppNotOpen), errors.Is(err, desktop.ErrAppMinimized):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func unavailable(c *gin.Context, what string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": what + " is not configured"})
}
