package middleware

import (
	"net/http"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/tracing"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig returns the cross-origin policy for the desktop frontend. An
// empty origins list allows any origin without credentials. Trace ids and
// download filenames are exposed to the page.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders: []string{
			"Origin", "Accept", "Content-Type", "Content-Length",
			"Authorization", "Cache-Control", "X-Requested-With",
			tracing.HeaderTraceID, tracing.HeaderSpanID,
		},
		ExposeHeaders: []string{
			"Content-Disposition",
			tracing.HeaderTraceID, tracing.HeaderSpanID,
		},
		AllowCredentials: len(origins) > 0,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = nil
		cfg.AllowAllOrigins = true
	}
	return cfg
}

// CORS applies CORSConfig(origins)
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(CORSConfig(origins))
}
