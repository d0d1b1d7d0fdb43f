// Package config provides 12-factor configuration management for the StellarFlux backend.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, CORS origins)
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Storage: Data directory, SQLite path and per-user quota
//   - Auth: Whether a bearer token is required, token and download URL lifetimes
//   - Desktop: Autosave debounce delay and app manifest override
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Server running on %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//
// Environment Variables:
//   - PORT, HOST, ALLOWED_ORIGINS
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - DATA_DIR, DB_PATH, QUOTA_BYTES
//   - AUTH_REQUIRED, SIGNING_KEY, TOKEN_TTL, DOWNLOAD_URL_TTL
//   - AUTOSAVE_DELAY, APPS_OVERRIDE
package config
