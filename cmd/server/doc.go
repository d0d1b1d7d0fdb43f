// Package main is the entry point for the StellarFlux OS backend.
//
// The server hosts one desktop per signed-in user: a window registry with
// its surface and launcher, the built-in applications, and the auth,
// profile and file storage collaborators behind a REST and WebSocket API.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - Flags override the environment
//
// Usage:
//
//	# Serve (the default command)
//	stellarflux serve --port 8000
//
//	# Development mode (console logs, debug level)
//	stellarflux --dev
//
//	# Clear one user's saved desktop and files
//	stellarflux reset --user local --files
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown, flushing pending desktop writes
package main
