/*
Package monitoring provides Prometheus metrics for the desktop backend.

# Overview

Metrics cover HTTP traffic, window registry transitions, collaborator calls
(auth, profile, blob, persistence), uploads and quota denials, workspace
snapshots and WebSocket streams.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))

	registry := window.NewRegistry(catalog).WithMetrics(metrics)

	timer := monitoring.NewTimer(metrics, "blob", "upload")
	// ... perform operation ...
	timer.Stop("success")

Tests should use NewMetricsWithRegistry(prometheus.NewRegistry()) so repeated
collectors do not collide on the default registerer.

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
