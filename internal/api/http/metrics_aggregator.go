package http

import (
	"net/http"
	"time"

	"github.com/AxonInnova/StellarFluxOs/internal/domain/desktop"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/resilience"
	"github.com/AxonInnova/StellarFluxOs/internal/shared/types"
	"github.com/gin-gonic/gin"
)

// MetricsAggregator serves a JSON view of backend metrics together with
// desktop statistics and collaborator breaker states
type MetricsAggregator struct {
	metrics  *monitoring.Metrics
	desktops *desktop.Manager
	breakers []*resilience.Breaker
}

// NewMetricsAggregator creates a metrics aggregator
func NewMetricsAggregator(metrics *monitoring.Metrics, desktops *desktop.Manager, breakers ...*resilience.Breaker) *MetricsAggregator {
	return &MetricsAggregator{
		metrics:  metrics,
		desktops: desktops,
		breakers: breakers,
	}
}

// MetricsSnapshot represents a snapshot of backend metrics
type MetricsSnapshot struct {
	Timestamp     time.Time             `json:"timestamp"`
	Summary       monitoring.Summary    `json:"summary"`
	Desktops      types.SessionStats    `json:"desktops"`
	Collaborators []CollaboratorMetrics `json:"collaborators"`
}

// CollaboratorMetrics is one collaborator's breaker view
type CollaboratorMetrics struct {
	Name                string `json:"name"`
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// GetAggregatedMetrics returns the JSON metrics snapshot
func (ma *MetricsAggregator) GetAggregatedMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, ma.Snapshot())
}

// Snapshot collects the current values
func (ma *MetricsAggregator) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{
		Timestamp:     time.Now(),
		Summary:       ma.metrics.Summarize(),
		Desktops:      ma.desktops.Stats(),
		Collaborators: make([]CollaboratorMetrics, 0, len(ma.breakers)),
	}

	for _, b := range ma.breakers {
		status := b.Snapshot()
		snapshot.Collaborators = append(snapshot.Collaborators, CollaboratorMetrics{
			Name:                status.Name,
			State:               status.State.String(),
			Requests:            status.Counts.Requests,
			TotalFailures:       status.Counts.TotalFailures,
			ConsecutiveFailures: status.Counts.ConsecutiveFailures,
		})
	}
	return snapshot
}
