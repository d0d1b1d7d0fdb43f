package http

import (
	"github.com/AxonInnova/StellarFluxOs/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with metrics tracking
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track times one handler operation against service. Call the returned func
// with the outcome status.
func (hm *HandlerMetrics) Track(service, operation string) func(status string) {
	if hm == nil || hm.metrics == nil {
		return func(string) {}
	}
	return monitoring.NewTimer(hm.metrics, service, operation).Stop
}

// TrackDesktopOperation tracks window and application operations
func (hm *HandlerMetrics) TrackDesktopOperation(operation string) func(status string) {
	return hm.Track("desktop", operation)
}

// TrackSessionOperation tracks workspace snapshot operations
func (hm *HandlerMetrics) TrackSessionOperation(operation string) func(status string) {
	return hm.Track("session_manager", operation)
}

func statusOf(ok bool) string {
	if ok {
		return "success"
	}
	return "noop"
}
