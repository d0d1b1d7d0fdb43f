package monitoring

import "time"

// Summary is the JSON view served by the metrics summary endpoint
type Summary struct {
	MetricsSnapshot
	AverageLatencyMs float64 `json:"average_latency_ms"`
	ErrorRate        float64 `json:"error_rate"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
}

// GetSnapshot returns a copy of the current counter values
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// GetUptimeSeconds returns seconds since the collector was created
func (m *Metrics) GetUptimeSeconds() float64 {
	return time.Since(m.startTime).Seconds()
}

// Summarize computes the derived summary values
func (m *Metrics) Summarize() Summary {
	snap := m.GetSnapshot()

	summary := Summary{
		MetricsSnapshot: snap,
		UptimeSeconds:   m.GetUptimeSeconds(),
	}
	if snap.RequestCount > 0 {
		summary.AverageLatencyMs = (snap.TotalDuration / float64(snap.RequestCount)) * 1000
	}
	if snap.TotalRequests > 0 {
		summary.ErrorRate = float64(snap.TotalErrors) / float64(snap.TotalRequests)
	}
	return summary
}
