package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Window metrics
	WindowsOpen prometheus.Gauge
	WindowOps   *prometheus.CounterVec
	Desktops    prometheus.Gauge

	// Collaborator metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec
	ServiceErrors   *prometheus.CounterVec

	// Storage metrics
	Uploads       *prometheus.CounterVec
	UploadBytes   prometheus.Counter
	QuotaDenials  prometheus.Counter
	PersistWrites *prometheus.CounterVec

	// Workspace snapshot metrics
	SessionsSaved    prometheus.Counter
	SessionsRestored prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// Snapshot for JSON API - track current values
	snapshot MetricsSnapshot

	mu sync.RWMutex
}

// MetricsSnapshot holds current metric values for JSON API
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	OpenWindows       int64   `json:"open_windows"`
	ActiveDesktops    int64   `json:"active_desktops"`
	ActiveConnections int64   `json:"active_connections"`
	QuotaDenials      int64   `json:"quota_denials"`
	TotalDuration     float64 `json:"-"` // sum of all request durations
	RequestCount      int64   `json:"-"` // count for averaging
}

// NewMetrics creates a metrics collector registered with the default registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates a metrics collector registered with reg
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stellar_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stellar_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stellar_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		// Window metrics
		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stellar_windows_open",
				Help: "Number of open windows on the most recently changed desktop",
			},
		),
		WindowOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_window_ops_total",
				Help: "Total number of effective window registry transitions",
			},
			[]string{"op"},
		),
		Desktops: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stellar_desktops_active",
				Help: "Number of live per-user desktops",
			},
		),

		// Collaborator metrics
		ServiceCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_service_calls_total",
				Help: "Total number of collaborator calls",
			},
			[]string{"service", "method", "status"},
		),
		ServiceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stellar_service_duration_seconds",
				Help:    "Collaborator call duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"service", "method"},
		),
		ServiceErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_service_errors_total",
				Help: "Total number of collaborator errors",
			},
			[]string{"service", "method", "error_type"},
		),

		// Storage metrics
		Uploads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_uploads_total",
				Help: "Total number of upload attempts",
			},
			[]string{"status"},
		),
		UploadBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stellar_upload_bytes_total",
				Help: "Total bytes accepted by blob storage",
			},
		),
		QuotaDenials: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stellar_quota_denials_total",
				Help: "Total number of uploads rejected by the storage quota",
			},
		),
		PersistWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_persist_writes_total",
				Help: "Total number of local persistence writes",
			},
			[]string{"key", "status"},
		),

		// Workspace snapshot metrics
		SessionsSaved: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stellar_sessions_saved_total",
				Help: "Total number of workspace snapshots saved",
			},
		),
		SessionsRestored: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stellar_sessions_restored_total",
				Help: "Total number of workspace snapshots restored",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stellar_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stellar_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "stellar_uptime_seconds",
				Help: "Backend uptime in seconds",
			},
		),
	}

	// Start uptime updater
	go m.updateUptime()

	return m
}

// updateUptime continuously updates the uptime metric
func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.Uptime.Set(time.Since(m.startTime).Seconds())
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	// Update snapshot
	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordWindowOp records an effective registry transition
func (m *Metrics) RecordWindowOp(op string) {
	m.WindowOps.WithLabelValues(op).Inc()
}

// SetWindowsOpen sets the number of open windows
func (m *Metrics) SetWindowsOpen(count int) {
	m.WindowsOpen.Set(float64(count))
	m.mu.Lock()
	m.snapshot.OpenWindows = int64(count)
	m.mu.Unlock()
}

// SetDesktops sets the number of live desktops
func (m *Metrics) SetDesktops(count int) {
	m.Desktops.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveDesktops = int64(count)
	m.mu.Unlock()
}

// RecordServiceCall records a collaborator call
func (m *Metrics) RecordServiceCall(service, method, status string, duration time.Duration) {
	m.ServiceCalls.WithLabelValues(service, method, status).Inc()
	m.ServiceDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordServiceError records a collaborator error
func (m *Metrics) RecordServiceError(service, method, errorType string) {
	m.ServiceErrors.WithLabelValues(service, method, errorType).Inc()
}

// RecordUpload records an upload outcome
func (m *Metrics) RecordUpload(status string, size int64) {
	m.Uploads.WithLabelValues(status).Inc()
	if status == "success" {
		m.UploadBytes.Add(float64(size))
	}
}

// IncQuotaDenials increments the quota denial counter
func (m *Metrics) IncQuotaDenials() {
	m.QuotaDenials.Inc()
	m.mu.Lock()
	m.snapshot.QuotaDenials++
	m.mu.Unlock()
}

// RecordPersistWrite records a local persistence write
func (m *Metrics) RecordPersistWrite(key, status string) {
	m.PersistWrites.WithLabelValues(key, status).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncSessionsSaved increments the snapshots saved counter
func (m *Metrics) IncSessionsSaved() {
	m.SessionsSaved.Inc()
}

// IncSessionsRestored increments the snapshots restored counter
func (m *Metrics) IncSessionsRestored() {
	m.SessionsRestored.Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}
