package monitoring

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware records one observation per HTTP request, labelled by route
// template. WebSocket upgrades are left to the stream gauges since their
// duration is the lifetime of the connection.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordHTTPRequest(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start),
			max(c.Request.ContentLength, 0),
			int64(max(c.Writer.Size(), 0)),
		)
	}
}

// Timer times one collaborator operation
type Timer struct {
	metrics *Metrics
	service string
	method  string
	start   time.Time
}

// NewTimer starts timing service.method
func NewTimer(metrics *Metrics, service, method string) *Timer {
	return &Timer{metrics: metrics, service: service, method: method, start: time.Now()}
}

// Stop records the call with its outcome status
func (t *Timer) Stop(status string) {
	t.metrics.RecordServiceCall(t.service, t.method, status, time.Since(t.start))
}
