package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m Recorder) gin.HandlerFunc {
	// Only the Prometheus implementation carries HTTP collectors
	metrics, ok := m.(*Metrics)
	if !ok {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath returns the route pattern, or "unknown" for unmatched routes
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func resultLabel(success bool) string {
	if success {
		return resultSuccess
	}
	return resultError
}

// RecordLinkCodeIssued records a link code issuance and how many candidates it took
func (m *Metrics) RecordLinkCodeIssued(success bool, attempts int) {
	m.LinkCodesIssuedTotal.WithLabelValues(resultLabel(success)).Inc()
	if attempts > 0 {
		m.LinkCodeAttempts.Observe(float64(attempts))
	}
}

// RecordLinkAttempt records the outcome of a device link request
func (m *Metrics) RecordLinkAttempt(result string) {
	m.LinkAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordTokenRefresh records the outcome of a token freshness check
func (m *Metrics) RecordTokenRefresh(result string) {
	m.TokenRefreshTotal.WithLabelValues(result).Inc()
}

// RecordProviderCall records an identity provider round trip
func (m *Metrics) RecordProviderCall(operation string, success bool, duration time.Duration) {
	m.ProviderCallDuration.WithLabelValues(operation, resultLabel(success)).Observe(duration.Seconds())
}

// RecordExpiredObjectsPurged records objects removed by the cleanup job
func (m *Metrics) RecordExpiredObjectsPurged(count int64) {
	if count > 0 {
		m.ExpiredObjectsPurgedTotal.Add(float64(count))
	}
}
