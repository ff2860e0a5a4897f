package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Link codes
	RecordLinkCodeIssued(success bool, attempts int)
	RecordLinkAttempt(result string)

	// Provider tokens
	RecordTokenRefresh(result string)
	RecordProviderCall(operation string, success bool, duration time.Duration)
}
