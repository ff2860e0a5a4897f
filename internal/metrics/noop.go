package metrics

import "time"

// NoopMetrics is a no-operation implementation of Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements Recorder interface at compile time
var _ Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordLinkCodeIssued(success bool, attempts int) {}
func (n *NoopMetrics) RecordLinkAttempt(result string)                 {}
func (n *NoopMetrics) RecordTokenRefresh(result string)                {}

func (n *NoopMetrics) RecordProviderCall(operation string, success bool, duration time.Duration) {
}

// RecordExpiredObjectsPurged is a no-op
func (n *NoopMetrics) RecordExpiredObjectsPurged(count int64) {}
