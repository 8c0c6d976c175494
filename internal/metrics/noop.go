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

// OAuth - noop implementations
func (n *NoopMetrics) RecordOAuthCallback(provider, result string) {}

func (n *NoopMetrics) RecordExternalAPICall(
	provider, operation string,
	duration time.Duration,
) {
}

// Connections - noop implementations
func (n *NoopMetrics) RecordConnectionUpsert(provider, action string)       {}
func (n *NoopMetrics) SetConnectionsCount(connectionType string, count int) {}

// Database Operations - noop implementations
func (n *NoopMetrics) RecordDatabaseQueryError(operation string) {}
