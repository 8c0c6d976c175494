package core

import "time"

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// OAuth callbacks
	RecordOAuthCallback(provider, result string)
	RecordExternalAPICall(provider, operation string, duration time.Duration)

	// Connections
	RecordConnectionUpsert(provider, action string)

	// Gauge Setters (for periodic updates)
	SetConnectionsCount(connectionType string, count int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}
